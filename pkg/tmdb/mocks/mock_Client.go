// Package mocks provides test doubles for the tmdb client.
package mocks

import (
	context "context"

	tmdb "github.com/cohortlab/cohort-cli/pkg/tmdb"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Discover provides a mock function with given fields: ctx, req
func (_m *MockClient) Discover(ctx context.Context, req tmdb.DiscoverRequest) (*tmdb.DiscoverResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Discover")
	}

	var r0 *tmdb.DiscoverResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, tmdb.DiscoverRequest) (*tmdb.DiscoverResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, tmdb.DiscoverRequest) *tmdb.DiscoverResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*tmdb.DiscoverResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, tmdb.DiscoverRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MovieCredits provides a mock function with given fields: ctx, movieID
func (_m *MockClient) MovieCredits(ctx context.Context, movieID int64) (*tmdb.Credits, error) {
	ret := _m.Called(ctx, movieID)

	if len(ret) == 0 {
		panic("no return value specified for MovieCredits")
	}

	var r0 *tmdb.Credits
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int64) (*tmdb.Credits, error)); ok {
		return rf(ctx, movieID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int64) *tmdb.Credits); ok {
		r0 = rf(ctx, movieID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*tmdb.Credits)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, movieID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MovieDetails provides a mock function with given fields: ctx, movieID
func (_m *MockClient) MovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error) {
	ret := _m.Called(ctx, movieID)

	if len(ret) == 0 {
		panic("no return value specified for MovieDetails")
	}

	var r0 *tmdb.MovieDetails
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int64) (*tmdb.MovieDetails, error)); ok {
		return rf(ctx, movieID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int64) *tmdb.MovieDetails); ok {
		r0 = rf(ctx, movieID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*tmdb.MovieDetails)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, movieID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
