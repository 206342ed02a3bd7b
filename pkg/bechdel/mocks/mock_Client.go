// Package mocks provides test doubles for the bechdel client.
package mocks

import (
	context "context"

	bechdel "github.com/cohortlab/cohort-cli/pkg/bechdel"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// MovieByIMDbID provides a mock function with given fields: ctx, imdbID
func (_m *MockClient) MovieByIMDbID(ctx context.Context, imdbID string) (*bechdel.Movie, error) {
	ret := _m.Called(ctx, imdbID)

	if len(ret) == 0 {
		panic("no return value specified for MovieByIMDbID")
	}

	var r0 *bechdel.Movie
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*bechdel.Movie, error)); ok {
		return rf(ctx, imdbID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *bechdel.Movie); ok {
		r0 = rf(ctx, imdbID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*bechdel.Movie)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, imdbID)
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
