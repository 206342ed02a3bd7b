package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cohortlab/cohort-cli/internal/model"
)

func page(n, total int, ids ...int64) *model.MoviePage {
	p := &model.MoviePage{Page: n, TotalPages: total}
	for _, id := range ids {
		p.Movies = append(p.Movies, model.Movie{ID: id, Title: "Movie", Revenue: 1000 - id})
	}
	return p
}

func TestSeeder_PaginatesToLimit(t *testing.T) {
	st := newTestStore(t)
	cat := newFakeCatalogs()
	cat.pages[1] = page(1, 10, 1, 2, 3)
	cat.pages[2] = page(2, 10, 4, 5, 6)
	cat.pages[3] = page(3, 10, 7, 8, 9)

	r, err := NewSeeder(cat, st, SeedOptions{Year: 2023, Limit: 5}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, r.Succeeded)
	assert.Equal(t, 2, cat.callCount("discover"))

	ids, err := st.ListMovieIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestSeeder_StopsOnUnavailablePage(t *testing.T) {
	st := newTestStore(t)
	cat := newFakeCatalogs()
	cat.pages[1] = page(1, 10, 1, 2)
	// page 2 unavailable

	r, err := NewSeeder(cat, st, SeedOptions{Limit: 250}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 2, cat.callCount("discover"))
}

func TestSeeder_StopsOnEmptyPageAndLastPage(t *testing.T) {
	cat := newFakeCatalogs()
	cat.pages[1] = page(1, 0, 1)
	cat.pages[2] = page(2, 0)

	st := newTestStore(t)
	r, err := NewSeeder(cat, st, SeedOptions{Limit: 10}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 2, cat.callCount("discover"))

	cat = newFakeCatalogs()
	cat.pages[1] = page(1, 1, 1, 2)
	r, err = NewSeeder(cat, st, SeedOptions{Limit: 10}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 1, cat.callCount("discover"))
}

func TestSeeder_DeduplicatesAcrossPages(t *testing.T) {
	st := &mockStore{}
	st.On("UpsertMovies", mock.Anything, mock.MatchedBy(func(ms []model.Movie) bool {
		return len(ms) == 3 && ms[0].ID == 1 && ms[1].ID == 2 && ms[2].ID == 3
	})).Return(int64(3), nil)

	cat := newFakeCatalogs()
	cat.pages[1] = page(1, 2, 1, 2)
	cat.pages[2] = page(2, 2, 2, 3)

	r, err := NewSeeder(cat, st, SeedOptions{Limit: 10}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, r.Succeeded)
	st.AssertExpectations(t)
}

func TestSeeder_StoreErrorIsFatal(t *testing.T) {
	st := &mockStore{}
	st.On("UpsertMovies", mock.Anything, mock.Anything).Return(int64(0), errors.New("relation does not exist"))

	cat := newFakeCatalogs()
	cat.pages[1] = page(1, 1, 1)

	_, err := NewSeeder(cat, st, SeedOptions{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed: store movies")
}

func TestSeeder_NothingDiscovered(t *testing.T) {
	st := &mockStore{}
	r, err := NewSeeder(newFakeCatalogs(), st, SeedOptions{}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, r.Total())
	st.AssertNotCalled(t, "UpsertMovies", mock.Anything, mock.Anything)
}

func TestSeedOptions_Defaults(t *testing.T) {
	o := SeedOptions{}.withDefaults()
	assert.Equal(t, SeedOptions{Year: 2023, Limit: 250, SortBy: "revenue.desc"}, o)
}
