package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedStore(t *testing.T, st store.Store, ids ...int64) {
	t.Helper()
	movies := make([]model.Movie, len(ids))
	for i, id := range ids {
		// Descending revenue keeps ListMovieIDs in argument order.
		movies[i] = model.Movie{ID: id, Title: "Movie", Revenue: int64(1000 - i)}
	}
	_, err := st.UpsertMovies(context.Background(), movies)
	require.NoError(t, err)
}

func intp(v int) *int { return &v }

func statuses(r *Report) []Status {
	out := make([]Status, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Status
	}
	return out
}
