//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cohortlab/cohort-cli/internal/config"
	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/store"
)

// useSQLiteConfig points cfg at a fresh SQLite file for the test.
func useSQLiteConfig(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cohort.db")
	prev := cfg
	cfg = &config.Config{
		Store:  config.StoreConfig{Driver: "sqlite", DatabaseURL: dbPath},
		Ingest: config.IngestConfig{Concurrency: 2},
		Server: config.ServerConfig{Port: 8080},
	}
	t.Cleanup(func() { cfg = prev })
	return dbPath
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cohort.db")
	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// seedDataset stores one rated movie with a director and one bare movie.
func seedDataset(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := st.UpsertMovies(ctx, []model.Movie{
		{ID: 10, Title: "Movie Ten", Revenue: 5000, VoteAverage: 7.5, VoteCount: 100},
		{ID: 11, Title: "Movie Eleven"},
	})
	require.NoError(t, err)

	ok, err := st.InsertCrossRef(ctx, model.CrossReference{MovieID: 10, ForeignID: "0000010"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.InsertRating(ctx, model.Rating{MovieID: 10, Score: 3})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, st.UpsertCrew(ctx, model.CrewRecord{
		Role: model.RoleDirector, MovieID: 10, PersonName: "Dee Rector", Job: "Director", Gender: model.GenderFemale,
	}))
}
