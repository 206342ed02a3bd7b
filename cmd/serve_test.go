//go:build !integration

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/summary"
)

func serveGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServe_Health(t *testing.T) {
	mux := buildMux(newTestStore(t))

	rec := serveGet(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Dataset(t *testing.T) {
	st := newTestStore(t)
	seedDataset(t, st)

	rec := serveGet(t, buildMux(st), "/dataset")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []model.DatasetRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].MovieID)
	require.NotNil(t, rows[0].Rating)
	assert.Equal(t, 3, *rows[0].Rating)
	assert.Nil(t, rows[1].Rating)
}

func TestServe_Report(t *testing.T) {
	st := newTestStore(t)
	seedDataset(t, st)

	rec := serveGet(t, buildMux(st), "/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var s summary.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.RatedMovies)
	assert.InDelta(t, 3.0, s.AverageRating.Mean, 1e-9)
	require.Len(t, s.DirectorGenders, 1)
	assert.Equal(t, "female", s.DirectorGenders[0].Gender)
}

func TestServe_Runs(t *testing.T) {
	st := newTestStore(t)
	_, err := st.CreateRun(t.Context(), "seed")
	require.NoError(t, err)

	mux := buildMux(st)

	rec := serveGet(t, mux, "/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusRunning, runs[0].Status)

	rec = serveGet(t, mux, "/runs?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "limit must be a positive integer")
}

func TestServe_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	buildMux(newTestStore(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dataset", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServe_Movie(t *testing.T) {
	st := newTestStore(t)
	seedDataset(t, st)
	mux := buildMux(st)

	rec := serveGet(t, mux, "/movies/10")
	require.Equal(t, http.StatusOK, rec.Code)
	var attrs movieAttributes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attrs))
	require.NotNil(t, attrs.Rating)
	assert.Equal(t, 3, attrs.Rating.Score)
	require.NotNil(t, attrs.Director)
	assert.Equal(t, "Dee Rector", attrs.Director.PersonName)
	assert.Nil(t, attrs.Composer)

	rec = serveGet(t, mux, "/movies/11")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serveGet(t, mux, "/movies/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
