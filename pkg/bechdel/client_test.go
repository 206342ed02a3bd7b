package bechdel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieByIMDbID(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     string
		wantStatus  int
		wantRating  *int
		wantDubious bool
		wantTitle   string
	}{
		{
			name:        "string encoded fields",
			status:      http.StatusOK,
			body:        `{"id":"1234","imdbid":"0133093","title":"Matrix, The","year":"1999","rating":"3","dubious":"0"}`,
			wantRating:  intPtr(3),
			wantDubious: false,
			wantTitle:   "Matrix, The",
		},
		{
			name:        "numeric fields and dubious flag",
			status:      http.StatusOK,
			body:        `{"id":1234,"imdbid":"0000010","title":"Movie Ten","year":2023,"rating":2,"dubious":"1"}`,
			wantRating:  intPtr(2),
			wantDubious: true,
			wantTitle:   "Movie Ten",
		},
		{
			name:        "boolean dubious and null rating",
			status:      http.StatusOK,
			body:        `{"id":"1","imdbid":"0000011","title":"Unrated","rating":null,"dubious":true}`,
			wantRating:  nil,
			wantDubious: true,
			wantTitle:   "Unrated",
		},
		{
			name:       "not found payload",
			status:     http.StatusOK,
			body:       `{"status":"404","description":"Could not find movie"}`,
			wantErr:    "unexpected status 404: Could not find movie",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantErr:    "unexpected status 502",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `{"rating":`,
			wantErr: "unmarshal response",
		},
		{
			name:    "non numeric rating",
			status:  http.StatusOK,
			body:    `{"rating":"three"}`,
			wantErr: "decode rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/getMovieByImdbId", r.URL.Path)
				assert.Equal(t, "0133093", r.URL.Query().Get("imdbid"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
			movie, err := client.MovieByIMDbID(context.Background(), "0133093")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, movie)
				if tt.wantStatus != 0 {
					var se *StatusError
					require.True(t, errors.As(err, &se))
					assert.Equal(t, tt.wantStatus, se.HTTPStatus())
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRating, movie.Rating)
			assert.Equal(t, tt.wantDubious, movie.Dubious)
			assert.Equal(t, tt.wantTitle, movie.Title)
		})
	}
}

func TestMovie_UnmarshalYearAndID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"77","imdbid":"0000077","title":"X","year":"","rating":"0","dubious":""}`))
	}))
	defer srv.Close()

	movie, err := NewClient(WithBaseURL(srv.URL)).MovieByIMDbID(context.Background(), "0000077")
	require.NoError(t, err)
	assert.Equal(t, 77, movie.ID)
	assert.Equal(t, 0, movie.Year)
	require.NotNil(t, movie.Rating)
	assert.Equal(t, 0, *movie.Rating)
	assert.False(t, movie.Dubious)
}

func TestMovieByIMDbID_ContextCancelled(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.MovieByIMDbID(ctx, "0000001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func intPtr(n int) *int { return &n }
