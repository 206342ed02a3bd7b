package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL), WithRateLimit(0))
}

func TestDiscover(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/discover/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2023", q.Get("primary_release_year"))
		assert.Equal(t, "revenue.desc", q.Get("sort_by"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "false", q.Get("include_adult"))
		assert.Equal(t, "false", q.Get("include_video"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{
			"page": 2,
			"total_pages": 13,
			"total_results": 250,
			"results": [
				{"id": 346698, "title": "Barbie", "release_date": "2023-07-19", "vote_average": 7.1, "vote_count": 8000},
				{"id": 872585, "title": "Oppenheimer", "release_date": "2023-07-19"}
			]
		}`))
	})

	resp, err := client.Discover(context.Background(), DiscoverRequest{Year: 2023, SortBy: "revenue.desc", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 13, resp.TotalPages)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, int64(346698), resp.Results[0].ID)
	assert.Equal(t, "Barbie", resp.Results[0].Title)
	assert.Equal(t, 8000, resp.Results[0].VoteCount)
}

func TestDiscover_DefaultsPage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("primary_release_year"))
		_, _ = w.Write([]byte(`{"page": 1, "total_pages": 1, "results": []}`))
	})

	resp, err := client.Discover(context.Background(), DiscoverRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestMovieDetails(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
		wantIMDb   string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"id": 10, "imdb_id": "tt0000010", "title": "Movie Ten", "revenue": 1200}`,
			wantIMDb: "tt0000010",
		},
		{
			name:     "null imdb id",
			status:   http.StatusOK,
			body:     `{"id": 10, "imdb_id": null, "title": "Movie Ten"}`,
			wantIMDb: "",
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"status_code": 34, "status_message": "The resource you requested could not be found."}`,
			wantErr:    "unexpected status 404",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{}`,
			wantErr:    "unexpected status 429",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `{invalid`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/movie/10", r.URL.Path)
				assert.Equal(t, "en-US", r.URL.Query().Get("language"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			details, err := client.MovieDetails(context.Background(), 10)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, details)
				if tt.wantStatus != 0 {
					var se *StatusError
					require.True(t, errors.As(err, &se))
					assert.Equal(t, tt.wantStatus, se.HTTPStatus())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIMDb, details.IMDbID)
			assert.Equal(t, "Movie Ten", details.Title)
		})
	}
}

func TestMovieCredits(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603/credits", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 603,
			"crew": [
				{"id": 1, "name": "Lana Wachowski", "job": "Director", "department": "Directing", "gender": 1},
				{"id": 2, "name": "Don Davis", "job": "Original Music Composer", "department": "Sound", "gender": 2},
				{"id": 3, "name": "Someone", "job": "Music"}
			]
		}`))
	})

	credits, err := client.MovieCredits(context.Background(), 603)
	require.NoError(t, err)
	require.Len(t, credits.Crew, 3)
	assert.Equal(t, "Director", credits.Crew[0].Job)
	require.NotNil(t, credits.Crew[0].Gender)
	assert.Equal(t, 1, *credits.Crew[0].Gender)
	assert.Nil(t, credits.Crew[2].Gender)
}

func TestNewClient_BearerPrefix(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"abc", "Bearer abc"},
		{"Bearer abc", "Bearer abc"},
		{"bearer  abc ", "Bearer abc"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, bearer(tt.token))
		})
	}
}

func TestNewClient_NoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL+"/"), WithLanguage("fr-FR"))
	_, err := client.MovieDetails(context.Background(), 1)
	require.NoError(t, err)
}

func TestMovieDetails_ContextCancelled(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.MovieDetails(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
