// Package tmdb is a minimal client for the TMDB v3 movie endpoints used to
// build and enrich the cohort.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	defaultRPS      = 40
)

// Client performs lookups against the TMDB API.
type Client interface {
	Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error)
	MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error)
	MovieCredits(ctx context.Context, movieID int64) (*Credits, error)
}

// StatusError is returned when TMDB answers with a non-200 status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: %s: unexpected status %d", e.Op, e.StatusCode)
}

// HTTPStatus exposes the response status for retry classification.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLanguage overrides the language query parameter (default en-US).
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit overrides the default request rate (40 req/s).
// A non-positive value disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
	}
}

type httpClient struct {
	auth     string
	baseURL  string
	language string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a TMDB client authenticating with a v4 read access token.
// The token may be given with or without its "Bearer " prefix.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		auth:     bearer(token),
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(defaultRPS, defaultRPS),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func bearer(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return "Bearer " + token
}

func (c *httpClient) Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error) {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	if req.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(req.Year))
	}
	if req.SortBy != "" {
		params.Set("sort_by", req.SortBy)
	}
	params.Set("page", strconv.Itoa(max(req.Page, 1)))

	var out DiscoverResponse
	if err := c.get(ctx, "discover", "/discover/movie", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, "movie details", fmt.Sprintf("/movie/%d", movieID), url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) MovieCredits(ctx context.Context, movieID int64) (*Credits, error) {
	var out Credits
	if err := c.get(ctx, "movie credits", fmt.Sprintf("/movie/%d/credits", movieID), url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get issues one throttled GET and decodes a 200 response into out.
func (c *httpClient) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "tmdb: %s: rate limit wait", op)
	}

	params.Set("language", c.language)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eris.Wrapf(err, "tmdb: %s: create request", op)
	}
	req.Header.Set("Accept", "application/json")
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "tmdb: %s: send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "tmdb: %s: read response", op)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "tmdb: %s: unmarshal response", op)
	}
	return nil
}
