// Package bechdel is a client for the bechdeltest.com v1 API.
package bechdel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://bechdeltest.com"
	defaultRPS     = 5
)

// Client looks up movie ratings by IMDb id.
type Client interface {
	MovieByIMDbID(ctx context.Context, imdbID string) (*Movie, error)
}

// StatusError is returned for a non-200 response, or for a 200 response whose
// payload carries an error status (the API reports unknown ids that way).
type StatusError struct {
	StatusCode  int
	Description string
}

func (e *StatusError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("bechdel: unexpected status %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("bechdel: unexpected status %d", e.StatusCode)
}

// HTTPStatus exposes the status for retry classification.
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

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit overrides the default request rate (5 req/s).
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
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a bechdeltest.com client. The API is unauthenticated.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(defaultRPS, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) MovieByIMDbID(ctx context.Context, imdbID string) (*Movie, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "bechdel: rate limit wait")
	}

	endpoint := c.baseURL + "/api/v1/getMovieByImdbId?" + url.Values{"imdbid": {imdbID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "bechdel: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "bechdel: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "bechdel: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var movie Movie
	if err := json.Unmarshal(body, &movie); err != nil {
		return nil, eris.Wrap(err, "bechdel: unmarshal response")
	}
	if movie.Status != 0 && movie.Status != http.StatusOK {
		return nil, &StatusError{StatusCode: movie.Status, Description: movie.Description}
	}
	return &movie, nil
}
