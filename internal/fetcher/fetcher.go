// Package fetcher performs best-effort single-entity lookups against the
// metadata and rating catalogs. Failures are logged and surface as absence;
// no error crosses the package boundary.
package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/resilience"
	"github.com/cohortlab/cohort-cli/pkg/bechdel"
	"github.com/cohortlab/cohort-cli/pkg/tmdb"
)

// Catalog names used in logs and breaker keys.
const (
	CatalogTMDB    = "tmdb"
	CatalogBechdel = "bechdel"
)

// Options configures lookup policies. The zero value makes exactly one
// attempt per lookup with no circuit breaking.
type Options struct {
	Retry    resilience.RetryConfig
	Breakers *resilience.Breakers
}

// Fetcher wraps the catalog clients.
type Fetcher struct {
	tmdb     tmdb.Client
	bechdel  bechdel.Client
	retry    resilience.RetryConfig
	breakers *resilience.Breakers
	log      *zap.Logger
}

// New creates a Fetcher.
func New(tm tmdb.Client, bd bechdel.Client, opts Options) *Fetcher {
	return &Fetcher{
		tmdb:     tm,
		bechdel:  bd,
		retry:    opts.Retry,
		breakers: opts.Breakers,
		log:      zap.L().With(zap.String("component", "fetcher")),
	}
}

// lookup runs one catalog call through the configured policies and converts
// any failure into a logged absence.
func lookup[T any](ctx context.Context, f *Fetcher, catalog, op string, ref zap.Field, call func(context.Context) (T, error)) (T, bool) {
	run := call
	if f.breakers != nil {
		b := f.breakers.Get(catalog)
		run = func(ctx context.Context) (T, error) { return resilience.ExecuteVal(ctx, b, call) }
	}

	retry := f.retry
	if retry.OnRetry == nil && retry.MaxAttempts > 1 {
		retry.OnRetry = resilience.RetryLogger(catalog, op)
	}

	start := time.Now()
	v, err := resilience.DoVal(ctx, retry, run)
	if err != nil {
		f.log.Warn("catalog lookup failed",
			zap.String("catalog", catalog),
			zap.String("operation", op),
			ref,
			zap.Int("status", resilience.StatusOf(err)),
			zap.String("error_class", string(resilience.ClassifyError(err))),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		var zero T
		return zero, false
	}
	return v, true
}

// missing logs a successful response that lacks a required field.
func (f *Fetcher) missing(catalog, op, field string, ref zap.Field) {
	f.log.Warn("catalog response missing field",
		zap.String("catalog", catalog),
		zap.String("operation", op),
		zap.String("field", field),
		ref,
	)
}

// ForeignID returns the raw IMDb id for a movie, as carried by its details.
func (f *Fetcher) ForeignID(ctx context.Context, movieID int64) (string, bool) {
	ref := zap.Int64("movie_id", movieID)
	details, ok := lookup(ctx, f, CatalogTMDB, "movie details", ref, func(ctx context.Context) (*tmdb.MovieDetails, error) {
		return f.tmdb.MovieDetails(ctx, movieID)
	})
	if !ok {
		return "", false
	}
	if details.IMDbID == "" {
		f.missing(CatalogTMDB, "movie details", "imdb_id", ref)
		return "", false
	}
	return details.IMDbID, true
}

// PrimaryTitle returns a movie's title from the metadata catalog.
func (f *Fetcher) PrimaryTitle(ctx context.Context, movieID int64) (string, bool) {
	ref := zap.Int64("movie_id", movieID)
	details, ok := lookup(ctx, f, CatalogTMDB, "movie details", ref, func(ctx context.Context) (*tmdb.MovieDetails, error) {
		return f.tmdb.MovieDetails(ctx, movieID)
	})
	if !ok {
		return "", false
	}
	if details.Title == "" {
		f.missing(CatalogTMDB, "movie details", "title", ref)
		return "", false
	}
	return details.Title, true
}

// Credits returns every crew credit for a movie in response order.
// A credit without a gender code gets GenderUnknown.
func (f *Fetcher) Credits(ctx context.Context, movieID int64) ([]model.CrewCredit, bool) {
	ref := zap.Int64("movie_id", movieID)
	credits, ok := lookup(ctx, f, CatalogTMDB, "movie credits", ref, func(ctx context.Context) (*tmdb.Credits, error) {
		return f.tmdb.MovieCredits(ctx, movieID)
	})
	if !ok {
		return nil, false
	}

	out := make([]model.CrewCredit, 0, len(credits.Crew))
	for _, c := range credits.Crew {
		g := model.GenderUnknown
		if c.Gender != nil {
			g = model.Gender(*c.Gender)
		}
		out = append(out, model.CrewCredit{Name: c.Name, Job: c.Job, Gender: g})
	}
	return out, true
}

// Rating returns the rating catalog's record for a normalized foreign id.
// A known but unrated movie is present with a nil Score.
func (f *Fetcher) Rating(ctx context.Context, foreignID string) (*model.ExternalRating, bool) {
	ref := zap.String("foreign_id", foreignID)
	movie, ok := lookup(ctx, f, CatalogBechdel, "movie by imdb id", ref, func(ctx context.Context) (*bechdel.Movie, error) {
		return f.bechdel.MovieByIMDbID(ctx, foreignID)
	})
	if !ok {
		return nil, false
	}
	return &model.ExternalRating{Score: movie.Rating, Dubious: movie.Dubious, Title: movie.Title}, true
}

// SecondaryTitle returns a movie's title from the rating catalog.
func (f *Fetcher) SecondaryTitle(ctx context.Context, foreignID string) (string, bool) {
	rating, ok := f.Rating(ctx, foreignID)
	if !ok {
		return "", false
	}
	if rating.Title == "" {
		f.missing(CatalogBechdel, "movie by imdb id", "title", zap.String("foreign_id", foreignID))
		return "", false
	}
	return rating.Title, true
}

// Discover returns one page of the cohort listing. Release dates that do not
// parse are left nil and a listing without revenue yields 0.
func (f *Fetcher) Discover(ctx context.Context, year int, sortBy string, page int) (*model.MoviePage, bool) {
	ref := zap.Int("page", page)
	resp, ok := lookup(ctx, f, CatalogTMDB, "discover", ref, func(ctx context.Context) (*tmdb.DiscoverResponse, error) {
		return f.tmdb.Discover(ctx, tmdb.DiscoverRequest{Year: year, SortBy: sortBy, Page: page})
	})
	if !ok {
		return nil, false
	}

	out := &model.MoviePage{Page: resp.Page, TotalPages: resp.TotalPages}
	for _, r := range resp.Results {
		m := model.Movie{
			ID:          r.ID,
			Title:       r.Title,
			Revenue:     r.Revenue,
			VoteAverage: r.VoteAverage,
			VoteCount:   r.VoteCount,
			Overview:    r.Overview,
		}
		if d, err := time.Parse(time.DateOnly, r.ReleaseDate); err == nil {
			m.ReleaseDate = &d
		}
		out.Movies = append(out.Movies, m)
	}
	return out, true
}
