package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/store"
)

// StageSeed is the run-log name of the seed stage.
const StageSeed = "seed"

// SeedOptions selects the cohort.
type SeedOptions struct {
	Year   int
	Limit  int
	SortBy string
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.Year <= 0 {
		o.Year = 2023
	}
	if o.Limit <= 0 {
		o.Limit = 250
	}
	if o.SortBy == "" {
		o.SortBy = "revenue.desc"
	}
	return o
}

// Seeder discovers the cohort page by page and stores it.
type Seeder struct {
	catalogs Catalogs
	store    store.Store
	opts     SeedOptions
	log      *zap.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(cat Catalogs, st store.Store, opts SeedOptions) *Seeder {
	return &Seeder{
		catalogs: cat,
		store:    st,
		opts:     opts.withDefaults(),
		log:      zap.L().With(zap.String("component", "pipeline.seed")),
	}
}

func (s *Seeder) Name() string { return StageSeed }

// Run collects up to Limit movies, stopping early at the first unavailable
// or empty page, then upserts them in one batch. A movie listed on more than
// one page is kept once, at its first position.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	started := time.Now().UTC()

	var (
		movies []model.Movie
		seen   = make(map[int64]struct{})
	)
	for page := 1; len(movies) < s.opts.Limit; page++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "seed: interrupted")
		}
		p, ok := s.catalogs.Discover(ctx, s.opts.Year, s.opts.SortBy, page)
		if !ok {
			s.log.Warn("seed: page unavailable, stopping", zap.Int("page", page))
			break
		}
		if len(p.Movies) == 0 {
			s.log.Info("seed: no more results", zap.Int("page", page))
			break
		}
		for _, m := range p.Movies {
			if len(movies) >= s.opts.Limit {
				break
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			movies = append(movies, m)
		}
		if p.TotalPages > 0 && page >= p.TotalPages {
			break
		}
	}

	if len(movies) > 0 {
		if _, err := s.store.UpsertMovies(ctx, movies); err != nil {
			return nil, eris.Wrap(err, "seed: store movies")
		}
	}

	outcomes := make([]Outcome, len(movies))
	for i, m := range movies {
		outcomes[i] = succeeded(m.ID, movieRef(m.ID), 1)
	}
	r := newReport(StageSeed, started, outcomes)
	r.Log(s.log)
	return r, nil
}
