package pipeline

import (
	"context"

	"github.com/cohortlab/cohort-cli/internal/model"
)

// Catalogs is the best-effort lookup surface the stages depend on. Absence
// is reported through the bool; errors never reach the caller.
// *fetcher.Fetcher satisfies it.
type Catalogs interface {
	ForeignID(ctx context.Context, movieID int64) (string, bool)
	PrimaryTitle(ctx context.Context, movieID int64) (string, bool)
	SecondaryTitle(ctx context.Context, foreignID string) (string, bool)
	Rating(ctx context.Context, foreignID string) (*model.ExternalRating, bool)
	Credits(ctx context.Context, movieID int64) ([]model.CrewCredit, bool)
	Discover(ctx context.Context, year int, sortBy string, page int) (*model.MoviePage, bool)
}

// Stage is a runnable pipeline step that loads its own inputs from the store.
type Stage interface {
	Name() string
	Run(ctx context.Context) (*Report, error)
}
