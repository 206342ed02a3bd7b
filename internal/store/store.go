// Package store persists the cohort, its cross-references and the attribute
// tables, with an explicit write policy per table.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/cohortlab/cohort-cli/internal/model"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines persistence for the ingestion pipeline. Write methods follow
// one policy per table:
//   - top_movies and crew tables: upsert, last write wins on non-key fields
//   - ids and rating: insert, skip on conflict; the returned bool is false
//     when an existing row was kept
type Store interface {
	// Movies
	UpsertMovies(ctx context.Context, movies []model.Movie) (int64, error)
	ListMovieIDs(ctx context.Context) ([]int64, error)

	// Cross-references
	InsertCrossRef(ctx context.Context, ref model.CrossReference) (bool, error)
	ListCrossRefs(ctx context.Context) ([]model.CrossReference, error)

	// Attributes
	InsertRating(ctx context.Context, r model.Rating) (bool, error)
	GetRating(ctx context.Context, movieID int64) (*model.Rating, error)
	UpsertCrew(ctx context.Context, rec model.CrewRecord) error
	GetCrew(ctx context.Context, role model.RoleKind, movieID int64) (*model.CrewRecord, error)

	// Dataset joins every movie with its attributes, highest revenue first.
	Dataset(ctx context.Context) ([]model.DatasetRow, error)

	// Runs
	CreateRun(ctx context.Context, stage string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report []byte) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// crewTable resolves the table for a role, rejecting unknown roles before
// the name reaches SQL.
func crewTable(role model.RoleKind) (string, error) {
	t := role.Table()
	if t == "" {
		return "", eris.Errorf("store: unknown crew role %q", role)
	}
	return t, nil
}

// movieColumns is the column order shared by both drivers for top_movies.
var movieColumns = []string{"id", "title", "release_date", "revenue", "vote_average", "vote_count", "overview"}

const datasetQuery = `
SELECT t.id, t.title, t.release_date, t.revenue, t.vote_average, t.vote_count,
       i.imdb_id, r.rating, r.dubious,
       d.person_name, d.gender, c.person_name, c.gender
FROM top_movies t
LEFT JOIN ids i ON i.id = t.id
LEFT JOIN rating r ON r.id = t.id
LEFT JOIN directors d ON d.movie_id = t.id
LEFT JOIN composers c ON c.movie_id = t.id
ORDER BY t.revenue DESC, t.id`

// datasetScan holds nullable dataset columns that are common to both drivers.
type datasetScan struct {
	row            model.DatasetRow
	rating         *int
	directorGender *int
	composerGender *int
}

func (d *datasetScan) dests() []any {
	return []any{
		&d.row.ForeignID, &d.rating, &d.row.Dubious,
		&d.row.DirectorName, &d.directorGender,
		&d.row.ComposerName, &d.composerGender,
	}
}

func (d *datasetScan) finish() model.DatasetRow {
	d.row.Rating = d.rating
	if d.directorGender != nil {
		g := model.Gender(*d.directorGender)
		d.row.DirectorGender = &g
	}
	if d.composerGender != nil {
		g := model.Gender(*d.composerGender)
		d.row.ComposerGender = &g
	}
	return d.row
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 50
	}
	return limit
}
