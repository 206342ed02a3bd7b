package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cohortlab/cohort-cli/internal/db"
	"github.com/cohortlab/cohort-cli/internal/model"
)

// runTimeLayout is fixed width so run timestamps sort as text.
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using modernc.org/sqlite. Dates and
// timestamps are stored as text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path with WAL mode and
// foreign keys enabled. A single connection serializes writers.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS top_movies (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	release_date TEXT,
	revenue      INTEGER NOT NULL DEFAULT 0,
	vote_average REAL NOT NULL DEFAULT 0,
	vote_count   INTEGER NOT NULL DEFAULT 0,
	overview     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ids (
	id      INTEGER PRIMARY KEY REFERENCES top_movies(id),
	imdb_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ids_imdb_id ON ids(imdb_id);

CREATE TABLE IF NOT EXISTS rating (
	id      INTEGER PRIMARY KEY REFERENCES top_movies(id),
	rating  INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 3),
	dubious INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS directors (
	movie_id    INTEGER PRIMARY KEY REFERENCES top_movies(id),
	person_name TEXT NOT NULL,
	job         TEXT NOT NULL,
	gender      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS composers (
	movie_id    INTEGER PRIMARY KEY REFERENCES top_movies(id),
	person_name TEXT NOT NULL,
	job         TEXT NOT NULL,
	gender      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ingest_runs (
	id           TEXT PRIMARY KEY,
	stage        TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	report       TEXT,
	error        TEXT,
	started_at   TEXT NOT NULL,
	completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_ingest_runs_started_at ON ingest_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertMovies(ctx context.Context, movies []model.Movie) (int64, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert movies")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(movieColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO top_movies (%s) VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, release_date = excluded.release_date,
		revenue = excluded.revenue, vote_average = excluded.vote_average,
		vote_count = excluded.vote_count, overview = excluded.overview`,
		strings.Join(movieColumns, ", "), placeholders))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert movies")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, m := range movies {
		res, err := stmt.ExecContext(ctx, m.ID, m.Title, formatDate(m.ReleaseDate), m.Revenue, m.VoteAverage, m.VoteCount, m.Overview)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert movie %d", m.ID)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert movies")
	}
	return n, nil
}

func (s *SQLiteStore) ListMovieIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM top_movies ORDER BY revenue DESC, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list movie ids")
	}
	defer rows.Close() //nolint:errcheck

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan movie id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate movie ids")
}

func (s *SQLiteStore) InsertCrossRef(ctx context.Context, ref model.CrossReference) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ids (id, imdb_id) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
		ref.MovieID, ref.ForeignID,
	)
	return insertOutcome(res, err, "sqlite: insert cross-reference %d", ref.MovieID)
}

func (s *SQLiteStore) ListCrossRefs(ctx context.Context) ([]model.CrossReference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.imdb_id FROM ids i JOIN top_movies t ON t.id = i.id ORDER BY t.revenue DESC, i.id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cross-references")
	}
	defer rows.Close() //nolint:errcheck

	var refs []model.CrossReference
	for rows.Next() {
		var r model.CrossReference
		if err := rows.Scan(&r.MovieID, &r.ForeignID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cross-reference")
		}
		refs = append(refs, r)
	}
	return refs, eris.Wrap(rows.Err(), "sqlite: iterate cross-references")
}

func (s *SQLiteStore) InsertRating(ctx context.Context, r model.Rating) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rating (id, rating, dubious) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		r.MovieID, r.Score, r.Dubious,
	)
	return insertOutcome(res, err, "sqlite: insert rating %d", r.MovieID)
}

func (s *SQLiteStore) GetRating(ctx context.Context, movieID int64) (*model.Rating, error) {
	r := model.Rating{MovieID: movieID}
	err := s.db.QueryRowContext(ctx, `SELECT rating, dubious FROM rating WHERE id = ?`, movieID).Scan(&r.Score, &r.Dubious)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get rating %d", movieID)
	}
	return &r, nil
}

func (s *SQLiteStore) UpsertCrew(ctx context.Context, rec model.CrewRecord) error {
	table, err := crewTable(rec.Role)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (movie_id, person_name, job, gender) VALUES (?, ?, ?, ?)
		ON CONFLICT (movie_id) DO UPDATE SET person_name = excluded.person_name, job = excluded.job, gender = excluded.gender`,
		table),
		rec.MovieID, rec.PersonName, rec.Job, int(rec.Gender),
	)
	return eris.Wrapf(err, "sqlite: upsert %s %d", table, rec.MovieID)
}

func (s *SQLiteStore) GetCrew(ctx context.Context, role model.RoleKind, movieID int64) (*model.CrewRecord, error) {
	table, err := crewTable(role)
	if err != nil {
		return nil, err
	}
	var (
		rec    = model.CrewRecord{MovieID: movieID, Role: role}
		gender int
	)
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT person_name, job, gender FROM %s WHERE movie_id = ?`, table),
		movieID,
	).Scan(&rec.PersonName, &rec.Job, &gender)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s %d", table, movieID)
	}
	rec.Gender = model.Gender(gender)
	return &rec, nil
}

func (s *SQLiteStore) Dataset(ctx context.Context) ([]model.DatasetRow, error) {
	rows, err := s.db.QueryContext(ctx, datasetQuery)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query dataset")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.DatasetRow
	for rows.Next() {
		var (
			d           datasetScan
			releaseDate *string
		)
		dests := append([]any{
			&d.row.MovieID, &d.row.Title, &releaseDate,
			&d.row.Revenue, &d.row.VoteAverage, &d.row.VoteCount,
		}, d.dests()...)
		if err := rows.Scan(dests...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dataset row")
		}
		d.row.ReleaseDate = parseDate(releaseDate)
		out = append(out, d.finish())
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate dataset")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, stage string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Stage:     stage,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Stage, string(run.Status), run.StartedAt.Format(runTimeLayout),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: create run for %s", stage)
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, report []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET status = ?, report = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), nullableText(report), time.Now().UTC().Format(runTimeLayout), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), errMsg, time.Now().UTC().Format(runTimeLayout), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, status, report, COALESCE(error, ''), started_at, completed_at
		FROM ingest_runs ORDER BY started_at DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var (
			r                 model.Run
			status, started   string
			report, completed *string
		)
		if err := rows.Scan(&r.ID, &r.Stage, &status, &report, &r.Error, &started, &completed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		if report != nil {
			r.Report = []byte(*report)
		}
		if r.StartedAt, err = time.Parse(runTimeLayout, started); err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse started_at for run %s", r.ID)
		}
		if completed != nil {
			t, err := time.Parse(runTimeLayout, *completed)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: parse completed_at for run %s", r.ID)
			}
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// insertOutcome maps an insert-skip-on-conflict result to (written, error).
func insertOutcome(res sql.Result, err error, format string, args ...any) (bool, error) {
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, format, args...)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n == 1, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %s", entity, id)
	}
	return nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil
	}
	return &t
}

func nullableText(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
