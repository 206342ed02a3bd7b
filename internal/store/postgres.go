package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/cohortlab/cohort-cli/internal/db"
	"github.com/cohortlab/cohort-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore and verifies the connection.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns, minConns := int32(10), int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return migratePostgres(ctx, s.pool)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertMovies(ctx context.Context, movies []model.Movie) (int64, error) {
	rows := make([][]any, len(movies))
	for i, m := range movies {
		rows[i] = []any{m.ID, m.Title, m.ReleaseDate, m.Revenue, m.VoteAverage, int32(m.VoteCount), m.Overview}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "top_movies",
		Columns:      movieColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert movies")
	}
	return n, nil
}

func (s *PostgresStore) ListMovieIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM top_movies ORDER BY revenue DESC, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list movie ids")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan movie ids")
	}
	return ids, nil
}

func (s *PostgresStore) InsertCrossRef(ctx context.Context, ref model.CrossReference) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO ids (id, imdb_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		ref.MovieID, ref.ForeignID,
	)
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert cross-reference %d", ref.MovieID)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListCrossRefs(ctx context.Context) ([]model.CrossReference, error) {
	rows, err := s.pool.Query(ctx, `SELECT i.id, i.imdb_id FROM ids i JOIN top_movies t ON t.id = i.id ORDER BY t.revenue DESC, i.id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cross-references")
	}
	defer rows.Close()

	var refs []model.CrossReference
	for rows.Next() {
		var r model.CrossReference
		if err := rows.Scan(&r.MovieID, &r.ForeignID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cross-reference")
		}
		refs = append(refs, r)
	}
	return refs, eris.Wrap(rows.Err(), "postgres: iterate cross-references")
}

func (s *PostgresStore) InsertRating(ctx context.Context, r model.Rating) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO rating (id, rating, dubious) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		r.MovieID, int16(r.Score), r.Dubious,
	)
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert rating %d", r.MovieID)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) GetRating(ctx context.Context, movieID int64) (*model.Rating, error) {
	var (
		r     = model.Rating{MovieID: movieID}
		score int16
	)
	err := s.pool.QueryRow(ctx, `SELECT rating, dubious FROM rating WHERE id = $1`, movieID).Scan(&score, &r.Dubious)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get rating %d", movieID)
	}
	r.Score = int(score)
	return &r, nil
}

func (s *PostgresStore) UpsertCrew(ctx context.Context, rec model.CrewRecord) error {
	table, err := crewTable(rec.Role)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (movie_id, person_name, job, gender) VALUES ($1, $2, $3, $4)
		ON CONFLICT (movie_id) DO UPDATE SET person_name = EXCLUDED.person_name, job = EXCLUDED.job, gender = EXCLUDED.gender`,
		table),
		rec.MovieID, rec.PersonName, rec.Job, int16(rec.Gender),
	)
	return eris.Wrapf(err, "postgres: upsert %s %d", table, rec.MovieID)
}

func (s *PostgresStore) GetCrew(ctx context.Context, role model.RoleKind, movieID int64) (*model.CrewRecord, error) {
	table, err := crewTable(role)
	if err != nil {
		return nil, err
	}
	var (
		rec    = model.CrewRecord{MovieID: movieID, Role: role}
		gender int16
	)
	err = s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT person_name, job, gender FROM %s WHERE movie_id = $1`, table),
		movieID,
	).Scan(&rec.PersonName, &rec.Job, &gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get %s %d", table, movieID)
	}
	rec.Gender = model.Gender(gender)
	return &rec, nil
}

func (s *PostgresStore) Dataset(ctx context.Context) ([]model.DatasetRow, error) {
	rows, err := s.pool.Query(ctx, datasetQuery)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query dataset")
	}
	defer rows.Close()

	var out []model.DatasetRow
	for rows.Next() {
		var (
			d         datasetScan
			voteCount int32
		)
		dests := append([]any{
			&d.row.MovieID, &d.row.Title, &d.row.ReleaseDate,
			&d.row.Revenue, &d.row.VoteAverage, &voteCount,
		}, d.dests()...)
		if err := rows.Scan(dests...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dataset row")
		}
		d.row.VoteCount = int(voteCount)
		out = append(out, d.finish())
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate dataset")
}

func (s *PostgresStore) CreateRun(ctx context.Context, stage string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Stage:     stage,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_runs (id, stage, status, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Stage, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: create run for %s", stage)
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, report []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, report = $2, completed_at = $3 WHERE id = $4`,
		string(model.RunStatusComplete), json.RawMessage(report), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, stage, status, report, COALESCE(error, ''), started_at, completed_at
		FROM ingest_runs ORDER BY started_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var (
			r      model.Run
			status string
			report []byte
		)
		if err := rows.Scan(&r.ID, &r.Stage, &status, &report, &r.Error, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		r.Report = report
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
