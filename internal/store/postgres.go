package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leadscope/prospect-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it
// for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool, for shared team deployments.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	params     JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'collecting',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fused_records (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	record   JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS rejections (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	reason   TEXT NOT NULL,
	entry    JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_rejections_reason ON rejections(reason);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *model.Run) error {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal params")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, params, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, paramsJSON, string(run.Status), run.CreatedAt, run.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrRunNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, params, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	run, err := scanPgRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, params, status, result, created_at, updated_at FROM runs`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, string(filter.Status), limit, filter.Offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) SaveOutput(ctx context.Context, runID string, result *model.RunResult, accepted []model.FusedRecord, rejected []model.Rejection) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save output")
	}
	defer tx.Rollback(ctx)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}
	if _, err := tx.Exec(ctx,
		`UPDATE runs SET result = $1, updated_at = $2 WHERE id = $3`,
		resultJSON, time.Now().UTC(), runID,
	); err != nil {
		return eris.Wrap(err, "postgres: update run result")
	}

	for i, rec := range accepted {
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal record")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO fused_records (run_id, position, record) VALUES ($1, $2, $3)`,
			runID, i, recJSON,
		); err != nil {
			return eris.Wrap(err, "postgres: insert fused record")
		}
	}

	for i, rej := range rejected {
		rejJSON, err := json.Marshal(rej)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal rejection")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO rejections (run_id, position, reason, entry) VALUES ($1, $2, $3, $4)`,
			runID, i, string(rej.Reason), rejJSON,
		); err != nil {
			return eris.Wrap(err, "postgres: insert rejection")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save output")
}

func (s *PostgresStore) GetOutput(ctx context.Context, runID string) ([]model.FusedRecord, []model.Rejection, error) {
	recRows, err := s.pool.Query(ctx,
		`SELECT record FROM fused_records WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: query fused records")
	}
	defer recRows.Close()

	var accepted []model.FusedRecord
	for recRows.Next() {
		var raw []byte
		if err := recRows.Scan(&raw); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan fused record")
		}
		var rec model.FusedRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: unmarshal fused record")
		}
		accepted = append(accepted, rec)
	}
	if err := recRows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: iterate fused records")
	}

	rejRows, err := s.pool.Query(ctx,
		`SELECT entry FROM rejections WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: query rejections")
	}
	defer rejRows.Close()

	var rejected []model.Rejection
	for rejRows.Next() {
		var raw []byte
		if err := rejRows.Scan(&raw); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan rejection")
		}
		var rej model.Rejection
		if err := json.Unmarshal(raw, &rej); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: unmarshal rejection")
		}
		rejected = append(rejected, rej)
	}
	return accepted, rejected, eris.Wrap(rejRows.Err(), "postgres: iterate rejections")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	var paramsJSON []byte
	var resultJSON []byte
	var status string

	if err := row.Scan(&run.ID, &paramsJSON, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	run.Status = model.RunStatus(status)

	if err := json.Unmarshal(paramsJSON, &run.Params); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal params")
	}
	if len(resultJSON) > 0 {
		run.Result = &model.RunResult{}
		if err := json.Unmarshal(resultJSON, run.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &run, nil
}
