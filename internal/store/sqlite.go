package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leadscope/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the default
// backend for single-user runs against a local file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	params     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'collecting',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS fused_records (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	record   TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS rejections (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	reason   TEXT NOT NULL,
	entry    TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_rejections_reason ON rejections(reason);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal params")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, params, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(paramsJSON), string(run.Status), run.CreatedAt, run.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, params, status, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, params, status, result, created_at, updated_at FROM runs`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) SaveOutput(ctx context.Context, runID string, result *model.RunResult, accepted []model.FusedRecord, rejected []model.Rejection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save output")
	}
	defer tx.Rollback()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET result = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), time.Now().UTC(), runID,
	); err != nil {
		return eris.Wrap(err, "sqlite: update run result")
	}

	for i, rec := range accepted {
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal record")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fused_records (run_id, position, record) VALUES (?, ?, ?)`,
			runID, i, string(recJSON),
		); err != nil {
			return eris.Wrap(err, "sqlite: insert fused record")
		}
	}

	for i, rej := range rejected {
		rejJSON, err := json.Marshal(rej)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal rejection")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rejections (run_id, position, reason, entry) VALUES (?, ?, ?, ?)`,
			runID, i, string(rej.Reason), string(rejJSON),
		); err != nil {
			return eris.Wrap(err, "sqlite: insert rejection")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save output")
}

func (s *SQLiteStore) GetOutput(ctx context.Context, runID string) ([]model.FusedRecord, []model.Rejection, error) {
	recRows, err := s.db.QueryContext(ctx,
		`SELECT record FROM fused_records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: query fused records")
	}
	defer recRows.Close()

	var accepted []model.FusedRecord
	for recRows.Next() {
		var raw string
		if err := recRows.Scan(&raw); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan fused record")
		}
		var rec model.FusedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: unmarshal fused record")
		}
		accepted = append(accepted, rec)
	}
	if err := recRows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: iterate fused records")
	}

	rejRows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM rejections WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: query rejections")
	}
	defer rejRows.Close()

	var rejected []model.Rejection
	for rejRows.Next() {
		var raw string
		if err := rejRows.Scan(&raw); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan rejection")
		}
		var rej model.Rejection
		if err := json.Unmarshal([]byte(raw), &rej); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: unmarshal rejection")
		}
		rejected = append(rejected, rej)
	}
	return accepted, rejected, eris.Wrap(rejRows.Err(), "sqlite: iterate rejections")
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var paramsJSON string
	var resultJSON sql.NullString
	var status string

	if err := row.Scan(&run.ID, &paramsJSON, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	run.Status = model.RunStatus(status)

	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal params")
	}
	if resultJSON.Valid {
		run.Result = &model.RunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), run.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &run, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrRunNotFound, "run %s", runID)
	}
	return nil
}
