// Package store persists evaluation runs and scored results in Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

func MustOpen() *sqlx.DB {
	dsn := os.Getenv("DATABASE_URL")
	return sqlx.MustConnect("pgx", dsn)
}

func Open() (*sqlx.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func WithTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Store wraps the run and result queries.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) CreateRun(ctx context.Context, r *Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, created_at, model, judge, dataset_ref, status)
		VALUES (:id, :created_at, :model, :judge, :dataset_ref, :status)`, r)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	err := s.db.GetContext(ctx, &r, `SELECT * FROM runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

func (s *Store) UpdateRunStatus(ctx context.Context, id, status, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = $2, error = NULLIF($3, ''), updated_at = now()
		WHERE id = $1`, id, status, errMsg)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

// SaveRunMetrics stores the aggregate metrics JSON on the run row.
func (s *Store) SaveRunMetrics(ctx context.Context, id string, metrics []byte) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET metrics = $2, updated_at = now() WHERE id = $1`, id, metrics)
	if err != nil {
		return fmt.Errorf("save run metrics: %w", err)
	}
	return nil
}

// SaveResult upserts one scored sample; reruns overwrite the old row so a
// resumed run stays idempotent.
func (s *Store) SaveResult(ctx context.Context, r *ResultRow) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO results (run_id, sample_id, score, eval_type, difficulty, model_output, error, created_at)
		VALUES (:run_id, :sample_id, :score, :eval_type, :difficulty, :model_output, :error, :created_at)
		ON CONFLICT (run_id, sample_id) DO UPDATE
		SET score = EXCLUDED.score, model_output = EXCLUDED.model_output, error = EXCLUDED.error`, r)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// CompletedSampleIDs lists samples already scored for a run.
func (s *Store) CompletedSampleIDs(ctx context.Context, runID string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `SELECT sample_id FROM results WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("list completed samples: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `SELECT * FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
