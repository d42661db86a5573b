package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one evaluation of a model over a dataset.
type Run struct {
	ID         string         `db:"id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
	Model      string         `db:"model"`
	Judge      sql.NullString `db:"judge"`
	DatasetRef string         `db:"dataset_ref"`
	Status     string         `db:"status"`
	Error      sql.NullString `db:"error"`
	Metrics    []byte         `db:"metrics"`
}

// NewRun builds a pending run with a fresh ID.
func NewRun(model, judge, datasetRef string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Model:      model,
		Judge:      sql.NullString{String: judge, Valid: judge != ""},
		DatasetRef: datasetRef,
		Status:     StatusPending,
	}
}

// ResultRow is one scored sample within a run.
type ResultRow struct {
	RunID       string         `db:"run_id"`
	SampleID    string         `db:"sample_id"`
	Score       float64        `db:"score"`
	EvalType    string         `db:"eval_type"`
	Difficulty  int            `db:"difficulty"`
	ModelOutput string         `db:"model_output"`
	Error       sql.NullString `db:"error"`
	CreatedAt   time.Time      `db:"created_at"`
}
