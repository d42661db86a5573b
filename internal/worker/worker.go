// Package worker consumes evaluation run jobs from Redis and drives the
// evaluator over the referenced dataset.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"bazibench/internal/dataset"
	"bazibench/internal/evaluation"
	"bazibench/internal/models"
	"bazibench/internal/storage"
	"bazibench/internal/store"
)

const TaskEvaluateRun = "run_evaluation"

type evaluationPayload struct {
	RunID string `json:"run_id"`
}

// NewEvaluationTask builds the asynq task for one run.
func NewEvaluationTask(runID string) (*asynq.Task, error) {
	b, err := json.Marshal(evaluationPayload{RunID: runID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TaskEvaluateRun, b), nil
}

type Server struct {
	Store *store.Store
	S3    *storage.Client
}

func (s *Server) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskEvaluateRun, s.handleEvaluation)
	return mux
}

// handleEvaluation runs one evaluation end to end. Failures land on the
// run row rather than bouncing the task; the queue never retries these.
func (s *Server) handleEvaluation(ctx context.Context, t *asynq.Task) error {
	var payload evaluationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Printf("bad evaluation payload: %v", err)
		return nil
	}
	runID := payload.RunID
	log.Printf("starting evaluation run %s", runID)

	run, err := s.Store.GetRun(ctx, runID)
	if err != nil {
		log.Printf("load run %s: %v", runID, err)
		return nil
	}
	if err := s.Store.UpdateRunStatus(ctx, runID, store.StatusRunning, ""); err != nil {
		log.Printf("mark run %s running: %v", runID, err)
	}

	metrics, err := s.evaluate(ctx, run)
	if err != nil {
		log.Printf("run %s failed: %v", runID, err)
		_ = s.Store.UpdateRunStatus(ctx, runID, store.StatusFailed, err.Error())
		return nil
	}

	if b, err := json.Marshal(metrics); err == nil {
		_ = s.Store.SaveRunMetrics(ctx, runID, b)
	}
	if err := s.Store.UpdateRunStatus(ctx, runID, store.StatusCompleted, ""); err != nil {
		log.Printf("mark run %s completed: %v", runID, err)
	}
	log.Printf("run %s completed: mean=%.4f n=%d", runID, metrics.Overall.Mean, metrics.Overall.Count)
	return nil
}

func (s *Server) evaluate(ctx context.Context, run *store.Run) (evaluation.Metrics, error) {
	samples, err := s.loadSamples(ctx, run.DatasetRef)
	if err != nil {
		return evaluation.Metrics{}, err
	}

	registry, err := models.LoadRegistry(modelsConfigPath())
	if err != nil {
		return evaluation.Metrics{}, err
	}
	model, err := registry.Get(run.Model)
	if err != nil {
		return evaluation.Metrics{}, err
	}
	var judge models.Client
	if run.Judge.Valid && run.Judge.String != "" {
		if judge, err = registry.Get(run.Judge.String); err != nil {
			return evaluation.Metrics{}, err
		}
	}

	ev := &evaluation.Evaluator{
		Model:     model,
		Judge:     judge,
		OutputDir: resultsDir(),
		Workers:   4,
	}
	metrics, err := ev.Run(ctx, samples)
	if err != nil {
		return metrics, err
	}

	results, err := evaluation.ReadResults(ev.ResultsPath())
	if err != nil {
		return metrics, err
	}
	for i := range results {
		r := &results[i]
		row := &store.ResultRow{
			RunID:       run.ID,
			SampleID:    r.SampleID,
			Score:       r.Score,
			EvalType:    r.EvalType,
			Difficulty:  r.Difficulty,
			ModelOutput: r.ModelOutput,
			CreatedAt:   run.CreatedAt,
		}
		if r.Error != "" {
			row.Error.String, row.Error.Valid = r.Error, true
		}
		if err := s.Store.SaveResult(ctx, row); err != nil {
			return metrics, err
		}
	}
	return metrics, nil
}

// loadSamples resolves a dataset ref: s3:// goes through object storage,
// anything else is a local ndjson path.
func (s *Server) loadSamples(ctx context.Context, ref string) ([]dataset.Sample, error) {
	if !strings.HasPrefix(ref, "s3://") {
		return dataset.ReadSamples(ref)
	}
	lines, err := s.S3.GetLines(ctx, ref)
	if err != nil {
		return nil, err
	}
	samples := make([]dataset.Sample, 0, len(lines))
	for i, line := range lines {
		var sample dataset.Sample
		if err := json.Unmarshal([]byte(line), &sample); err != nil {
			return nil, fmt.Errorf("parse sample %d from %s: %w", i+1, ref, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func modelsConfigPath() string {
	if p := os.Getenv("MODELS_CONFIG"); p != "" {
		return p
	}
	return "models.yaml"
}

func resultsDir() string {
	if d := os.Getenv("RESULTS_DIR"); d != "" {
		return d
	}
	return "data/results"
}

// Run starts the asynq consumer on the given Redis address.
func Run(addr string, db *sqlx.DB, s3c *storage.Client) error {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: addr}, asynq.Config{Concurrency: 5})
	w := &Server{Store: store.New(db), S3: s3c}
	return srv.Run(w.mux())
}
