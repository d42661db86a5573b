// Package httpapi exposes chart derivation, dataset generation and
// evaluation runs over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"bazibench/internal/bazi"
	"bazibench/internal/dataset"
	"bazibench/internal/storage"
	"bazibench/internal/store"
	"bazibench/internal/worker"
)

type Server struct {
	DB    *sqlx.DB
	Store *store.Store
	S3    *storage.Client
	Asynq *asynq.Client
}

func NewServer(dbx *sqlx.DB, s3c *storage.Client, asq *asynq.Client) *http.Server {
	s := &Server{DB: dbx, Store: store.New(dbx), S3: s3c, Asynq: asq}
	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, m.Logger, m.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIToken)
		r.Post("/charts", s.computeChart)
		r.Post("/datasets", s.createDataset)
		r.Post("/runs", s.createRun)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbx.Ping(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"status":"db error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return &http.Server{Addr: ":8000", Handler: r}
}

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type chartRequest struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Minute    int     `json:"minute"`
	Gender    string  `json:"gender,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	UTCOffset float64 `json:"utc_offset,omitempty"`
}

// computeChart derives the full analysis bundle for one birth moment.
func (s *Server) computeChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, errResp{err.Error()})
		return
	}
	loc := bazi.Beijing
	if req.Longitude != 0 || req.UTCOffset != 0 {
		loc = bazi.Location{Longitude: req.Longitude, UTCOffset: req.UTCOffset}
	}
	dt := time.Date(req.Year, time.Month(req.Month), req.Day, req.Hour, req.Minute, 0, 0, time.UTC)

	gen := dataset.NewGenerator(dataset.GeneratorConfig{Location: loc})
	analysis, err := gen.Analyze(dt, bazi.Gender(req.Gender))
	if err != nil {
		code := 500
		if errors.Is(err, bazi.ErrDateOutOfRange) || errors.Is(err, bazi.ErrInvalidGender) {
			code = 400
		}
		writeJSON(w, code, errResp{err.Error()})
		return
	}
	writeJSON(w, 200, analysis)
}

type datasetRequest struct {
	Seed      int64    `json:"seed"`
	Count     int      `json:"count"`
	Tasks     []string `json:"tasks,omitempty"`
	StartYear int      `json:"start_year,omitempty"`
	EndYear   int      `json:"end_year,omitempty"`
}

type datasetResp struct {
	Ref     string `json:"ref"`
	Samples int    `json:"samples"`
}

// createDataset generates a seeded benchmark and uploads it as one ndjson
// object.
func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	var req datasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, errResp{err.Error()})
		return
	}
	if req.Count <= 0 {
		req.Count = 80
	}
	gen := dataset.NewGenerator(dataset.GeneratorConfig{
		Seed:      req.Seed,
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
	})
	samples, err := gen.GenerateBatch(req.Count, req.Tasks)
	if err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}

	lines := make([]string, 0, len(samples))
	for _, sample := range samples {
		b, err := json.Marshal(sample)
		if err != nil {
			writeJSON(w, 500, errResp{err.Error()})
			return
		}
		lines = append(lines, string(b))
	}
	ref, err := s.S3.PutLines(r.Context(), lines)
	if err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}
	writeJSON(w, 200, datasetResp{Ref: ref, Samples: len(samples)})
}

type runRequest struct {
	Model      string `json:"model"`
	Judge      string `json:"judge,omitempty"`
	DatasetRef string `json:"dataset_ref"`
}

type runResp struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// createRun records a run and enqueues it for the evaluation worker.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, errResp{err.Error()})
		return
	}
	if req.Model == "" || req.DatasetRef == "" {
		writeJSON(w, 400, errResp{"model and dataset_ref are required"})
		return
	}

	run := store.NewRun(req.Model, req.Judge, req.DatasetRef)
	if err := s.Store.CreateRun(r.Context(), run); err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}

	task, err := worker.NewEvaluationTask(run.ID)
	if err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}
	if _, err := s.Asynq.Enqueue(task, asynq.MaxRetry(0)); err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}
	writeJSON(w, 200, runResp{RunID: run.ID, Status: run.Status})
}

type runOut struct {
	RunID      string          `json:"run_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Model      string          `json:"model"`
	Judge      string          `json:"judge,omitempty"`
	DatasetRef string          `json:"dataset_ref"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Metrics    json.RawMessage `json:"metrics,omitempty"`
}

func runToOut(run *store.Run) runOut {
	return runOut{
		RunID:      run.ID,
		CreatedAt:  run.CreatedAt,
		Model:      run.Model,
		Judge:      run.Judge.String,
		DatasetRef: run.DatasetRef,
		Status:     run.Status,
		Error:      run.Error.String,
		Metrics:    run.Metrics,
	}
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, 404, errResp{"not found"})
		return
	}
	if err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}
	writeJSON(w, 200, runToOut(run))
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Store.ListRuns(r.Context(), 50)
	if err != nil {
		writeJSON(w, 500, errResp{err.Error()})
		return
	}
	out := make([]runOut, len(runs))
	for i := range runs {
		out[i] = runToOut(&runs[i])
	}
	writeJSON(w, 200, out)
}
