// Package evaluation runs a model over a benchmark dataset, scores every
// reply, and appends results to a per-model jsonl file that supports
// resuming interrupted runs.
package evaluation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"bazibench/internal/dataset"
	"bazibench/internal/models"
	"bazibench/internal/scoring"
)

// Result is one scored sample, stored as a single jsonl line.
type Result struct {
	SampleID    string        `json:"sample_id"`
	Input       dataset.Input `json:"input"`
	Instruction string        `json:"instruction"`
	Expected    string        `json:"expected"`
	ModelOutput string        `json:"model_output"`
	Score       float64       `json:"score"`
	EvalType    string        `json:"eval_type"`
	Difficulty  int           `json:"difficulty"`
	Tags        []string      `json:"tags,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Evaluator drives one model over a dataset with a bounded worker pool.
type Evaluator struct {
	Model     models.Client
	Judge     models.Client
	OutputDir string
	Workers   int
	System    string
}

const defaultWorkers = 4

var unsafePathRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeName(name string) string {
	s := unsafePathRe.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "model"
	}
	return s
}

// ResultsPath is the jsonl file this evaluator appends to.
func (e *Evaluator) ResultsPath() string {
	return filepath.Join(e.OutputDir, sanitizeName(e.Model.Name())+"_results.jsonl")
}

// MetricsPath is the aggregate metrics file written after every run.
func (e *Evaluator) MetricsPath() string {
	return filepath.Join(e.OutputDir, sanitizeName(e.Model.Name())+"_metrics.json")
}

// Run evaluates every sample not already present in the results file.
// Model and scoring failures are recorded as zero-score results and do not
// stop the run. Cancelling ctx stops new submissions, drains in-flight
// work, and still writes metrics over everything scored so far.
func (e *Evaluator) Run(ctx context.Context, samples []dataset.Sample) (Metrics, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return Metrics{}, fmt.Errorf("create output dir: %w", err)
	}

	done, err := completedIDs(e.ResultsPath())
	if err != nil {
		return Metrics{}, err
	}

	pending := make([]dataset.Sample, 0, len(samples))
	for _, s := range samples {
		if _, ok := done[s.ID]; !ok {
			pending = append(pending, s)
		}
	}
	log.Printf("evaluating %s: %d samples (%d already done)", e.Model.Name(), len(pending), len(done))

	f, err := os.OpenFile(e.ResultsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Metrics{}, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	workers := e.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	enc := json.NewEncoder(f)

	for _, sample := range pending {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(s dataset.Sample) {
			defer wg.Done()
			defer func() { <-sem }()

			res := e.evaluateOne(ctx, s)

			// One jsonl line per sample, flushed immediately so an
			// interrupted run loses at most the in-flight samples.
			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(res); err != nil {
				log.Printf("write result %s: %v", s.ID, err)
			}
		}(sample)
	}
	wg.Wait()

	results, err := readResults(e.ResultsPath())
	if err != nil {
		return Metrics{}, err
	}
	metrics := ComputeMetrics(results)
	if err := WriteMetrics(e.MetricsPath(), metrics); err != nil {
		return metrics, err
	}
	return metrics, ctx.Err()
}

func (e *Evaluator) evaluateOne(ctx context.Context, s dataset.Sample) Result {
	res := Result{
		SampleID:    s.ID,
		Input:       s.Input,
		Instruction: s.Instruction,
		Expected:    s.ExpectedOutput,
		EvalType:    s.Evaluation,
		Difficulty:  s.Difficulty,
		Tags:        s.Tags,
	}

	opts := &models.Options{SystemPrompt: e.System}
	output, err := e.Model.Generate(ctx, s.Instruction, opts)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.ModelOutput = output

	scorer := scoring.ForTag(s.Evaluation, e.Judge)
	res.Score = scorer.Score(ctx, s.ExpectedOutput, output)
	return res
}

// completedIDs loads sample IDs already present in a results file. A
// missing file means a fresh run.
func completedIDs(path string) (map[string]struct{}, error) {
	results, err := readResults(path)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(results))
	for _, r := range results {
		ids[r.SampleID] = struct{}{}
	}
	return ids, nil
}

// ReadResults loads every result line from a jsonl file.
func ReadResults(path string) ([]Result, error) {
	return readResults(path)
}

func readResults(path string) ([]Result, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	var results []Result
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r Result
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("parse result line: %w", err)
		}
		results = append(results, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan results: %w", err)
	}
	return results, nil
}
