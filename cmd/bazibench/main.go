// Command bazibench generates benchmark datasets, evaluates models over
// them, and renders the leaderboard report, all against local files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"bazibench/internal/dataset"
	"bazibench/internal/evaluation"
	"bazibench/internal/models"
	"bazibench/internal/report"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "evaluate":
		runEvaluate(os.Args[2:])
	case "report":
		runReport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bazibench <command> [flags]

commands:
  generate   produce a seeded ndjson dataset
  validate   check a dataset against the derivation pipeline
  evaluate   run one or more models over a dataset
  report     render REPORT.md from result files`)
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("out", "data/bazibench.jsonl", "output ndjson path")
	count := fs.Int("count", 80, "number of samples")
	seed := fs.Int64("seed", 42, "generation seed")
	tasks := fs.String("tasks", "", "comma-separated task types (default: all)")
	startYear := fs.Int("start-year", 0, "start of the birth-date window")
	endYear := fs.Int("end-year", 0, "end of the birth-date window")
	_ = fs.Parse(args)

	gen := dataset.NewGenerator(dataset.GeneratorConfig{
		Seed:      *seed,
		StartYear: *startYear,
		EndYear:   *endYear,
	})
	samples, err := gen.GenerateBatch(*count, splitList(*tasks))
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	violations := dataset.Validator{}.ValidateBatch(samples)
	if len(violations) > 0 {
		for id, vs := range violations {
			log.Printf("sample %s: %s", id, strings.Join(vs, "; "))
		}
		log.Fatalf("generate: %d invalid samples", len(violations))
	}

	if err := dataset.WriteSamples(*out, samples); err != nil {
		log.Fatalf("write dataset: %v", err)
	}
	log.Printf("wrote %d samples to %s", len(samples), *out)
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	in := fs.String("in", "data/bazibench.jsonl", "dataset ndjson path")
	_ = fs.Parse(args)

	samples, err := dataset.ReadSamples(*in)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}
	violations := dataset.Validator{}.ValidateBatch(samples)
	if len(violations) == 0 {
		log.Printf("%d samples OK", len(samples))
		return
	}
	for id, vs := range violations {
		log.Printf("sample %s: %s", id, strings.Join(vs, "; "))
	}
	log.Fatalf("%d of %d samples invalid", len(violations), len(samples))
}

func runEvaluate(args []string) {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	in := fs.String("in", "data/bazibench.jsonl", "dataset ndjson path")
	outDir := fs.String("out-dir", "data/results", "results directory")
	modelNames := fs.String("models", "", "comma-separated model names (default: all configured)")
	judgeName := fs.String("judge", "", "judge model for llm_judge samples")
	configPath := fs.String("config", "models.yaml", "model registry path")
	workers := fs.Int("workers", 4, "concurrent samples per model")
	system := fs.String("system", "", "system prompt sent with every sample")
	_ = fs.Parse(args)

	samples, err := dataset.ReadSamples(*in)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}

	registry, err := models.LoadRegistry(*configPath)
	if err != nil {
		log.Fatalf("load registry: %v", err)
	}

	names := splitList(*modelNames)
	if len(names) == 0 {
		names = registry.List()
	}
	if len(names) == 0 {
		log.Fatal("no models to evaluate: pass -models or configure models.yaml")
	}

	var judge models.Client
	if *judgeName != "" {
		if judge, err = registry.Get(*judgeName); err != nil {
			log.Fatalf("judge %s: %v", *judgeName, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, name := range names {
		model, err := registry.Get(name)
		if err != nil {
			log.Fatalf("model %s: %v", name, err)
		}
		ev := &evaluation.Evaluator{
			Model:     model,
			Judge:     judge,
			OutputDir: *outDir,
			Workers:   *workers,
			System:    *system,
		}
		metrics, err := ev.Run(ctx, samples)
		if err != nil {
			log.Printf("evaluate %s: %v", name, err)
			if ctx.Err() != nil {
				return
			}
			continue
		}
		log.Printf("%s: mean=%.4f std=%.4f n=%d", name, metrics.Overall.Mean, metrics.Overall.Std, metrics.Overall.Count)
	}
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dir := fs.String("results-dir", "data/results", "directory with *_results.jsonl files")
	out := fs.String("out", "REPORT.md", "output markdown path")
	_ = fs.Parse(args)

	if err := report.Generate(*dir, *out); err != nil {
		log.Fatalf("report: %v", err)
	}
	log.Printf("report written to %s", *out)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
