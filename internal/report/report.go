// Package report renders a markdown leaderboard from per-model result
// files produced by the evaluator.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bazibench/internal/evaluation"
)

// TaskStat is one model's aggregate on a single task type.
type TaskStat struct {
	AvgScore float64
	Accuracy float64
	Count    int
}

// accuracyThreshold treats near-perfect scores as correct so fractional
// exact-match credit does not inflate accuracy.
const accuracyThreshold = 0.99

// ModelMetrics maps task type (plus "overall") to its stat.
type ModelMetrics map[string]TaskStat

// LoadResults reads every *_results.jsonl under dir keyed by model name.
func LoadResults(dir string) (map[string][]evaluation.Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*_results.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("glob results: %w", err)
	}
	all := make(map[string][]evaluation.Result, len(paths))
	for _, p := range paths {
		model := strings.TrimSuffix(filepath.Base(p), "_results.jsonl")
		results, err := evaluation.ReadResults(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		all[model] = results
	}
	return all, nil
}

// ComputeTaskMetrics buckets results by their first tag, which carries the
// task type, and totals an overall row.
func ComputeTaskMetrics(results []evaluation.Result) ModelMetrics {
	type acc struct {
		total   int
		correct int
		sum     float64
	}
	buckets := map[string]*acc{}
	add := func(key string, score float64) {
		a := buckets[key]
		if a == nil {
			a = &acc{}
			buckets[key] = a
		}
		a.total++
		a.sum += score
		if score >= accuracyThreshold {
			a.correct++
		}
	}

	for _, r := range results {
		task := "unknown"
		if len(r.Tags) > 0 {
			task = r.Tags[0]
		}
		add(task, r.Score)
		add("overall", r.Score)
	}

	m := make(ModelMetrics, len(buckets))
	for task, a := range buckets {
		m[task] = TaskStat{
			AvgScore: a.sum / float64(a.total),
			Accuracy: float64(a.correct) / float64(a.total),
			Count:    a.total,
		}
	}
	return m
}

var medals = []string{"🥇", "🥈", "🥉"}

// Render builds the markdown report: a leaderboard ranked by overall
// average score, then a per-task table.
func Render(allMetrics map[string]ModelMetrics, now time.Time) string {
	var b strings.Builder
	b.WriteString("# BaZiBench Evaluation Report\n\n")
	fmt.Fprintf(&b, "**Generated at:** %s\n\n", now.Format("2006-01-02 15:04:05"))

	b.WriteString("## 🏆 Leaderboard\n\n")
	b.WriteString("Models ranked by Overall Average Score.\n\n")
	b.WriteString("| Rank | Model | Overall Score | Accuracy | Samples |\n")
	b.WriteString("|------|-------|---------------|----------|---------|\n")

	models := rankModels(allMetrics, "overall")
	for i, model := range models {
		overall := allMetrics[model]["overall"]
		rank := fmt.Sprintf("%d", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "| %s | **%s** | %.4f | %.2f%% | %d |\n",
			rank, model, overall.AvgScore, overall.Accuracy*100, overall.Count)
	}

	b.WriteString("\n## 📊 Detailed Task Analysis\n\n")
	for _, task := range taskTypes(allMetrics) {
		fmt.Fprintf(&b, "### %s\n\n", titleCase(task))
		b.WriteString("| Model | Score | Accuracy | Count |\n")
		b.WriteString("|-------|-------|----------|-------|\n")
		for _, model := range rankModels(allMetrics, task) {
			stat, ok := allMetrics[model][task]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %.4f | %.2f%% | %d |\n",
				model, stat.AvgScore, stat.Accuracy*100, stat.Count)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Generate loads results from dir and writes the markdown report to out.
func Generate(dir, out string) error {
	results, err := LoadResults(dir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no result files in %s", dir)
	}
	allMetrics := make(map[string]ModelMetrics, len(results))
	for model, rs := range results {
		allMetrics[model] = ComputeTaskMetrics(rs)
	}
	if err := os.WriteFile(out, []byte(Render(allMetrics, time.Now())), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func rankModels(allMetrics map[string]ModelMetrics, task string) []string {
	models := make([]string, 0, len(allMetrics))
	for m := range allMetrics {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		si, sj := allMetrics[models[i]][task].AvgScore, allMetrics[models[j]][task].AvgScore
		if si != sj {
			return si > sj
		}
		return models[i] < models[j]
	})
	return models
}

func taskTypes(allMetrics map[string]ModelMetrics) []string {
	seen := map[string]struct{}{}
	for _, m := range allMetrics {
		for task := range m {
			if task != "overall" {
				seen[task] = struct{}{}
			}
		}
	}
	tasks := make([]string, 0, len(seen))
	for t := range seen {
		tasks = append(tasks, t)
	}
	sort.Strings(tasks)
	return tasks
}

func titleCase(task string) string {
	words := strings.Split(task, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
