package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bazibench/internal/evaluation"
)

func writeResults(t *testing.T, dir, model string, results []evaluation.Result) {
	t.Helper()
	var b strings.Builder
	for _, r := range results {
		line, err := json.Marshal(r)
		require.NoError(t, err)
		b.Write(line)
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, model+"_results.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func TestComputeTaskMetrics(t *testing.T) {
	m := ComputeTaskMetrics([]evaluation.Result{
		{SampleID: "a", Score: 1.0, Tags: []string{"chart"}},
		{SampleID: "b", Score: 0.995, Tags: []string{"chart"}},
		{SampleID: "c", Score: 0.7, Tags: []string{"wuxing"}},
		{SampleID: "d", Score: 0.0},
	})

	require.Equal(t, 4, m["overall"].Count)
	// 0.995 counts as correct under the near-perfect threshold.
	require.InDelta(t, 0.5, m["overall"].Accuracy, 1e-9)
	require.Equal(t, 2, m["chart"].Count)
	require.InDelta(t, 1.0, m["chart"].Accuracy, 1e-9)
	require.Equal(t, 1, m["unknown"].Count)
	require.InDelta(t, 0.0, m["wuxing"].Accuracy, 1e-9)
}

func TestGenerateReport(t *testing.T) {
	dir := t.TempDir()
	writeResults(t, dir, "strong-model", []evaluation.Result{
		{SampleID: "a", Score: 1.0, Tags: []string{"chart"}},
		{SampleID: "b", Score: 1.0, Tags: []string{"wuxing"}},
	})
	writeResults(t, dir, "weak-model", []evaluation.Result{
		{SampleID: "a", Score: 0.2, Tags: []string{"chart"}},
		{SampleID: "b", Score: 0.1, Tags: []string{"wuxing"}},
	})

	out := filepath.Join(dir, "REPORT.md")
	require.NoError(t, Generate(dir, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	report := string(data)

	require.Contains(t, report, "# BaZiBench Evaluation Report")
	require.Contains(t, report, "## 🏆 Leaderboard")
	require.Contains(t, report, "### Chart")
	require.Contains(t, report, "### Wuxing")
	// The stronger model ranks first.
	require.Less(t,
		strings.Index(report, "strong-model"),
		strings.Index(report, "weak-model"))
}

func TestGenerateReportNoResults(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, Generate(dir, filepath.Join(dir, "REPORT.md")))
}

func TestRenderRanksByOverallScore(t *testing.T) {
	metrics := map[string]ModelMetrics{
		"b-model": {"overall": TaskStat{AvgScore: 0.9, Count: 10}},
		"a-model": {"overall": TaskStat{AvgScore: 0.4, Count: 10}},
	}
	out := Render(metrics, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.Contains(t, out, "2025-01-02 03:04:05")
	require.Less(t, strings.Index(out, "b-model"), strings.Index(out, "a-model"))
	require.Contains(t, out, "🥇")
}
