package evaluation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeMetrics(t *testing.T) {
	results := []Result{
		{SampleID: "a", Score: 1.0, Difficulty: 2, Tags: []string{"chart"}},
		{SampleID: "b", Score: 0.5, Difficulty: 2, Tags: []string{"chart"}},
		{SampleID: "c", Score: 0.0, Difficulty: 4, Tags: []string{"strength"}, Error: "model unavailable"},
	}
	m := ComputeMetrics(results)

	require.Equal(t, 3, m.Overall.Count)
	require.InDelta(t, 0.5, m.Overall.Mean, 1e-9)
	require.InDelta(t, 0.4082, m.Overall.Std, 0.0001)

	require.Equal(t, 2, m.ByDifficulty["2"].Count)
	require.InDelta(t, 0.75, m.ByDifficulty["2"].Mean, 1e-9)
	require.Equal(t, 1, m.ByDifficulty["4"].Count)

	require.InDelta(t, 0.75, m.ByTag["chart"].Mean, 1e-9)
	require.InDelta(t, 0.0, m.ByTag["strength"].Mean, 1e-9)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil)
	require.Equal(t, 0, m.Overall.Count)
	require.Equal(t, 0.0, m.Overall.Mean)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	m := ComputeMetrics([]Result{{SampleID: "a", Score: 1, Difficulty: 1, Tags: []string{"chart"}}})
	require.NoError(t, WriteMetrics(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Metrics
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Equal(t, m.Overall, loaded.Overall)
	require.Contains(t, loaded.ByTag, "chart")
}
