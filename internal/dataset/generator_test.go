package dataset

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bazibench/internal/bazi"
)

func TestGeneratorDeterminism(t *testing.T) {
	a := NewGenerator(GeneratorConfig{Seed: 7})
	b := NewGenerator(GeneratorConfig{Seed: 7})

	sa, err := a.GenerateBatch(20, nil)
	require.NoError(t, err)
	sb, err := b.GenerateBatch(20, nil)
	require.NoError(t, err)

	require.Len(t, sb, 20)
	for i := range sa {
		// IDs are fresh per sample; everything derived from the seed
		// must match.
		require.Equal(t, sa[i].Input, sb[i].Input, "sample %d", i)
		require.Equal(t, sa[i].Instruction, sb[i].Instruction, "sample %d", i)
		require.Equal(t, sa[i].ExpectedOutput, sb[i].ExpectedOutput, "sample %d", i)
		require.Equal(t, sa[i].Tags, sb[i].Tags, "sample %d", i)
	}
}

func TestGeneratorSeedsDiverge(t *testing.T) {
	a, err := NewGenerator(GeneratorConfig{Seed: 1}).GenerateBatch(10, nil)
	require.NoError(t, err)
	b, err := NewGenerator(GeneratorConfig{Seed: 2}).GenerateBatch(10, nil)
	require.NoError(t, err)

	same := 0
	for i := range a {
		if a[i].Input == b[i].Input {
			same++
		}
	}
	require.Less(t, same, 10)
}

func TestGenerateSamplePerTask(t *testing.T) {
	wantEval := map[string]string{
		TaskChart:         EvalExactMatch,
		TaskWuxing:        EvalExactMatch,
		TaskTenGods:       EvalExactMatch,
		TaskStrength:      EvalExactMatch,
		TaskInteractions:  EvalPartialMatch,
		TaskDaYun:         EvalPartialMatch,
		TaskUsefulGod:     EvalPartialMatch,
		TaskComprehensive: EvalLLMJudge,
	}

	g := NewGenerator(GeneratorConfig{Seed: 42})
	for _, task := range AllTaskTypes {
		s, err := g.GenerateSample(task)
		require.NoError(t, err, task)

		require.NotEmpty(t, s.ID, task)
		require.NotEmpty(t, s.Instruction, task)
		require.NotEmpty(t, s.ExpectedOutput, task)
		require.Equal(t, []string{task}, s.Tags)
		require.Equal(t, wantEval[task], s.Evaluation, task)
		require.GreaterOrEqual(t, s.Difficulty, 1, task)
		require.LessOrEqual(t, s.Difficulty, 5, task)
	}
}

func TestGenerateSampleChartOutput(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42})
	s, err := g.GenerateSample(TaskChart)
	require.NoError(t, err)

	require.Contains(t, s.Instruction, "八字")
	for _, label := range []string{"年柱:", "月柱:", "日柱:", "时柱:"} {
		require.Contains(t, s.ExpectedOutput, label)
	}
	require.Contains(t, s.ExpectedOutput, s.GroundTruth.Chart.Year)
}

func TestGenerateSampleStructuredOutputsParse(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42})

	s, err := g.GenerateSample(TaskInteractions)
	require.NoError(t, err)
	var inter map[string]any
	require.NoError(t, json.Unmarshal([]byte(s.ExpectedOutput), &inter))
	for _, key := range []string{"liuhe", "liuchong", "sanhe", "sanhui", "xing", "self_xing", "liuhai"} {
		require.Contains(t, inter, key)
	}

	s, err = g.GenerateSample(TaskDaYun)
	require.NoError(t, err)
	require.NotEmpty(t, s.Input.Gender)
	var daYun []map[string]any
	require.NoError(t, json.Unmarshal([]byte(s.ExpectedOutput), &daYun))
	require.Len(t, daYun, 8)
	require.Contains(t, daYun[0], "start_age")
	require.Contains(t, daYun[0], "ganzhi")

	s, err = g.GenerateSample(TaskUsefulGod)
	require.NoError(t, err)
	var useful map[string]string
	require.NoError(t, json.Unmarshal([]byte(s.ExpectedOutput), &useful))
	require.Len(t, useful, 2)
}

func TestGenerateBatchTaskFilter(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42})
	samples, err := g.GenerateBatch(12, []string{TaskChart, TaskWuxing})
	require.NoError(t, err)
	require.Len(t, samples, 12)
	for _, s := range samples {
		require.Contains(t, []string{TaskChart, TaskWuxing}, s.Tags[0])
	}
}

func TestGenerateSampleUnknownTask(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42})
	_, err := g.GenerateSample("nope")
	require.Error(t, err)
}

func TestRandomDateWithinWindow(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42, StartYear: 1980, EndYear: 1990})
	for i := 0; i < 200; i++ {
		dt := g.RandomDate()
		require.GreaterOrEqual(t, dt.Year(), 1980)
		require.LessOrEqual(t, dt.Year(), 1990)
	}
}

func TestAnalyzeBundle(t *testing.T) {
	g := NewGenerator(GeneratorConfig{})
	a, err := g.Analyze(time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC), bazi.Male)
	require.NoError(t, err)

	require.Equal(t, "乙亥", a.Chart.Year)
	require.Equal(t, "癸", a.Chart.DayStem)
	require.Equal(t, []string{"食神", "伤官", "比肩", "偏财"}, a.TenGods.Gods)
	require.Len(t, a.DaYun, 8)
	require.NotNil(t, a.Pattern)
	require.NotNil(t, a.UsefulGod)

	// Without a gender there is no luck cycle.
	a, err = g.Analyze(time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC), "")
	require.NoError(t, err)
	require.Empty(t, a.DaYun)
}

func TestNDJSONRoundTrip(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42})
	samples, err := g.GenerateBatch(6, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "samples.jsonl")
	require.NoError(t, WriteSamples(path, samples))

	loaded, err := ReadSamples(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(samples))
	for i := range samples {
		require.Equal(t, samples[i].ID, loaded[i].ID)
		require.Equal(t, samples[i].ExpectedOutput, loaded[i].ExpectedOutput)
	}
}

func TestValidator(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Seed: 42})
	samples, err := g.GenerateBatch(24, nil)
	require.NoError(t, err)

	v := Validator{}
	require.Empty(t, v.ValidateBatch(samples))

	bad := samples[0]
	bad.GroundTruth.Chart.DayStem = "子"
	violations := v.Validate(bad)
	require.NotEmpty(t, violations)
	require.Contains(t, strings.Join(violations, "; "), "invalid stem")

	bad = samples[1]
	bad.GroundTruth.Wuxing.Counts = map[bazi.Element]int{bazi.Wood: 3}
	require.NotEmpty(t, v.Validate(bad))

	bad = samples[2]
	bad.GroundTruth.Strength.Score = 99
	require.NotEmpty(t, v.Validate(bad))
}
