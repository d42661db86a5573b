package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bazibench/internal/dataset"
	"bazibench/internal/models"
)

type fakeJudge struct {
	reply string
	err   error
}

func (f *fakeJudge) Name() string { return "fake-judge" }

func (f *fakeJudge) Generate(ctx context.Context, prompt string, opts *models.Options) (string, error) {
	return f.reply, f.err
}

func TestParseJudgeScore(t *testing.T) {
	cases := []struct {
		reply string
		want  float64
	}{
		{"排盘基本正确。\n评分: 8", 0.8},
		{"评分：7.5", 0.75},
		{"Score: 9", 0.9},
		{"6", 0.6},
		{"评分: 15", 1.0},
		{"没有给出分数", 0.0},
		{"", 0.0},
	}
	for _, tc := range cases {
		require.InDelta(t, tc.want, parseJudgeScore(tc.reply), 1e-9, "reply %q", tc.reply)
	}
}

func TestLLMJudgeScore(t *testing.T) {
	j := &LLMJudge{Judge: &fakeJudge{reply: "结构完整，评分: 9"}}
	got := j.Score(context.Background(), "标准答案", "模型回答")
	require.InDelta(t, 0.9, got, 1e-9)
}

func TestLLMJudgeFailureScoresZero(t *testing.T) {
	j := &LLMJudge{Judge: &fakeJudge{err: errors.New("boom")}}
	require.Equal(t, 0.0, j.Score(context.Background(), "标准答案", "模型回答"))
}

func TestForTag(t *testing.T) {
	judge := &fakeJudge{reply: "评分: 10"}

	require.IsType(t, ExactMatch{}, ForTag(dataset.EvalExactMatch, nil))
	require.IsType(t, PartialMatch{}, ForTag(dataset.EvalPartialMatch, nil))
	require.IsType(t, &LLMJudge{}, ForTag(dataset.EvalLLMJudge, judge))
	// No judge configured: judged samples degrade to exact matching.
	require.IsType(t, ExactMatch{}, ForTag(dataset.EvalLLMJudge, nil))
	require.IsType(t, ExactMatch{}, ForTag("unknown", nil))
}
