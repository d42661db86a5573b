package scoring

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"bazibench/internal/dataset"
	"bazibench/internal/models"
)

// LLMJudge asks a judge model to grade an open-ended answer on a 0-10
// rubric, then normalizes to [0, 1]. Any judge failure scores 0 so a flaky
// judge cannot halt an evaluation run.
type LLMJudge struct {
	Judge models.Client
}

const judgePromptTemplate = `你是一位精通八字命理的评审专家。请根据标准答案评价模型回答的质量。

【标准答案】
%s

【模型回答】
%s

评分标准（0-10分）：
- 排盘是否正确
- 五行与十神分析是否准确
- 身强身弱判断是否一致
- 论述是否完整、有条理

请先简要说明理由，最后单独一行输出“评分: X”，X 为 0 到 10 的数字。`

var (
	judgeScoreRe = regexp.MustCompile(`(?i)(?:评分|score)[:：]\s*(\d+(?:\.\d+)?)`)
	bareNumberRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

func (j *LLMJudge) Score(ctx context.Context, groundTruth any, response string) float64 {
	gtText := toText(parseValue(groundTruth))
	if gtText == "" {
		gtText = fmt.Sprint(groundTruth)
	}
	prompt := fmt.Sprintf(judgePromptTemplate, gtText, response)

	reply, err := j.Judge.Generate(ctx, prompt, &models.Options{Temperature: 0})
	if err != nil {
		log.Printf("judge %s failed: %v", j.Judge.Name(), err)
		return 0
	}
	return parseJudgeScore(reply)
}

// parseJudgeScore reads the 评分 line, falling back to a bare number reply.
// The raw value is clamped to [0, 10] before normalizing.
func parseJudgeScore(reply string) float64 {
	raw := ""
	if m := judgeScoreRe.FindStringSubmatch(reply); m != nil {
		raw = m[1]
	} else if trimmed := strings.TrimSpace(reply); bareNumberRe.MatchString(trimmed) {
		raw = trimmed
	}
	if raw == "" {
		return 0
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score / 10
}

// ForTag picks the scorer for a sample's evaluation tag. Unknown tags fall
// back to exact matching; llm_judge without a judge client does too.
func ForTag(tag string, judge models.Client) Scorer {
	switch tag {
	case dataset.EvalPartialMatch:
		return PartialMatch{}
	case dataset.EvalLLMJudge:
		if judge != nil {
			return &LLMJudge{Judge: judge}
		}
		return ExactMatch{}
	default:
		return ExactMatch{}
	}
}
