// Package dataset defines the benchmark sample schema and the seeded
// generator/validator that produce ndjson datasets from the bazi core.
package dataset

import (
	"bazibench/internal/bazi"
)

// Task types a sample can exercise.
const (
	TaskChart         = "chart"
	TaskWuxing        = "wuxing"
	TaskTenGods       = "ten_gods"
	TaskStrength      = "strength"
	TaskInteractions  = "interactions"
	TaskDaYun         = "da_yun"
	TaskUsefulGod     = "useful_god"
	TaskComprehensive = "comprehensive"
)

// AllTaskTypes lists every supported task type.
var AllTaskTypes = []string{
	TaskChart, TaskWuxing, TaskTenGods, TaskStrength,
	TaskInteractions, TaskDaYun, TaskUsefulGod, TaskComprehensive,
}

// Evaluation strategy tags consumed by the scoring engine.
const (
	EvalExactMatch   = "exact_match"
	EvalPartialMatch = "partial_match"
	EvalLLMJudge     = "llm_judge"
)

// Input is the birth data a sample was derived from.
type Input struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Minute    int     `json:"minute"`
	Gender    string  `json:"gender,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	UTCOffset float64 `json:"utc_offset,omitempty"`
}

// Chart is the wire form of a four-pillar chart.
type Chart struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Hour  string `json:"hour"`

	YearStem    string `json:"year_stem"`
	YearBranch  string `json:"year_branch"`
	MonthStem   string `json:"month_stem"`
	MonthBranch string `json:"month_branch"`
	DayStem     string `json:"day_stem"`
	DayBranch   string `json:"day_branch"`
	HourStem    string `json:"hour_stem"`
	HourBranch  string `json:"hour_branch"`
}

// NewChart flattens a bazi.Chart into its wire form.
func NewChart(c bazi.Chart) Chart {
	return Chart{
		Year:  c.Year.GanZhi(),
		Month: c.Month.GanZhi(),
		Day:   c.Day.GanZhi(),
		Hour:  c.Hour.GanZhi(),

		YearStem:    c.Year.Stem,
		YearBranch:  c.Year.Branch,
		MonthStem:   c.Month.Stem,
		MonthBranch: c.Month.Branch,
		DayStem:     c.Day.Stem,
		DayBranch:   c.Day.Branch,
		HourStem:    c.Hour.Stem,
		HourBranch:  c.Hour.Branch,
	}
}

// Analysis is the full ground-truth bundle for one birth moment.
type Analysis struct {
	Chart        Chart                       `json:"chart"`
	Wuxing       bazi.ElementAnalysis        `json:"wuxing"`
	TenGods      bazi.TenGodsAnalysis        `json:"ten_gods"`
	Strength     bazi.StrengthAnalysis       `json:"strength"`
	Interactions bazi.InteractionsAnalysis   `json:"interactions"`
	Pattern      *bazi.PatternAnalysis       `json:"pattern,omitempty"`
	DaYun        []bazi.LuckPillar           `json:"da_yun,omitempty"`
	UsefulGod    *bazi.UsefulElementAnalysis `json:"useful_god,omitempty"`
}

// Sample is one benchmark record, persisted as a single ndjson line.
// Samples are never mutated after generation.
type Sample struct {
	ID             string         `json:"id"`
	Input          Input          `json:"input"`
	GroundTruth    Analysis       `json:"ground_truth"`
	Instruction    string         `json:"instruction"`
	ExpectedOutput string         `json:"expected_output"`
	Difficulty     int            `json:"difficulty"`
	Tags           []string       `json:"tags"`
	Evaluation     string         `json:"evaluation"`
	Meta           map[string]any `json:"meta,omitempty"`
}
