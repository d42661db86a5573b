package dataset

import (
	"fmt"

	"bazibench/internal/bazi"
)

// Strength scores outside this window indicate a scoring bug, not an
// unusual chart.
const (
	minStrengthScore = -10.0
	maxStrengthScore = 20.0
)

// Validator sanity-checks generated samples. Violations are returned as
// data; validation never fails with an error.
type Validator struct{}

// Validate checks one sample against the structural invariants and returns
// a human-readable violation per breach. An empty slice means valid.
func (Validator) Validate(s Sample) []string {
	var violations []string

	chart := s.GroundTruth.Chart
	for _, stem := range []string{chart.YearStem, chart.MonthStem, chart.DayStem, chart.HourStem} {
		if !bazi.IsStem(stem) {
			violations = append(violations, fmt.Sprintf("invalid stem: %q", stem))
		}
	}
	for _, branch := range []string{chart.YearBranch, chart.MonthBranch, chart.DayBranch, chart.HourBranch} {
		if !bazi.IsBranch(branch) {
			violations = append(violations, fmt.Sprintf("invalid branch: %q", branch))
		}
	}

	total := 0
	for _, n := range s.GroundTruth.Wuxing.Counts {
		total += n
	}
	if total != bazi.ElementTotal {
		violations = append(violations, fmt.Sprintf("element total must be %d, got %d", bazi.ElementTotal, total))
	}

	if n := len(s.GroundTruth.TenGods.Gods); n != 4 {
		violations = append(violations, fmt.Sprintf("ten gods count must be 4, got %d", n))
	}

	if score := s.GroundTruth.Strength.Score; score < minStrengthScore || score > maxStrengthScore {
		violations = append(violations, fmt.Sprintf("strength score out of range: %v", score))
	}

	return violations
}

// ValidateBatch maps sample id to violations for every invalid sample.
func (v Validator) ValidateBatch(samples []Sample) map[string][]string {
	invalid := make(map[string][]string)
	for _, s := range samples {
		if violations := v.Validate(s); len(violations) > 0 {
			invalid[s.ID] = violations
		}
	}
	return invalid
}
