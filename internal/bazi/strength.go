package bazi

import "math"

// relation buckets an element against the day element.
type relation int

const (
	relSame relation = iota
	relSupported
	relDrain
	relControlled
	relControls
)

func relate(day, target Element) relation {
	switch {
	case day == target:
		return relSame
	case Sheng[target] == day:
		return relSupported
	case Sheng[day] == target:
		return relDrain
	case Ke[target] == day:
		return relControlled
	default:
		return relControls
	}
}

// StrengthPolicy holds the scoring weights and level thresholds for
// day-master strength. The exact constants are tuning policy, not a fixed
// law; callers may override any of them.
type StrengthPolicy struct {
	MonthSame      float64
	MonthSupported float64
	MonthOther     float64

	StemSame      float64
	StemSupported float64
	StemOther     float64

	MainQiWeight     float64
	ResidualQiWeight float64

	StrongAt       float64
	FairlyStrongAt float64
	NeutralAt      float64
}

// DefaultStrengthPolicy returns the calibrated default weights.
func DefaultStrengthPolicy() StrengthPolicy {
	return StrengthPolicy{
		MonthSame:      4.0,
		MonthSupported: 3.0,
		MonthOther:     -2.0,

		StemSame:      1.0,
		StemSupported: 0.5,
		StemOther:     -0.5,

		MainQiWeight:     1.0,
		ResidualQiWeight: 0.4,

		StrongAt:       6.0,
		FairlyStrongAt: 2.0,
		NeutralAt:      -2.0,
	}
}

// Strength levels, strongest first.
const (
	LevelStrong       = "身强"
	LevelFairlyStrong = "身偏强"
	LevelNeutral      = "中和"
	LevelWeak         = "身弱"
)

// StrengthLevels is the ordinal label set.
var StrengthLevels = []string{LevelStrong, LevelFairlyStrong, LevelNeutral, LevelWeak}

// StrengthAnalysis is the day-master strength verdict.
type StrengthAnalysis struct {
	Score float64 `json:"score"`
	Level string  `json:"level"`
}

// AnalyzeStrength scores the day master against month command, the other
// visible stems, and every branch's hidden stems weighted by qi rank.
func AnalyzeStrength(c Chart, p StrengthPolicy) StrengthAnalysis {
	dayEl, _ := StemElement(c.Day.Stem)

	score := 0.0

	// 得令: the month branch carries the highest weight.
	monthEl, _ := BranchElement(c.Month.Branch)
	switch relate(dayEl, monthEl) {
	case relSame:
		score += p.MonthSame
	case relSupported:
		score += p.MonthSupported
	default:
		score += p.MonthOther
	}

	// 得势: the three non-day stems.
	for _, stem := range []string{c.Year.Stem, c.Month.Stem, c.Hour.Stem} {
		el, _ := StemElement(stem)
		switch relate(dayEl, el) {
		case relSame:
			score += p.StemSame
		case relSupported:
			score += p.StemSupported
		default:
			score += p.StemOther
		}
	}

	// 得地: hidden stems of all four branches, main qi weighted above the rest.
	for _, branch := range c.BranchList() {
		for i, hidden := range HiddenStems(branch) {
			weight := p.MainQiWeight
			if i > 0 {
				weight = p.ResidualQiWeight
			}
			el, _ := StemElement(hidden.Stem)
			switch relate(dayEl, el) {
			case relSame:
				score += p.StemSame * weight
			case relSupported:
				score += p.StemSupported * weight
			default:
				score += p.StemOther * weight
			}
		}
	}

	score = math.Round(score*100) / 100

	level := LevelWeak
	switch {
	case score >= p.StrongAt:
		level = LevelStrong
	case score >= p.FairlyStrongAt:
		level = LevelFairlyStrong
	case score >= p.NeutralAt:
		level = LevelNeutral
	}

	return StrengthAnalysis{Score: score, Level: level}
}
