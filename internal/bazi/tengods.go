package bazi

import "fmt"

// TenGod classifies the relation of target to the day stem into one of the
// ten god labels. The five element relations each split into two labels by
// polarity match.
func TenGod(dayStem, target string) (string, error) {
	day, ok := stemTable[dayStem]
	if !ok {
		return "", fmt.Errorf("%w: day stem %q", ErrUnknownTenGod, dayStem)
	}
	tgt, ok := stemTable[target]
	if !ok {
		return "", fmt.Errorf("%w: stem %q", ErrUnknownTenGod, target)
	}
	samePolarity := day.Polarity == tgt.Polarity

	switch {
	case day.Element == tgt.Element:
		return pick(samePolarity, "比肩", "劫财"), nil
	case Sheng[tgt.Element] == day.Element:
		return pick(samePolarity, "偏印", "正印"), nil
	case Sheng[day.Element] == tgt.Element:
		return pick(samePolarity, "食神", "伤官"), nil
	case Ke[day.Element] == tgt.Element:
		return pick(samePolarity, "偏财", "正财"), nil
	case Ke[tgt.Element] == day.Element:
		return pick(samePolarity, "七杀", "正官"), nil
	}
	return "", fmt.Errorf("%w: %s vs %s", ErrUnknownTenGod, dayStem, target)
}

func pick(same bool, ifSame, ifDiff string) string {
	if same {
		return ifSame
	}
	return ifDiff
}

// TenGodsAnalysis labels each pillar stem relative to the day master.
type TenGodsAnalysis struct {
	Gods   []string       `json:"gods"`
	Counts map[string]int `json:"counts"`
}

// AnalyzeTenGods classifies all four pillar stems against the day stem.
// The day stem itself classifies as 比肩, serving as the reference slot.
func AnalyzeTenGods(c Chart) (TenGodsAnalysis, error) {
	day := c.Day.Stem
	gods := make([]string, 0, 4)
	counts := make(map[string]int)
	for _, stem := range c.StemList() {
		god, err := TenGod(day, stem)
		if err != nil {
			return TenGodsAnalysis{}, err
		}
		gods = append(gods, god)
		counts[god]++
	}
	return TenGodsAnalysis{Gods: gods, Counts: counts}, nil
}
