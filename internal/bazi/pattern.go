package bazi

// PatternAnalysis is a best-effort chart pattern (格局) classification
// from the month branch's main qi.
type PatternAnalysis struct {
	MainPattern string   `json:"main_pattern"`
	SubPatterns []string `json:"sub_patterns"`
	Description string   `json:"description"`
}

// AnalyzePattern names the pattern after the ten god of the month branch's
// dominant hidden stem, and notes whether that stem surfaces among the
// visible stems (透干).
func AnalyzePattern(c Chart) (PatternAnalysis, error) {
	hidden := HiddenStems(c.Month.Branch)
	mainQi := hidden[0].Stem

	god, err := TenGod(c.Day.Stem, mainQi)
	if err != nil {
		return PatternAnalysis{}, err
	}

	surfaced := false
	for _, stem := range []string{c.Year.Stem, c.Month.Stem, c.Hour.Stem} {
		if stem == mainQi {
			surfaced = true
			break
		}
	}

	desc := "月令本气" + mainQi + "未透干。"
	sub := make([]string, 0, 1)
	if surfaced {
		desc = "月令本气" + mainQi + "透出天干，格局成立。"
		sub = append(sub, god+"透干")
	}

	return PatternAnalysis{
		MainPattern: god + "格",
		SubPatterns: sub,
		Description: desc,
	}, nil
}
