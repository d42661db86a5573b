package bazi

// InteractionsAnalysis lists every branch relation present in a chart.
// Relation types are checked independently; the same branch pair can
// appear under several types at once.
type InteractionsAnalysis struct {
	LiuHe    [][]string `json:"liuhe"`
	LiuChong [][]string `json:"liuchong"`
	SanHe    [][]string `json:"sanhe"`
	SanHui   [][]string `json:"sanhui"`
	Xing     [][]string `json:"xing"`
	SelfXing []string   `json:"self_xing"`
	LiuHai   [][]string `json:"liuhai"`
}

// AnalyzeInteractions detects combination, clash, triad, directional,
// punishment and harm relations among the given branches. Self-punishment
// requires a self-punishing branch to appear at least twice.
func AnalyzeInteractions(branches []string) InteractionsAnalysis {
	present := make(map[string]bool, len(branches))
	counts := make(map[string]int, len(branches))
	for _, b := range branches {
		present[b] = true
		counts[b]++
	}

	match := func(groups [][]string) [][]string {
		out := make([][]string, 0)
		for _, group := range groups {
			all := true
			for _, b := range group {
				if !present[b] {
					all = false
					break
				}
			}
			if all {
				out = append(out, append([]string(nil), group...))
			}
		}
		return out
	}

	selfXing := make([]string, 0)
	for _, b := range SelfXing {
		if counts[b] >= 2 {
			selfXing = append(selfXing, b)
		}
	}

	return InteractionsAnalysis{
		LiuHe:    match(LiuHe),
		LiuChong: match(LiuChong),
		SanHe:    match(SanHe),
		SanHui:   match(SanHui),
		Xing:     match(Xing),
		SelfXing: selfXing,
		LiuHai:   match(LiuHai),
	}
}
