package bazi

// ElementAnalysis is the elemental balance of a chart.
//
// Counting convention: the four pillar stems count once each, and each
// branch contributes its main hidden stem only, so the total is always 8.
// (Counting every hidden stem was tried in earlier revisions but breaks
// the fixed-total invariant the validator relies on.)
type ElementAnalysis struct {
	Counts  map[Element]int     `json:"counts"`
	Missing []Element           `json:"missing"`
	Sheng   map[Element]Element `json:"sheng"`
	Ke      map[Element]Element `json:"ke"`
}

// ElementTotal is the fixed sum of Counts under the main-qi convention.
const ElementTotal = 8

// AnalyzeElements counts the chart's elements and reports missing ones.
func AnalyzeElements(c Chart) ElementAnalysis {
	counts := make(map[Element]int, len(Elements))

	for _, stem := range c.StemList() {
		el, _ := StemElement(stem)
		counts[el]++
	}
	for _, branch := range c.BranchList() {
		hidden := HiddenStems(branch)
		el, _ := StemElement(hidden[0].Stem)
		counts[el]++
	}

	missing := make([]Element, 0)
	for _, el := range Elements {
		if counts[el] == 0 {
			missing = append(missing, el)
		}
	}

	sheng := make(map[Element]Element, len(Sheng))
	for k, v := range Sheng {
		sheng[k] = v
	}
	ke := make(map[Element]Element, len(Ke))
	for k, v := range Ke {
		ke[k] = v
	}

	return ElementAnalysis{Counts: counts, Missing: missing, Sheng: sheng, Ke: ke}
}
