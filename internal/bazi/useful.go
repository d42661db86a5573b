package bazi

// UsefulElementAnalysis suggests the ten-god categories and elements that
// balance a chart, keyed off the day-master strength level.
type UsefulElementAnalysis struct {
	UsefulGod       string    `json:"useful_god"`
	UnfavorableGod  string    `json:"unfavorable_god"`
	UsefulElements  []Element `json:"useful_elements"`
	AvoidedElements []Element `json:"avoided_elements"`
}

// UsefulElement applies the strength-based heuristic: a weak day master
// wants seal and peer support (印比), a strong one wants draining and
// restraining categories (食伤财官), and a balanced chart leans on wealth
// and officer to stay in motion.
func UsefulElement(level string, c Chart) UsefulElementAnalysis {
	dayEl, _ := StemElement(c.Day.Stem)

	peer := dayEl
	seal := inverse(Sheng, dayEl)   // generates the day master
	output := Sheng[dayEl]          // the day master generates
	wealth := Ke[dayEl]             // the day master restrains
	officer := inverse(Ke, dayEl)   // restrains the day master

	switch level {
	case LevelStrong, LevelFairlyStrong:
		return UsefulElementAnalysis{
			UsefulGod:       "食伤财官",
			UnfavorableGod:  "印比",
			UsefulElements:  []Element{output, wealth, officer},
			AvoidedElements: []Element{seal, peer},
		}
	case LevelWeak:
		return UsefulElementAnalysis{
			UsefulGod:       "印比",
			UnfavorableGod:  "财官食伤",
			UsefulElements:  []Element{seal, peer},
			AvoidedElements: []Element{wealth, officer, output},
		}
	default:
		return UsefulElementAnalysis{
			UsefulGod:       "财官",
			UnfavorableGod:  "无",
			UsefulElements:  []Element{wealth, officer},
			AvoidedElements: []Element{},
		}
	}
}

// inverse finds the element mapping to target in a five-element cycle.
func inverse(cycle map[Element]Element, target Element) Element {
	for from, to := range cycle {
		if to == target {
			return from
		}
	}
	return target
}
