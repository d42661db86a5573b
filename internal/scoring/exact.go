package scoring

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bazibench/internal/bazi"
)

// Scorer grades one model response against its ground truth.
type Scorer interface {
	Score(ctx context.Context, groundTruth any, response string) float64
}

// ExactMatch demands structural equality for JSON ground truth and applies
// task-aware soft rules for textual ground truth.
type ExactMatch struct{}

func (ExactMatch) Score(_ context.Context, groundTruth any, response string) float64 {
	gt := parseValue(groundTruth)
	resp := parseValue(response)

	switch g := gt.(type) {
	case map[string]any:
		r, ok := resp.(map[string]any)
		if !ok || len(r) != len(g) {
			return 0
		}
		for k, v := range g {
			rv, present := r[k]
			if !present || !jsonEqual(v, rv) {
				return 0
			}
		}
		return 1
	case []any:
		r, ok := resp.([]any)
		if !ok || !jsonEqual(g, r) {
			return 0
		}
		return 1
	default:
		return textMatch(toText(gt), toText(resp))
	}
}

// jsonEqual compares decoded JSON values. Numbers compare by value so an
// int ground truth matches a float64 from json.Unmarshal.
func jsonEqual(a, b any) bool {
	if am, ok := a.(map[string]any); ok {
		bm, ok := b.(map[string]any)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, present := bm[k]
			if !present || !jsonEqual(av, bv) {
				return false
			}
		}
		return true
	}
	if as, ok := a.([]any); ok {
		bs, ok := b.([]any)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !jsonEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

var (
	markupStripper = strings.NewReplacer("**", "", "__", "")
	elementColonRe = map[string]*regexp.Regexp{}
	elementTightRe = map[string]*regexp.Regexp{}
	missingRe      = regexp.MustCompile(`缺失[五行]*[：:]\s*([^\n，。]+)`)
	scoreRe        = regexp.MustCompile(`得分[：:]\s*([+-]?\d+\.?\d*)`)
	pillarRe       = regexp.MustCompile(`(?s)([甲乙丙丁戊己庚辛壬癸][子丑寅卯辰巳午未申酉戌亥]).*?([甲乙丙丁戊己庚辛壬癸][子丑寅卯辰巳午未申酉戌亥]).*?([甲乙丙丁戊己庚辛壬癸][子丑寅卯辰巳午未申酉戌亥]).*?([甲乙丙丁戊己庚辛壬癸][子丑寅卯辰巳午未申酉戌亥])`)
)

func init() {
	for _, e := range bazi.Elements {
		s := string(e)
		elementColonRe[s] = regexp.MustCompile(s + `[：:]\s*(\d+)`)
		elementTightRe[s] = regexp.MustCompile(s + `(\d+)`)
	}
}

// textMatch grades text ground truth, trying the wuxing, ten-god, strength
// and chart conventions in turn before a plain containment fallback.
func textMatch(gt, resp string) float64 {
	gt = strings.TrimSpace(gt)
	resp = strings.TrimSpace(resp)
	if gt == resp {
		return 1
	}

	gtCounts := extractElementCounts(gt)
	respCounts := extractElementCounts(resp)
	if len(gtCounts) > 0 && len(respCounts) > 0 {
		gtMissing := extractMissing(gt)
		respMissing := extractMissing(resp)
		if countsEqual(gtCounts, respCounts) {
			if sameSet(gtMissing, respMissing) {
				return 1
			}
			return 0.7
		}
		if sameSet(gtMissing, respMissing) {
			diff := 0
			common := false
			for e, n := range gtCounts {
				if m, ok := respCounts[e]; ok {
					common = true
					diff += abs(n - m)
				}
			}
			if common {
				return math.Max(0.3, 1-float64(diff)/8)
			}
		}
		return 0
	}

	if gtGods := extractTenGods(gt); len(gtGods) > 0 {
		respGods := extractTenGods(resp)
		if sameSlice(gtGods, respGods) {
			return 1
		}
		if len(respGods) > 0 {
			matched := 0
			for _, g := range gtGods {
				if strings.Contains(resp, g) {
					matched++
				}
			}
			return float64(matched) / float64(len(gtGods))
		}
	}

	if gtLevel := extractStrengthLevel(gt); gtLevel != "" {
		respLevel := extractStrengthLevel(resp)
		if respLevel != gtLevel {
			return 0
		}
		gtScore, gtOK := extractStrengthScore(gt)
		respScore, respOK := extractStrengthScore(resp)
		if gtOK && respOK {
			delta := math.Abs(gtScore - respScore)
			switch {
			case delta < 0.5:
				return 1
			case delta < 1.0:
				return 0.7
			}
		}
		return 0.8
	}

	if gtPillars := extractChart(gt); len(gtPillars) == 4 {
		respPillars := extractChart(resp)
		if sameSlice(gtPillars, respPillars) {
			return 1
		}
		if len(respPillars) == 4 {
			matched := 0
			for i := range gtPillars {
				if gtPillars[i] == respPillars[i] {
					matched++
				}
			}
			return float64(matched) / 4
		}
	}

	if strings.Contains(resp, gt) {
		return 1
	}
	return 0
}

// extractElementCounts reads 金: 2 or 金2 style tallies after stripping
// bold and underline markers.
func extractElementCounts(text string) map[string]int {
	text = markupStripper.Replace(text)
	counts := map[string]int{}
	for _, e := range bazi.Elements {
		s := string(e)
		m := elementColonRe[s].FindStringSubmatch(text)
		if m == nil {
			m = elementTightRe[s].FindStringSubmatch(text)
		}
		if m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				counts[s] = n
			}
		}
	}
	return counts
}

// extractMissing reads the 缺失五行 clause. Phrases asserting nothing is
// missing yield an empty list, as does no mention at all.
func extractMissing(text string) []string {
	for _, none := range []string{"无缺失", "五行俱全", "没有缺失", "缺失五行：无", "缺失：无"} {
		if strings.Contains(text, none) {
			return nil
		}
	}
	m := missingRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var missing []string
	for _, e := range bazi.Elements {
		if strings.Contains(m[1], string(e)) {
			missing = append(missing, string(e))
		}
	}
	return missing
}

func extractTenGods(text string) []string {
	var gods []string
	for _, g := range bazi.TenGodNames {
		if strings.Contains(text, g) {
			gods = append(gods, g)
		}
	}
	return gods
}

// extractStrengthLevel canonicalizes level wording before matching, so
// 身旺 and 偏强 land on 身强 and 偏弱 lands on 身弱.
func extractStrengthLevel(text string) string {
	text = strings.NewReplacer("身旺", "身强", "偏强", "身强", "偏弱", "身弱").Replace(text)
	for _, level := range []string{bazi.LevelStrong, bazi.LevelWeak, bazi.LevelNeutral} {
		if strings.Contains(text, level) {
			return level
		}
	}
	return ""
}

func extractStrengthScore(text string) (float64, bool) {
	m := scoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	return f, err == nil
}

func extractChart(text string) []string {
	m := pillarRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return m[1:]
}

func countsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func sameSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
