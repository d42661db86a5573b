package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PartialMatch grants fractional credit field by field for structured
// ground truth, with order-insensitive list comparison and domain synonym
// handling for strength levels and useful-god phrasing.
type PartialMatch struct{}

func (PartialMatch) Score(_ context.Context, groundTruth any, response string) float64 {
	gt := parseValue(groundTruth)
	resp := parseValue(response)

	switch g := gt.(type) {
	case map[string]any:
		r, ok := resp.(map[string]any)
		if !ok {
			return 0
		}
		return matchMap(g, r)
	case []any:
		r, ok := resp.([]any)
		if !ok {
			return 0
		}
		return matchLists("list", g, r)
	default:
		if toText(gt) == toText(resp) {
			return 1
		}
		return 0
	}
}

func matchMap(gt, resp map[string]any) float64 {
	if len(gt) == 0 {
		return 0
	}
	correct := 0.0
	for key, gtVal := range gt {
		respVal, present := resp[key]
		if !present {
			continue
		}
		correct += matchField(key, gtVal, respVal)
	}
	return correct / float64(len(gt))
}

// matchField yields credit in [0, 1] for one ground-truth field.
func matchField(key string, gtVal, respVal any) float64 {
	if gtList, ok := gtVal.([]any); ok {
		respList, ok := respVal.([]any)
		if !ok {
			return 0
		}
		return matchLists(key, gtList, respList)
	}
	if gtMap, ok := gtVal.(map[string]any); ok {
		respMap, ok := respVal.(map[string]any)
		if !ok {
			return 0
		}
		return matchMap(gtMap, respMap)
	}
	if gtS, ok := gtVal.(string); ok {
		if respS, ok := respVal.(string); ok && softMatch(key, gtS, respS) {
			return 1
		}
		return 0
	}
	if gtN, ok := toFloat(gtVal); ok {
		if respN, ok := toFloat(respVal); ok && math.Abs(gtN-respN) <= 0.1 {
			return 1
		}
		return 0
	}
	if gtVal == respVal {
		return 1
	}
	return 0
}

// matchLists compares as sets of canonical forms: |gt ∩ resp| / |gt|.
func matchLists(key string, gt, resp []any) float64 {
	if len(gt) == 0 {
		if len(resp) == 0 {
			return 1
		}
		return 0
	}
	gtSet := canonicalSet(key, gt)
	respSet := canonicalSet(key, resp)
	hit := 0
	for item := range gtSet {
		if _, ok := respSet[item]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(gtSet))
}

func canonicalSet(key string, items []any) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[canonicalize(key, item)] = struct{}{}
	}
	return set
}

// canonicalize flattens a list item to an order-stable string. A self_xing
// pair of two equal branches collapses to the single branch so [午, 午] and
// "午" compare equal.
func canonicalize(key string, item any) string {
	switch v := item.(type) {
	case []any:
		if key == "self_xing" && len(v) == 2 {
			a, b := canonicalize(key, v[0]), canonicalize(key, v[1])
			if a == b {
				return a
			}
		}
		parts := make([]string, len(v))
		for i, child := range v {
			parts[i] = canonicalize(key, child)
		}
		sort.Strings(parts)
		return "(" + strings.Join(parts, ",") + ")"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + canonicalize(key, v[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// levelSynonyms maps a canonical strength level to phrasings that earn
// full credit.
var levelSynonyms = map[string][]string{
	"身强": {"强", "身旺", "旺", "偏强"},
	"身弱": {"弱", "偏弱"},
	"中和": {},
}

// usefulGodKeywords are the ten-god category tokens considered when two
// useful-god phrasings differ in wording.
var usefulGodKeywords = []string{"印", "比", "官", "杀", "食", "伤", "财"}

func softMatch(key, gt, resp string) bool {
	gt = strings.TrimSpace(gt)
	resp = strings.TrimSpace(resp)
	if gt == resp {
		return true
	}

	if key == "level" {
		for _, syn := range levelSynonyms[gt] {
			if resp == syn {
				return true
			}
		}
		if trimmed := strings.TrimPrefix(gt, "身"); trimmed != gt && resp == trimmed {
			return true
		}
		return false
	}

	if key == "useful_god" || key == "unfavorable_god" {
		gtKws := keywordSet(gt)
		respKws := keywordSet(resp)
		if len(gtKws) == 0 {
			return false
		}
		overlap := 0
		subset := true
		for kw := range gtKws {
			if _, ok := respKws[kw]; ok {
				overlap++
			} else {
				subset = false
			}
		}
		if subset {
			return true
		}
		return float64(overlap) >= float64(len(gtKws))*0.5
	}

	return false
}

func keywordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, kw := range usefulGodKeywords {
		if strings.Contains(s, kw) {
			set[kw] = struct{}{}
		}
	}
	return set
}
