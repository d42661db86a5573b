package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func partialScore(t *testing.T, gt any, resp string) float64 {
	t.Helper()
	return PartialMatch{}.Score(context.Background(), gt, resp)
}

func TestPartialMatchFullCredit(t *testing.T) {
	gt := `{"liuhe": [["巳", "申"]], "liuchong": [["巳", "亥"]]}`
	require.Equal(t, 1.0, partialScore(t, gt, gt))
	// Pair order inside a relation does not matter.
	require.Equal(t, 1.0, partialScore(t, gt, `{"liuhe": [["申", "巳"]], "liuchong": [["亥", "巳"]]}`))
}

func TestPartialMatchHalfCredit(t *testing.T) {
	gt := `{"liuhe": [["巳", "申"]], "liuchong": [["巳", "亥"]]}`
	got := partialScore(t, gt, `{"liuhe": [["巳", "申"]], "liuchong": []}`)
	require.InDelta(t, 0.5, got, 1e-9)

	// A missing key scores the same as a wrong one.
	got = partialScore(t, gt, `{"liuhe": [["巳", "申"]]}`)
	require.InDelta(t, 0.5, got, 1e-9)
}

func TestPartialMatchListFraction(t *testing.T) {
	gt := `{"gods": ["食神", "伤官", "比肩", "偏财"]}`
	got := partialScore(t, gt, `{"gods": ["食神", "伤官"]}`)
	require.InDelta(t, 0.5, got, 1e-9)
}

func TestPartialMatchEmptyLists(t *testing.T) {
	gt := `{"xing": []}`
	require.Equal(t, 1.0, partialScore(t, gt, `{"xing": []}`))
	require.Equal(t, 0.0, partialScore(t, gt, `{"xing": [["寅", "巳", "申"]]}`))
}

func TestPartialMatchSelfXingForms(t *testing.T) {
	// A pair of identical branches is the same statement as the single
	// branch.
	gt := `{"self_xing": ["午"]}`
	require.Equal(t, 1.0, partialScore(t, gt, `{"self_xing": [["午", "午"]]}`))
	require.Equal(t, 1.0, partialScore(t, gt, `{"self_xing": ["午"]}`))
	require.Equal(t, 0.0, partialScore(t, gt, `{"self_xing": ["酉"]}`))
}

func TestPartialMatchLevelSynonyms(t *testing.T) {
	gt := `{"level": "身强"}`
	for _, resp := range []string{"身强", "强", "身旺", "旺", "偏强"} {
		require.Equal(t, 1.0, partialScore(t, gt, `{"level": "`+resp+`"}`), resp)
	}
	require.Equal(t, 0.0, partialScore(t, gt, `{"level": "身弱"}`))
}

func TestPartialMatchUsefulGodKeywords(t *testing.T) {
	gt := `{"useful_god": "印比"}`
	// Same keyword set in different phrasing.
	require.Equal(t, 1.0, partialScore(t, gt, `{"useful_god": "喜印星与比劫"}`))
	// Disjoint categories.
	require.Equal(t, 0.0, partialScore(t, gt, `{"useful_god": "食伤"}`))
}

func TestPartialMatchNumericTolerance(t *testing.T) {
	gt := `{"score": 2.0}`
	require.Equal(t, 1.0, partialScore(t, gt, `{"score": 2.05}`))
	require.Equal(t, 0.0, partialScore(t, gt, `{"score": 3.0}`))
}

func TestPartialMatchNestedMap(t *testing.T) {
	gt := `{"strength": {"level": "身强", "score": 2.0}, "chart": "乙亥"}`
	got := partialScore(t, gt, `{"strength": {"level": "身强", "score": 9.0}, "chart": "乙亥"}`)
	// Nested map contributes its own fraction: (0.5 + 1) / 2.
	require.InDelta(t, 0.75, got, 1e-9)
}

func TestPartialMatchTopLevelList(t *testing.T) {
	gt := `[{"start_age": 2, "ganzhi": "癸未"}, {"start_age": 12, "ganzhi": "壬午"}]`
	require.Equal(t, 1.0, partialScore(t, gt, gt))
	got := partialScore(t, gt, `[{"start_age": 2, "ganzhi": "癸未"}, {"start_age": 12, "ganzhi": "辛巳"}]`)
	require.InDelta(t, 0.5, got, 1e-9)
}

func TestPartialMatchNonObjectResponse(t *testing.T) {
	gt := `{"liuhe": []}`
	require.Equal(t, 0.0, partialScore(t, gt, "完全是散文"))
}
