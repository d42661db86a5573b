package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func exactScore(t *testing.T, gt any, resp string) float64 {
	t.Helper()
	return ExactMatch{}.Score(context.Background(), gt, resp)
}

func TestExactMatchJSONObject(t *testing.T) {
	gt := `{"useful_god": "印比", "unfavorable_god": "财官食伤"}`

	require.Equal(t, 1.0, exactScore(t, gt, gt))
	require.Equal(t, 1.0, exactScore(t, gt, "```json\n{\"unfavorable_god\": \"财官食伤\", \"useful_god\": \"印比\"}\n```"))
	require.Equal(t, 0.0, exactScore(t, gt, `{"useful_god": "财官"}`))
	// Extra keys break strict equality.
	require.Equal(t, 0.0, exactScore(t, gt, `{"useful_god": "印比", "unfavorable_god": "财官食伤", "extra": 1}`))
	require.Equal(t, 0.0, exactScore(t, gt, "not json at all"))
}

func TestExactMatchJSONList(t *testing.T) {
	gt := `[{"start_age": 2, "ganzhi": "癸未"}]`
	require.Equal(t, 1.0, exactScore(t, gt, gt))
	// Order matters for lists.
	require.Equal(t, 0.0, exactScore(t, `[1, 2]`, `[2, 1]`))
	require.Equal(t, 1.0, exactScore(t, `[1, 2]`, `[1, 2]`))
}

func TestExactMatchTextIdentity(t *testing.T) {
	require.Equal(t, 1.0, exactScore(t, "年柱: 乙亥", "年柱: 乙亥"))
}

func TestExactMatchWuxingText(t *testing.T) {
	gt := "五行统计: 金: 1, 木: 2, 水: 2, 火: 3\n缺失五行: 土"

	require.Equal(t, 1.0, exactScore(t, gt, "五行统计: 金: 1, 木: 2, 水: 2, 火: 3\n缺失五行: 土"))
	// Markdown bold and the tight 金1 form still parse.
	require.Equal(t, 1.0, exactScore(t, gt, "**金1 木2 水2 火3**，缺失五行: 土"))
	// Counts right, missing wrong: partial credit.
	require.Equal(t, 0.7, exactScore(t, gt, "金: 1, 木: 2, 水: 2, 火: 3\n缺失五行: 无"))
	// Counts close, missing right: distance-based credit.
	got := exactScore(t, gt, "金: 1, 木: 2, 水: 2, 火: 2\n缺失五行: 土")
	require.InDelta(t, 1-1.0/8, got, 1e-9)
}

func TestExactMatchTenGodsText(t *testing.T) {
	gt := "食神 伤官 比肩 偏财"
	require.Equal(t, 1.0, exactScore(t, gt, "十神依次为：食神 伤官 比肩 偏财"))
	require.Equal(t, 0.75, exactScore(t, gt, "食神 伤官 比肩 正官"))
}

func TestExactMatchStrengthText(t *testing.T) {
	gt := "得分: 2, 判定: 身偏强"

	require.Equal(t, 1.0, exactScore(t, gt, "得分: 2.3, 判定: 身偏强"))
	require.Equal(t, 0.7, exactScore(t, gt, "得分: 2.8, 判定: 身偏强"))
	// Level agrees but no score given.
	require.Equal(t, 0.8, exactScore(t, gt, "日主偏强"))
	// Level disagrees.
	require.Equal(t, 0.0, exactScore(t, gt, "判定: 身弱"))
	// 身旺 counts as 身强.
	require.Equal(t, 0.8, exactScore(t, "判定: 身强", "日主身旺"))
}

func TestExactMatchChartText(t *testing.T) {
	gt := "年柱: 乙亥\n月柱: 甲申\n日柱: 癸巳\n时柱: 丁巳"

	require.Equal(t, 1.0, exactScore(t, gt, "四柱为 乙亥、甲申、癸巳、丁巳。"))
	require.Equal(t, 0.75, exactScore(t, gt, "乙亥 甲申 癸巳 丙辰"))
}

func TestExactMatchContainmentFallback(t *testing.T) {
	require.Equal(t, 1.0, exactScore(t, "庚辰", "答案是庚辰年"))
	require.Equal(t, 0.0, exactScore(t, "庚辰", "答案是辛巳年"))
}
