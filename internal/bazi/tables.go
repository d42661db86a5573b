// Package bazi implements Four Pillars (八字) chart derivation and the
// table-driven analyses built on top of it: elemental balance, ten gods,
// day-master strength, branch interactions, luck cycles and useful-element
// heuristics. All lookup tables are process-wide constants, safe for
// concurrent reads.
package bazi

// Element is one of the five phases (五行).
type Element string

const (
	Wood  Element = "木"
	Fire  Element = "火"
	Earth Element = "土"
	Metal Element = "金"
	Water Element = "水"
)

// Elements lists the five phases in the order used for reporting
// missing elements.
var Elements = []Element{Metal, Wood, Water, Fire, Earth}

// Polarity is the yin/yang attribute of a stem.
type Polarity int

const (
	Yang Polarity = iota
	Yin
)

// Stems are the ten heavenly stems (天干) in cycle order.
var Stems = []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// Branches are the twelve earthly branches (地支) in cycle order.
var Branches = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

type stemInfo struct {
	Element  Element
	Polarity Polarity
}

var stemTable = map[string]stemInfo{
	"甲": {Wood, Yang},
	"乙": {Wood, Yin},
	"丙": {Fire, Yang},
	"丁": {Fire, Yin},
	"戊": {Earth, Yang},
	"己": {Earth, Yin},
	"庚": {Metal, Yang},
	"辛": {Metal, Yin},
	"壬": {Water, Yang},
	"癸": {Water, Yin},
}

// HiddenStem is a stem latently present in a branch, carrying a qi
// weight fraction. The first entry of a branch's list is the main qi.
type HiddenStem struct {
	Stem   string
	Weight float64
}

type branchInfo struct {
	Element Element
	Hidden  []HiddenStem
}

var branchTable = map[string]branchInfo{
	"子": {Water, []HiddenStem{{"癸", 1.0}}},
	"丑": {Earth, []HiddenStem{{"己", 0.6}, {"癸", 0.3}, {"辛", 0.1}}},
	"寅": {Wood, []HiddenStem{{"甲", 0.6}, {"丙", 0.3}, {"戊", 0.1}}},
	"卯": {Wood, []HiddenStem{{"乙", 1.0}}},
	"辰": {Earth, []HiddenStem{{"戊", 0.6}, {"乙", 0.3}, {"癸", 0.1}}},
	"巳": {Fire, []HiddenStem{{"丙", 0.6}, {"庚", 0.3}, {"戊", 0.1}}},
	"午": {Fire, []HiddenStem{{"丁", 0.7}, {"己", 0.3}}},
	"未": {Earth, []HiddenStem{{"己", 0.6}, {"丁", 0.3}, {"乙", 0.1}}},
	"申": {Metal, []HiddenStem{{"庚", 0.6}, {"壬", 0.3}, {"戊", 0.1}}},
	"酉": {Metal, []HiddenStem{{"辛", 1.0}}},
	"戌": {Earth, []HiddenStem{{"戊", 0.6}, {"辛", 0.3}, {"丁", 0.1}}},
	"亥": {Water, []HiddenStem{{"壬", 0.7}, {"甲", 0.3}}},
}

// Sheng is the generation cycle: each element generates the mapped one.
var Sheng = map[Element]Element{
	Wood:  Fire,
	Fire:  Earth,
	Earth: Metal,
	Metal: Water,
	Water: Wood,
}

// Ke is the restraint cycle: each element restrains the mapped one.
var Ke = map[Element]Element{
	Wood:  Earth,
	Earth: Water,
	Water: Fire,
	Fire:  Metal,
	Metal: Wood,
}

// wuHuDun maps the year stem to the stem of the first solar month (寅月).
var wuHuDun = map[string]string{
	"甲": "丙", "己": "丙",
	"乙": "戊", "庚": "戊",
	"丙": "庚", "辛": "庚",
	"丁": "壬", "壬": "壬",
	"戊": "甲", "癸": "甲",
}

// wuShuDun maps the day stem to the stem of the first hour branch (子时).
var wuShuDun = map[string]string{
	"甲": "甲", "己": "甲",
	"乙": "丙", "庚": "丙",
	"丙": "戊", "辛": "戊",
	"丁": "庚", "壬": "庚",
	"戊": "壬", "癸": "壬",
}

// Branch relation tables. Pairs and triples are stored in canonical order;
// detection is set-membership, so chart order does not matter.
var (
	LiuHe = [][]string{
		{"子", "丑"}, {"寅", "亥"}, {"卯", "戌"},
		{"辰", "酉"}, {"巳", "申"}, {"午", "未"},
	}
	LiuChong = [][]string{
		{"子", "午"}, {"丑", "未"}, {"寅", "申"},
		{"卯", "酉"}, {"辰", "戌"}, {"巳", "亥"},
	}
	SanHe = [][]string{
		{"申", "子", "辰"}, {"亥", "卯", "未"},
		{"寅", "午", "戌"}, {"巳", "酉", "丑"},
	}
	SanHui = [][]string{
		{"寅", "卯", "辰"}, {"巳", "午", "未"},
		{"申", "酉", "戌"}, {"亥", "子", "丑"},
	}
	Xing = [][]string{
		{"寅", "巳", "申"}, {"丑", "戌", "未"}, {"子", "卯"},
	}
	SelfXing = []string{"辰", "午", "酉", "亥"}
	LiuHai   = [][]string{
		{"子", "未"}, {"丑", "午"}, {"寅", "巳"},
		{"卯", "辰"}, {"申", "亥"}, {"酉", "戌"},
	}
)

// TenGodNames lists all ten god labels.
var TenGodNames = []string{
	"比肩", "劫财", "食神", "伤官", "偏财",
	"正财", "七杀", "正官", "偏印", "正印",
}

// StemElement returns the element of a heavenly stem.
func StemElement(stem string) (Element, bool) {
	info, ok := stemTable[stem]
	return info.Element, ok
}

// StemPolarity returns the yin/yang polarity of a heavenly stem.
func StemPolarity(stem string) (Polarity, bool) {
	info, ok := stemTable[stem]
	return info.Polarity, ok
}

// BranchElement returns the primary element of an earthly branch.
func BranchElement(branch string) (Element, bool) {
	info, ok := branchTable[branch]
	return info.Element, ok
}

// HiddenStems returns the ordered hidden stems of a branch, main qi first.
func HiddenStems(branch string) []HiddenStem {
	return branchTable[branch].Hidden
}

// IsStem reports whether s is a legal heavenly stem.
func IsStem(s string) bool {
	_, ok := stemTable[s]
	return ok
}

// IsBranch reports whether s is a legal earthly branch.
func IsBranch(s string) bool {
	_, ok := branchTable[s]
	return ok
}

func stemIndex(stem string) int {
	for i, s := range Stems {
		if s == stem {
			return i
		}
	}
	return -1
}

func branchIndex(branch string) int {
	for i, b := range Branches {
		if b == branch {
			return i
		}
	}
	return -1
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
