package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bazibench/internal/bazi"
)

// GeneratorConfig carries the knobs for sample generation. All fields have
// working defaults from DefaultGeneratorConfig.
type GeneratorConfig struct {
	Seed      int64
	StartYear int
	EndYear   int
	Location  bazi.Location
	Strength  bazi.StrengthPolicy
}

// DefaultGeneratorConfig returns the standard generation window and policy.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42,
		StartYear: 1950,
		EndYear:   2030,
		Location:  bazi.Beijing,
		Strength:  bazi.DefaultStrengthPolicy(),
	}
}

// Generator produces benchmark samples. A given (seed, call sequence)
// always yields the same samples.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator builds a Generator, filling zero config fields with defaults.
func NewGenerator(cfg GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()
	if cfg.StartYear == 0 {
		cfg.StartYear = def.StartYear
	}
	if cfg.EndYear == 0 {
		cfg.EndYear = def.EndYear
	}
	if cfg.Location == (bazi.Location{}) {
		cfg.Location = def.Location
	}
	if cfg.Strength == (bazi.StrengthPolicy{}) {
		cfg.Strength = def.Strength
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// RandomDate draws a uniform birth moment inside the configured window.
func (g *Generator) RandomDate() time.Time {
	start := time.Date(g.cfg.StartYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(g.cfg.EndYear, 12, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	return start.
		AddDate(0, 0, g.rng.Intn(days)).
		Add(time.Duration(g.rng.Intn(24*60*60)) * time.Second)
}

// Analyze runs the full derivation pipeline for one birth moment. The luck
// cycle is only derived when a gender is supplied.
func (g *Generator) Analyze(dt time.Time, gender bazi.Gender) (Analysis, error) {
	chart, err := bazi.Compute(dt, g.cfg.Location)
	if err != nil {
		return Analysis{}, fmt.Errorf("compute chart: %w", err)
	}
	tenGods, err := bazi.AnalyzeTenGods(chart)
	if err != nil {
		return Analysis{}, fmt.Errorf("ten gods: %w", err)
	}
	pattern, err := bazi.AnalyzePattern(chart)
	if err != nil {
		return Analysis{}, fmt.Errorf("pattern: %w", err)
	}
	strength := bazi.AnalyzeStrength(chart, g.cfg.Strength)
	useful := bazi.UsefulElement(strength.Level, chart)

	analysis := Analysis{
		Chart:        NewChart(chart),
		Wuxing:       bazi.AnalyzeElements(chart),
		TenGods:      tenGods,
		Strength:     strength,
		Interactions: bazi.AnalyzeInteractions(chart.BranchList()),
		Pattern:      &pattern,
		UsefulGod:    &useful,
	}

	if gender != "" {
		daYun, err := bazi.LuckCycle(dt, gender, g.cfg.Location, nil)
		if err != nil {
			return Analysis{}, fmt.Errorf("luck cycle: %w", err)
		}
		analysis.DaYun = daYun
	}
	return analysis, nil
}

// GenerateSample produces one sample for the given task type.
func (g *Generator) GenerateSample(taskType string) (Sample, error) {
	dt := g.RandomDate()

	gender := bazi.Gender("")
	if taskType == TaskDaYun || taskType == TaskComprehensive {
		gender = bazi.Male
		if g.rng.Intn(2) == 1 {
			gender = bazi.Female
		}
	}

	analysis, err := g.Analyze(dt, gender)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		ID: uuid.NewString(),
		Input: Input{
			Year:      dt.Year(),
			Month:     int(dt.Month()),
			Day:       dt.Day(),
			Hour:      dt.Hour(),
			Minute:    dt.Minute(),
			Gender:    string(gender),
			Longitude: g.cfg.Location.Longitude,
			UTCOffset: g.cfg.Location.UTCOffset,
		},
		GroundTruth: analysis,
		Tags:        []string{taskType},
		Meta:        map[string]any{"created_at": time.Now().UTC().Format(time.RFC3339)},
	}

	chart := analysis.Chart
	chartStr := fmt.Sprintf("%s %s %s %s", chart.Year, chart.Month, chart.Day, chart.Hour)
	birthStr := fmt.Sprintf("%d年%d月%d日 %d时%d分", dt.Year(), int(dt.Month()), dt.Day(), dt.Hour(), dt.Minute())

	switch taskType {
	case TaskChart:
		sample.Instruction = fmt.Sprintf("请根据公历 %s（东经%.1f度，UTC+%.0f，按真太阳时）排出八字四柱。", birthStr, g.cfg.Location.Longitude, g.cfg.Location.UTCOffset)
		sample.ExpectedOutput = fmt.Sprintf("年柱: %s\n月柱: %s\n日柱: %s\n时柱: %s", chart.Year, chart.Month, chart.Day, chart.Hour)
		sample.Difficulty = 2
		sample.Evaluation = EvalExactMatch

	case TaskWuxing:
		sample.Instruction = fmt.Sprintf("请分析该八字的五行个数与缺失：%s", chartStr)
		sample.ExpectedOutput = fmt.Sprintf("五行统计: %s\n缺失五行: %s",
			formatCounts(analysis.Wuxing.Counts), formatMissing(analysis.Wuxing.Missing))
		sample.Difficulty = 2
		sample.Evaluation = EvalExactMatch

	case TaskTenGods:
		sample.Instruction = fmt.Sprintf("请列出该八字的十神（年/月/日/时）：%s", chartStr)
		sample.ExpectedOutput = strings.Join(analysis.TenGods.Gods, " ")
		sample.Difficulty = 3
		sample.Evaluation = EvalExactMatch

	case TaskStrength:
		sample.Instruction = fmt.Sprintf("请判断该八字日主的强弱：%s", chartStr)
		sample.ExpectedOutput = fmt.Sprintf("得分: %s, 判定: %s", formatScore(analysis.Strength.Score), analysis.Strength.Level)
		sample.Difficulty = 4
		sample.Evaluation = EvalExactMatch

	case TaskInteractions:
		sample.Instruction = fmt.Sprintf("请找出该八字地支间的刑冲合害关系，以JSON输出（键：liuhe/liuchong/sanhe/sanhui/xing/self_xing/liuhai）：%s", chartStr)
		out, err := json.Marshal(analysis.Interactions)
		if err != nil {
			return Sample{}, fmt.Errorf("marshal interactions: %w", err)
		}
		sample.ExpectedOutput = string(out)
		sample.Difficulty = 3
		sample.Evaluation = EvalPartialMatch

	case TaskDaYun:
		sample.Instruction = fmt.Sprintf("%s出生于公历 %s，请推算大运（起运年龄与干支），以JSON数组输出（键：start_age/start_year/ganzhi）。", genderWord(gender), birthStr)
		out, err := json.Marshal(analysis.DaYun)
		if err != nil {
			return Sample{}, fmt.Errorf("marshal da_yun: %w", err)
		}
		sample.ExpectedOutput = string(out)
		sample.Difficulty = 4
		sample.Evaluation = EvalPartialMatch

	case TaskUsefulGod:
		sample.Instruction = fmt.Sprintf("请判断该八字的喜用神与忌神，以JSON输出（键：useful_god/unfavorable_god）：%s", chartStr)
		out, err := json.Marshal(map[string]string{
			"useful_god":      analysis.UsefulGod.UsefulGod,
			"unfavorable_god": analysis.UsefulGod.UnfavorableGod,
		})
		if err != nil {
			return Sample{}, fmt.Errorf("marshal useful_god: %w", err)
		}
		sample.ExpectedOutput = string(out)
		sample.Difficulty = 4
		sample.Evaluation = EvalPartialMatch

	case TaskComprehensive:
		sample.Instruction = fmt.Sprintf("%s出生于公历 %s，请给出完整的八字分析：四柱、五行、十神、日主强弱、刑冲合害、大运与喜用神。", genderWord(gender), birthStr)
		sample.ExpectedOutput = g.comprehensiveAnswer(analysis)
		sample.Difficulty = 5
		sample.Evaluation = EvalLLMJudge

	default:
		return Sample{}, fmt.Errorf("unknown task type %q", taskType)
	}

	return sample, nil
}

// GenerateBatch draws n samples with task types chosen uniformly from
// taskTypes (all types when nil).
func (g *Generator) GenerateBatch(n int, taskTypes []string) ([]Sample, error) {
	if len(taskTypes) == 0 {
		taskTypes = AllTaskTypes
	}
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		taskType := taskTypes[g.rng.Intn(len(taskTypes))]
		s, err := g.GenerateSample(taskType)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func (g *Generator) comprehensiveAnswer(a Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "四柱：%s %s %s %s\n", a.Chart.Year, a.Chart.Month, a.Chart.Day, a.Chart.Hour)
	fmt.Fprintf(&sb, "五行统计：%s；缺失：%s\n", formatCounts(a.Wuxing.Counts), formatMissing(a.Wuxing.Missing))
	fmt.Fprintf(&sb, "十神（年/月/日/时）：%s\n", strings.Join(a.TenGods.Gods, " "))
	fmt.Fprintf(&sb, "日主强弱：%s（得分 %s）\n", a.Strength.Level, formatScore(a.Strength.Score))
	if a.Pattern != nil {
		fmt.Fprintf(&sb, "格局：%s\n", a.Pattern.MainPattern)
	}
	if len(a.DaYun) > 0 {
		ganzhi := make([]string, 0, len(a.DaYun))
		for _, p := range a.DaYun {
			ganzhi = append(ganzhi, fmt.Sprintf("%d岁起%s", p.StartAge, p.GanZhi))
		}
		fmt.Fprintf(&sb, "大运：%s\n", strings.Join(ganzhi, "，"))
	}
	if a.UsefulGod != nil {
		fmt.Fprintf(&sb, "喜用神：%s；忌神：%s", a.UsefulGod.UsefulGod, a.UsefulGod.UnfavorableGod)
	}
	return sb.String()
}

func formatCounts(counts map[bazi.Element]int) string {
	parts := make([]string, 0, len(counts))
	for _, el := range bazi.Elements {
		if n, ok := counts[el]; ok && n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", el, n))
		}
	}
	return strings.Join(parts, ", ")
}

func formatMissing(missing []bazi.Element) string {
	if len(missing) == 0 {
		return "无"
	}
	parts := make([]string, 0, len(missing))
	for _, el := range missing {
		parts = append(parts, string(el))
	}
	return strings.Join(parts, ", ")
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func genderWord(g bazi.Gender) string {
	if g == bazi.Female {
		return "女性"
	}
	return "男性"
}
