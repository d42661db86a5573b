package bazi

import (
	"fmt"
	"math"
	"time"
)

// baseDay is 1900-01-31, a known 甲子 day used as the day-pillar epoch.
var baseDay = time.Date(1900, time.January, 31, 0, 0, 0, 0, time.UTC)

const (
	minYear = 1600
	maxYear = 2200
)

// Location carries the geographic inputs needed for true-solar-time
// correction.
type Location struct {
	Longitude float64 // degrees east
	UTCOffset float64 // civil offset in hours, e.g. 8 for UTC+8
}

// Beijing is the default location used when a caller supplies none.
var Beijing = Location{Longitude: 116.4, UTCOffset: 8}

// Pillar is one stem/branch pair.
type Pillar struct {
	Stem   string
	Branch string
}

// GanZhi returns the two-character sexagenary label of the pillar.
func (p Pillar) GanZhi() string { return p.Stem + p.Branch }

// CycleIndex returns the pillar's position in the 60-term cycle, or -1 if
// the pillar is not a legal combination.
func (p Pillar) CycleIndex() int {
	s, b := stemIndex(p.Stem), branchIndex(p.Branch)
	if s < 0 || b < 0 {
		return -1
	}
	for i := s; i < 60; i += 10 {
		if i%12 == b {
			return i
		}
	}
	return -1
}

// pillarAt returns the pillar at a sexagenary cycle position.
func pillarAt(index int) Pillar {
	i := mod(index, 60)
	return Pillar{Stems[i%10], Branches[i%12]}
}

// Chart is the four pillars of a birth moment. Immutable after creation.
type Chart struct {
	Year  Pillar
	Month Pillar
	Day   Pillar
	Hour  Pillar
}

// StemList returns the four pillar stems in year/month/day/hour order.
func (c Chart) StemList() []string {
	return []string{c.Year.Stem, c.Month.Stem, c.Day.Stem, c.Hour.Stem}
}

// BranchList returns the four pillar branches in year/month/day/hour order.
func (c Chart) BranchList() []string {
	return []string{c.Year.Branch, c.Month.Branch, c.Day.Branch, c.Hour.Branch}
}

// String renders the chart as four space-separated ganzhi pairs.
func (c Chart) String() string {
	return fmt.Sprintf("%s %s %s %s", c.Year.GanZhi(), c.Month.GanZhi(), c.Day.GanZhi(), c.Hour.GanZhi())
}

// TrueSolarTime corrects a civil time for longitude offset from the zone's
// standard meridian plus the equation of time. All pillar derivations run
// on the corrected time.
func TrueSolarTime(t time.Time, loc Location) time.Time {
	meridian := loc.UTCOffset * 15
	lmtMinutes := (loc.Longitude - meridian) * 4

	b := 2 * math.Pi * float64(t.YearDay()-81) / 365
	eot := 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)

	return t.Add(time.Duration((lmtMinutes + eot) * float64(time.Minute)))
}

// Compute derives the four pillars for a civil birth moment at loc.
func Compute(t time.Time, loc Location) (Chart, error) {
	if t.Year() < minYear || t.Year() > maxYear {
		return Chart{}, fmt.Errorf("%w: year %d not in [%d, %d]", ErrDateOutOfRange, t.Year(), minYear, maxYear)
	}
	st := TrueSolarTime(t, loc)

	year := yearPillar(st)
	month := monthPillar(st, year.Stem)
	day := dayPillar(st)
	hour := hourPillar(st, day.Stem)

	return Chart{Year: year, Month: month, Day: day, Hour: hour}, nil
}

// beforeSpring reports whether t falls before the start-of-spring cutover
// (approximated as Feb 4), i.e. still belongs to the prior solar year.
func beforeSpring(t time.Time) bool {
	return t.Month() < time.February || (t.Month() == time.February && t.Day() < 4)
}

func yearPillar(t time.Time) Pillar {
	y := t.Year()
	if beforeSpring(t) {
		y--
	}
	return Pillar{Stems[mod(y-3, 10)], Branches[mod(y-3, 12)]}
}

// monthBranchByCivilMonth maps the civil month (1-12) to the solar month
// branch; the pre-cutover window is forced back to the 丑 month.
var monthBranchByCivilMonth = []string{
	"", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥", "子",
}

func monthPillar(t time.Time, yearStem string) Pillar {
	m := int(t.Month())
	if beforeSpring(t) {
		m = 1
	}
	branch := monthBranchByCivilMonth[m]
	bi := branchIndex(branch)

	start := stemIndex(wuHuDun[yearStem])
	stem := Stems[mod(start+(bi-2), 10)]
	return Pillar{stem, branch}
}

func dayPillar(t time.Time) Pillar {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	elapsed := int(day.Sub(baseDay).Hours() / 24)
	return Pillar{Stems[mod(elapsed, 10)], Branches[mod(elapsed, 12)]}
}

func hourPillar(t time.Time, dayStem string) Pillar {
	bi := ((t.Hour() + 1) / 2) % 12
	start := stemIndex(wuShuDun[dayStem])
	return Pillar{Stems[mod(start+bi, 10)], Branches[bi]}
}

// AnnualPillar returns the pillar governing a calendar year (立年 from the
// spring cutover of that year).
func AnnualPillar(year int) Pillar {
	return Pillar{Stems[mod(year-3, 10)], Branches[mod(year-3, 12)]}
}
