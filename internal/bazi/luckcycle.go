package bazi

import (
	"fmt"
	"math"
	"time"
)

// Gender selects luck-cycle direction together with the year-stem polarity.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// LuckPillar is one ten-year luck cycle (大运) entry.
type LuckPillar struct {
	StartAge  int    `json:"start_age"`
	StartYear int    `json:"start_year"`
	GanZhi    string `json:"ganzhi"`
}

// TermSource reports the instant a solar month term (节) falls in a given
// month. The default uses fixed-date approximations; an ephemeris-backed
// implementation can be substituted for full precision.
type TermSource interface {
	MonthTerm(year int, month time.Month) time.Time
}

// approxTermDay holds the approximate day-of-month of each month term.
var approxTermDay = map[time.Month]int{
	time.January:   6,
	time.February:  4,
	time.March:     6,
	time.April:     5,
	time.May:       6,
	time.June:      6,
	time.July:      7,
	time.August:    8,
	time.September: 8,
	time.October:   8,
	time.November:  7,
	time.December:  7,
}

type approxTerms struct{}

func (approxTerms) MonthTerm(year int, month time.Month) time.Time {
	return time.Date(year, month, approxTermDay[month], 0, 0, 0, 0, time.UTC)
}

// DefaultTerms is the fixed-date term source used throughout the package.
var DefaultTerms TermSource = approxTerms{}

const luckPillarCount = 8

// LuckCycle derives the ordered ten-year luck pillars for a birth moment.
// Direction is forward when gender parity matches the year-stem polarity
// (yang-year male / yin-year female), backward otherwise. The onset age is
// the distance to the adjacent month-term boundary at roughly three days
// per year. The month pillar itself (the pre-onset entry) is not emitted.
func LuckCycle(t time.Time, gender Gender, loc Location, terms TermSource) ([]LuckPillar, error) {
	if gender != Male && gender != Female {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGender, gender)
	}
	chart, err := Compute(t, loc)
	if err != nil {
		return nil, err
	}
	if terms == nil {
		terms = DefaultTerms
	}

	pol, _ := StemPolarity(chart.Year.Stem)
	forward := (gender == Male) == (pol == Yang)

	st := TrueSolarTime(t, loc)
	boundary := adjacentTerm(st, forward, terms)
	days := math.Abs(boundary.Sub(st).Hours() / 24)
	onset := int(math.Round(days / 3))
	if onset < 1 {
		onset = 1
	}

	step := 1
	if !forward {
		step = -1
	}
	base := chart.Month.CycleIndex()

	pillars := make([]LuckPillar, 0, luckPillarCount)
	for i := 1; i <= luckPillarCount; i++ {
		age := onset + (i-1)*10
		pillars = append(pillars, LuckPillar{
			StartAge:  age,
			StartYear: t.Year() + age,
			GanZhi:    pillarAt(base + i*step).GanZhi(),
		})
	}
	return pillars, nil
}

// adjacentTerm returns the next month-term boundary after t when moving
// forward, or the previous one when moving backward.
func adjacentTerm(t time.Time, forward bool, terms TermSource) time.Time {
	year, month := t.Year(), t.Month()
	term := terms.MonthTerm(year, month)
	if forward {
		if !term.After(t) {
			month++
			if month > time.December {
				month = time.January
				year++
			}
			term = terms.MonthTerm(year, month)
		}
		return term
	}
	if term.After(t) {
		month--
		if month < time.January {
			month = time.December
			year--
		}
		term = terms.MonthTerm(year, month)
	}
	return term
}
