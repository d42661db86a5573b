package bazi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLuckCycleBackward(t *testing.T) {
	// Yin year stem (乙) with a male subject runs the cycle backward from
	// the month pillar 甲申.
	birth := time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC)
	pillars, err := LuckCycle(birth, Male, Beijing, nil)
	require.NoError(t, err)
	require.Len(t, pillars, 8)

	require.Equal(t, "癸未", pillars[0].GanZhi)
	require.Equal(t, "壬午", pillars[1].GanZhi)
	require.Equal(t, 2, pillars[0].StartAge)
	require.Equal(t, 1996, pillars[0].StartYear)

	for i := 1; i < len(pillars); i++ {
		require.Equal(t, pillars[i-1].StartAge+10, pillars[i].StartAge)
		require.Equal(t, pillars[i].StartYear-pillars[i].StartAge, birth.Year())
	}
}

func TestLuckCycleForward(t *testing.T) {
	// The same birth moment for a female subject reverses direction.
	birth := time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC)
	pillars, err := LuckCycle(birth, Female, Beijing, nil)
	require.NoError(t, err)
	require.Len(t, pillars, 8)
	require.Equal(t, "乙酉", pillars[0].GanZhi)
	require.Equal(t, "丙戌", pillars[1].GanZhi)
}

func TestLuckCycleDirectionsDiverge(t *testing.T) {
	birth := time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC)
	male, err := LuckCycle(birth, Male, Beijing, nil)
	require.NoError(t, err)
	female, err := LuckCycle(birth, Female, Beijing, nil)
	require.NoError(t, err)
	require.NotEqual(t, male[0].GanZhi, female[0].GanZhi)
}

func TestLuckCycleOnsetFloor(t *testing.T) {
	// Born hours after the term boundary counting backward, onset still
	// starts at age 1.
	birth := time.Date(1994, 8, 8, 12, 0, 0, 0, time.UTC)
	pillars, err := LuckCycle(birth, Male, Beijing, nil)
	require.NoError(t, err)
	require.Equal(t, 1, pillars[0].StartAge)
}

func TestLuckCycleInvalidGender(t *testing.T) {
	birth := time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC)
	_, err := LuckCycle(birth, Gender("other"), Beijing, nil)
	require.ErrorIs(t, err, ErrInvalidGender)

	_, err = LuckCycle(birth, Gender(""), Beijing, nil)
	require.ErrorIs(t, err, ErrInvalidGender)
}

type fixedTerms struct{ day int }

func (f fixedTerms) MonthTerm(year int, month time.Month) time.Time {
	return time.Date(year, month, f.day, 0, 0, 0, 0, time.UTC)
}

func TestLuckCycleCustomTermSource(t *testing.T) {
	// Pushing the term ten days later stretches the onset age.
	birth := time.Date(1994, 8, 15, 10, 30, 0, 0, time.UTC)
	deflt, err := LuckCycle(birth, Female, Beijing, nil)
	require.NoError(t, err)
	custom, err := LuckCycle(birth, Female, Beijing, fixedTerms{day: 28})
	require.NoError(t, err)
	require.NotEqual(t, deflt[0].StartAge, custom[0].StartAge)
}
