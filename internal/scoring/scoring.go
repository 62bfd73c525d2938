// Package scoring converts a guess and a photo's ground truth into points.
//
// Two strategies coexist: the progressive per-photo scorer used by live guess
// submission, and the classic whole-round scorer that also weighs location,
// people, elapsed time and hints. Their tier tables are unrelated, so they
// stay separate implementations behind one interface.
package scoring

import (
	"strings"
	"time"
)

// Input carries a guess together with the photo's ground truth. Strategies
// read only the fields they care about; nil pointers mean "not answered".
type Input struct {
	TakenAt time.Time

	GuessedYear  *int
	GuessedMonth *int
	GuessedDay   *int

	// Special bonus question, progressive strategy only.
	SpecialAnswer  *string
	GuessedSpecial *string

	// Classic strategy fields.
	Location        string
	GuessedLocation string
	People          []string
	GuessedPeople   []string
	ElapsedSeconds  int
	HintsUsed       int
	FunMode         bool
}

// Result is the scored breakdown of one guess
type Result struct {
	YearScore    int
	MonthScore   int
	DayScore     int
	SpecialScore int

	YearHit    bool
	MonthHit   bool
	DayHit     bool
	SpecialHit bool
	IsCombo    bool

	Total int
}

// Strategy scores one guess. Implementations are pure: same input, same
// result, no clock reads.
type Strategy interface {
	Name() string
	Score(in Input) Result
}

// ForMode returns the live-guess strategy for a game mode. Both current modes
// score per-photo guesses progressively; the classic strategy is selected
// explicitly by its own entry point.
func ForMode(mode string) Strategy {
	_ = mode
	return Progressive{}
}

// Diff values substituted for unanswered date fields. They land in the
// bottom tier of every table, so skipping a field still scores its floor.
const (
	missingYearDiff  = 999
	missingMonthDiff = 12
	missingDayDiff   = 31
)

// comboTotal is the fixed date-portion payout when year, month and day are
// all exact. It deliberately exceeds the sum of the per-field maxima.
const comboTotal = 1000

// specialBonus is the flat reward for matching the special question answer.
const specialBonus = 1000

// Progressive is the live per-photo scorer: descending step tables per date
// field, a combo override, and the special-question bonus.
type Progressive struct{}

// Name returns the strategy identifier
func (Progressive) Name() string { return "progressive" }

// Score applies the tier tables to the date guess and the special answer
func (Progressive) Score(in Input) Result {
	var res Result

	yearDiff := missingYearDiff
	if in.GuessedYear != nil {
		yearDiff = abs(*in.GuessedYear - in.TakenAt.Year())
	}
	monthDiff := missingMonthDiff
	if in.GuessedMonth != nil {
		monthDiff = abs(*in.GuessedMonth - int(in.TakenAt.Month()))
	}
	dayDiff := missingDayDiff
	if in.GuessedDay != nil {
		dayDiff = abs(*in.GuessedDay - in.TakenAt.Day())
	}

	res.YearScore = yearScore(yearDiff)
	res.MonthScore = monthScore(monthDiff)
	res.DayScore = dayScore(dayDiff)
	res.YearHit = yearDiff == 0
	res.MonthHit = monthDiff == 0
	res.DayHit = dayDiff == 0

	dateTotal := res.YearScore + res.MonthScore + res.DayScore
	if res.YearHit && res.MonthHit && res.DayHit {
		res.IsCombo = true
		dateTotal = comboTotal
	}

	// The special answer must match exactly after trimming; no case folding.
	if in.SpecialAnswer != nil && in.GuessedSpecial != nil &&
		strings.TrimSpace(*in.GuessedSpecial) == strings.TrimSpace(*in.SpecialAnswer) {
		res.SpecialHit = true
		res.SpecialScore = specialBonus
	}

	res.Total = dateTotal + res.SpecialScore
	return res
}

func yearScore(diff int) int {
	switch {
	case diff == 0:
		return 100
	case diff == 1:
		return 80
	case diff == 2:
		return 60
	case diff == 3:
		return 40
	default:
		return 20
	}
}

func monthScore(diff int) int {
	switch {
	case diff == 0:
		return 200
	case diff == 1:
		return 150
	case diff == 2:
		return 100
	case diff == 3:
		return 60
	case diff == 4:
		return 40
	default:
		return 20
	}
}

func dayScore(diff int) int {
	switch {
	case diff == 0:
		return 300
	case diff == 1:
		return 250
	case diff == 2:
		return 200
	case diff == 3:
		return 150
	case diff == 4:
		return 120
	case diff == 5:
		return 100
	case diff <= 7:
		return 80
	case diff <= 10:
		return 60
	case diff <= 15:
		return 40
	default:
		return 20
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
