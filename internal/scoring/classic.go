package scoring

import "strings"

// Classic tier values. Unlike the progressive tables these are additive
// bonuses with a zero floor per field, plus a time bonus and a fun-mode
// hint penalty applied at the end.
const (
	classicLocationExact   = 400
	classicLocationPartial = 150

	classicYearExact = 300
	classicYearClose = 150
	classicYearRange = 1

	classicMonthExact = 200
	classicMonthClose = 100
	classicMonthRange = 2

	classicDayExact = 150
	classicDayClose = 75
	classicDayRange = 3

	classicPeopleExact = 300

	classicTimeBonusMax   = 200
	classicTimeBonusLimit = 300 // seconds until the time bonus reaches zero

	classicHintPenalty = 50
)

// Classic is the whole-round scorer kept for the hint-aware entry point and
// leaderboard estimates. Not interchangeable with Progressive.
type Classic struct{}

// Name returns the strategy identifier
func (Classic) Name() string { return "classic" }

// Score adds up per-field bonuses and applies the time bonus and, in fun
// mode, the hint penalty. The result never drops below zero.
func (Classic) Score(in Input) Result {
	var res Result

	total := locationPoints(in.Location, in.GuessedLocation)

	if in.GuessedYear != nil {
		diff := abs(*in.GuessedYear - in.TakenAt.Year())
		switch {
		case diff == 0:
			res.YearHit = true
			res.YearScore = classicYearExact
		case diff <= classicYearRange:
			res.YearScore = classicYearClose
		}
	}
	if in.GuessedMonth != nil {
		diff := abs(*in.GuessedMonth - int(in.TakenAt.Month()))
		switch {
		case diff == 0:
			res.MonthHit = true
			res.MonthScore = classicMonthExact
		case diff <= classicMonthRange:
			res.MonthScore = classicMonthClose
		}
	}
	if in.GuessedDay != nil {
		diff := abs(*in.GuessedDay - in.TakenAt.Day())
		switch {
		case diff == 0:
			res.DayHit = true
			res.DayScore = classicDayExact
		case diff <= classicDayRange:
			res.DayScore = classicDayClose
		}
	}
	total += res.YearScore + res.MonthScore + res.DayScore

	total += peoplePoints(in.People, in.GuessedPeople)

	if in.ElapsedSeconds < classicTimeBonusLimit {
		total += classicTimeBonusMax * (classicTimeBonusLimit - in.ElapsedSeconds) / classicTimeBonusLimit
	}

	if in.FunMode {
		total -= classicHintPenalty * in.HintsUsed
	}

	if total < 0 {
		total = 0
	}
	res.Total = total
	return res
}

func locationPoints(truth, guess string) int {
	truth = strings.ToLower(strings.TrimSpace(truth))
	guess = strings.ToLower(strings.TrimSpace(guess))
	if truth == "" || guess == "" {
		return 0
	}
	if truth == guess {
		return classicLocationExact
	}
	if strings.Contains(truth, guess) || strings.Contains(guess, truth) {
		return classicLocationPartial
	}
	return 0
}

// peoplePoints pays the full bonus for an exact set match and a proportional
// share for a partial one. Extra wrong names forfeit the exact bonus but do
// not erase correct matches.
func peoplePoints(truth, guess []string) int {
	if len(truth) == 0 {
		return 0
	}
	truthSet := make(map[string]bool, len(truth))
	for _, name := range truth {
		truthSet[strings.ToLower(strings.TrimSpace(name))] = true
	}
	matched := 0
	seen := make(map[string]bool, len(guess))
	for _, name := range guess {
		key := strings.ToLower(strings.TrimSpace(name))
		if truthSet[key] && !seen[key] {
			matched++
			seen[key] = true
		}
	}
	if matched == len(truthSet) && len(guess) == len(truthSet) {
		return classicPeopleExact
	}
	return classicPeopleExact * matched / len(truthSet)
}
