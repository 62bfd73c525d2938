package achievements

// History is an immutable aggregate snapshot of everything a player has done.
// It is assembled from the data store in one pass and handed to every rule,
// so predicates stay pure and never touch the database themselves.
//
// Counters that the surrounding product owns (comments, likes, uploads) are
// included here as plain numbers; the rules do not care where they came from.
type History struct {
	TotalGuesses     int
	TotalSessions    int
	FinishedSessions int
	RankedFinished   int
	FunFinished      int

	TotalScore       int
	BestSessionScore int
	BestGuessScore   int

	ComboCount        int
	SpecialHitCount   int
	PeopleAllHitCount int
	ExactYearCount    int
	ExactMonthCount   int
	ExactDayCount     int

	// Longest runs over the player's guesses in submission order.
	MaxComboStreak    int
	MaxExactDayStreak int

	// Longest run of consecutive calendar days with at least one guess.
	MaxPlayDayStreak int

	// Guesses submitted between midnight and 06:00 / 06:00 and 09:00 local.
	NightGuessCount   int
	MorningGuessCount int

	FastestFinishSeconds int // 0 when no finished session yet
	LongestFinishSeconds int

	DistinctPhotosGuessed int
	AccountAgeDays        int

	CommentCount         int
	CommentLikesReceived int
	ApprovedUploadCount  int
	DistinctUploadYears  int
}
