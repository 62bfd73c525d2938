package models

import "time"

// Game modes.
const (
	ModeRanked = "ranked"
	ModeFun    = "fun"
)

// User represents a player in the system
type User struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Token     string    `json:"token"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo represents a catalog photo players guess against.
// TakenAt is the ground-truth capture date; a photo without it cannot be
// scored and is never dealt into a session.
type Photo struct {
	ID              string     `json:"id"`
	S3Key           string     `json:"-"`
	Title           string     `json:"title"`
	Location        *string    `json:"location,omitempty"`
	TakenAt         *time.Time `json:"-"`
	SpecialQuestion *string    `json:"special_question,omitempty"`
	SpecialAnswer   *string    `json:"-"`

	// Optional photo-bound hidden achievement attached by an admin.
	HiddenAchievementTitle       *string `json:"-"`
	HiddenAchievementDescription *string `json:"-"`
	HiddenAchievementIcon        *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Session represents one play-through of photoCount photos
type Session struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Mode              string     `json:"mode"`
	PhotoCount        int        `json:"photo_count"`
	CurrentPhotoIndex int        `json:"current_photo_index"`
	TotalScore        int        `json:"total_score"`
	CreatedAt         time.Time  `json:"created_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	DurationSeconds   *int       `json:"duration_seconds,omitempty"`
}

// Finished reports whether the session reached its terminal state.
func (s *Session) Finished() bool {
	return s.FinishedAt != nil
}

// SessionPhoto fixes the order of one photo within a session.
// It owns at most one Guess.
type SessionPhoto struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	PhotoID   string `json:"photo_id"`
	Position  int    `json:"position"`
}

// Guess is the immutable record of one answered session photo
type Guess struct {
	ID             string    `json:"id"`
	SessionPhotoID string    `json:"session_photo_id"`
	GuessedYear    *int      `json:"guessed_year,omitempty"`
	GuessedMonth   *int      `json:"guessed_month,omitempty"`
	GuessedDay     *int      `json:"guessed_day,omitempty"`
	GuessedSpecial *string   `json:"guessed_special,omitempty"`
	YearHit        bool      `json:"year_hit"`
	MonthHit       bool      `json:"month_hit"`
	DayHit         bool      `json:"day_hit"`
	SpecialHit     bool      `json:"special_hit"`
	PeopleHitAll   bool      `json:"people_hit_all"`
	IsCombo        bool      `json:"is_combo"`
	ScoreDelta     int       `json:"score_delta"`
	CreatedAt      time.Time `json:"created_at"`
}

// Achievement represents an unlockable condition
type Achievement struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Category    string    `json:"category"`
	Rarity      string    `json:"rarity"`
	IsHidden    bool      `json:"is_hidden"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserAchievement is the at-most-once grant of an achievement to a player
type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	PhotoID       *string   `json:"photo_id,omitempty"`
	AwardedAt     time.Time `json:"awarded_at"`
}
