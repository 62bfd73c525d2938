package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-guess-backend/internal/geometry"
	"photo-guess-backend/internal/models"
	"photo-guess-backend/internal/repository"
	"photo-guess-backend/internal/scoring"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session size bounds.
const (
	defaultPhotosPerSession = 5
	maxPhotosPerSession     = 20
)

type photoStore interface {
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	PickRandomDated(ctx context.Context, n int) ([]*models.Photo, error)
	GetZones(ctx context.Context, photoID string) ([]geometry.Zone, error)
}

type sessionStore interface {
	CreateWithPhotos(ctx context.Context, session *models.Session, photos []*models.SessionPhoto) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetSessionPhoto(ctx context.Context, id string) (*models.SessionPhoto, error)
	ListSessionPhotos(ctx context.Context, sessionID string) ([]*models.SessionPhoto, error)
	Advance(ctx context.Context, sessionID string, scoreDelta int) (*models.Session, error)
	Finish(ctx context.Context, sessionID string, finishedAt time.Time, durationSeconds int) error
}

type guessStore interface {
	Create(ctx context.Context, guess *models.Guess) error
}

type achievementEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]*models.Achievement, error)
	EvaluatePhotoBound(ctx context.Context, userID string, photo *models.Photo, score int) (*models.Achievement, error)
}

type unlockNotifier interface {
	NotifyAchievementUnlocked(userID string, ach *models.Achievement)
}

// GameService orchestrates one guess submission: geometry, scoring, state
// advance and the best-effort achievement pass. It is the only place the
// session state machine transitions.
type GameService struct {
	photos    photoStore
	sessions  sessionStore
	guesses   guessStore
	evaluator achievementEvaluator
	notifier  unlockNotifier
	now       func() time.Time
}

// NewGameService creates a new game service. notifier may be nil.
func NewGameService(
	photos photoStore,
	sessions sessionStore,
	guesses guessStore,
	evaluator achievementEvaluator,
	notifier unlockNotifier,
) *GameService {
	return &GameService{
		photos:    photos,
		sessions:  sessions,
		guesses:   guesses,
		evaluator: evaluator,
		notifier:  notifier,
		now:       time.Now,
	}
}

// StartSessionResult is a created session with its dealt photos in order
type StartSessionResult struct {
	Session       *models.Session
	SessionPhotos []*models.SessionPhoto
	Photos        []*models.Photo
}

// StartSession deals photoCount random dated photos into a new session
func (s *GameService) StartSession(ctx context.Context, userID, mode string, photoCount int) (*StartSessionResult, error) {
	if mode != models.ModeRanked && mode != models.ModeFun {
		return nil, fmt.Errorf("unknown mode %q: %w", mode, ErrInvalidInput)
	}
	if photoCount <= 0 {
		photoCount = defaultPhotosPerSession
	}
	if photoCount > maxPhotosPerSession {
		return nil, fmt.Errorf("photo count %d exceeds limit: %w", photoCount, ErrInvalidInput)
	}

	photos, err := s.photos.PickRandomDated(ctx, photoCount)
	if err != nil {
		return nil, fmt.Errorf("failed to pick photos: %w", err)
	}
	if len(photos) < photoCount {
		return nil, fmt.Errorf("only %d dated photos available: %w", len(photos), ErrInvalidInput)
	}

	session := &models.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Mode:       mode,
		PhotoCount: photoCount,
		CreatedAt:  s.now(),
	}
	sessionPhotos := make([]*models.SessionPhoto, len(photos))
	for i, photo := range photos {
		sessionPhotos[i] = &models.SessionPhoto{
			ID:        uuid.New().String(),
			SessionID: session.ID,
			PhotoID:   photo.ID,
			Position:  i,
		}
	}

	if err := s.sessions.CreateWithPhotos(ctx, session, sessionPhotos); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID).
		Str("user_id", userID).
		Str("mode", mode).
		Int("photo_count", photoCount).
		Msg("Session started")

	return &StartSessionResult{Session: session, SessionPhotos: sessionPhotos, Photos: photos}, nil
}

// GetSession returns a session with its photo list
func (s *GameService) GetSession(ctx context.Context, id string) (*models.Session, []*models.SessionPhoto, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	sessionPhotos, err := s.sessions.ListSessionPhotos(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return session, sessionPhotos, nil
}

// SubmitGuessRequest is one guess against a session photo
type SubmitGuessRequest struct {
	SessionPhotoID string                 `json:"session_photo_id"`
	GuessedYear    *int                   `json:"guessed_year,omitempty"`
	GuessedMonth   *int                   `json:"guessed_month,omitempty"`
	GuessedDay     *int                   `json:"guessed_day,omitempty"`
	GuessedSpecial *string                `json:"guessed_special,omitempty"`
	PeopleCoords   []geometry.TaggedPoint `json:"people_coords,omitempty"`
}

// SubmitGuessResult reports the scored guess and the advanced session state
type SubmitGuessResult struct {
	YearHit           bool                  `json:"year_hit"`
	MonthHit          bool                  `json:"month_hit"`
	DayHit            bool                  `json:"day_hit"`
	SpecialHit        bool                  `json:"special_hit"`
	PeopleHitAll      bool                  `json:"people_hit_all"`
	IsCombo           bool                  `json:"is_combo"`
	Score             int                   `json:"score"`
	SessionTotalScore int                   `json:"session_total_score"`
	CurrentPhotoIndex int                   `json:"current_photo_index"`
	PhotoCount        int                   `json:"photo_count"`
	Finished          bool                  `json:"finished"`
	NewAchievements   []*models.Achievement `json:"new_achievements,omitempty"`
}

// SubmitGuess runs the state machine transition for one guess. The guess
// insert is the atomic already-answered check; the session advance is a
// single atomic increment. Achievement evaluation runs after the writes and
// can never fail the submission.
func (s *GameService) SubmitGuess(ctx context.Context, req SubmitGuessRequest) (*SubmitGuessResult, error) {
	if err := validateGuess(req); err != nil {
		return nil, err
	}

	sp, err := s.sessions.GetSessionPhoto(ctx, req.SessionPhotoID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	session, err := s.sessions.GetByID(ctx, sp.SessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if session.Finished() {
		return nil, fmt.Errorf("session %s: %w", session.ID, ErrSessionFinished)
	}

	photo, err := s.photos.GetByID(ctx, sp.PhotoID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if photo.TakenAt == nil {
		return nil, fmt.Errorf("photo %s: %w", photo.ID, ErrNoCaptureDate)
	}

	zones, err := s.photos.GetZones(ctx, photo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}
	tagging := geometry.ValidatePeopleTagging(req.PeopleCoords, zones)

	scored := scoring.ForMode(session.Mode).Score(scoring.Input{
		TakenAt:        *photo.TakenAt,
		GuessedYear:    req.GuessedYear,
		GuessedMonth:   req.GuessedMonth,
		GuessedDay:     req.GuessedDay,
		SpecialAnswer:  photo.SpecialAnswer,
		GuessedSpecial: req.GuessedSpecial,
	})

	guess := &models.Guess{
		ID:             uuid.New().String(),
		SessionPhotoID: sp.ID,
		GuessedYear:    req.GuessedYear,
		GuessedMonth:   req.GuessedMonth,
		GuessedDay:     req.GuessedDay,
		GuessedSpecial: req.GuessedSpecial,
		YearHit:        scored.YearHit,
		MonthHit:       scored.MonthHit,
		DayHit:         scored.DayHit,
		SpecialHit:     scored.SpecialHit,
		PeopleHitAll:   tagging.AllHit,
		IsCombo:        scored.IsCombo,
		ScoreDelta:     scored.Total,
		CreatedAt:      s.now(),
	}
	if err := s.guesses.Create(ctx, guess); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("session photo %s: %w", sp.ID, ErrAlreadyAnswered)
		}
		return nil, fmt.Errorf("failed to persist guess: %w", err)
	}

	updated, err := s.sessions.Advance(ctx, session.ID, scored.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to advance session: %w", err)
	}

	finished := updated.CurrentPhotoIndex >= updated.PhotoCount
	if finished && !updated.Finished() {
		now := s.now()
		duration := int(now.Sub(updated.CreatedAt).Seconds())
		if err := s.sessions.Finish(ctx, updated.ID, now, duration); err != nil {
			return nil, fmt.Errorf("failed to finish session: %w", err)
		}
		updated.FinishedAt = &now
		updated.DurationSeconds = &duration

		log.Info().
			Str("session_id", updated.ID).
			Int("total_score", updated.TotalScore).
			Int("duration_seconds", duration).
			Msg("Session finished")
	}

	result := &SubmitGuessResult{
		YearHit:           scored.YearHit,
		MonthHit:          scored.MonthHit,
		DayHit:            scored.DayHit,
		SpecialHit:        scored.SpecialHit,
		PeopleHitAll:      tagging.AllHit,
		IsCombo:           scored.IsCombo,
		Score:             scored.Total,
		SessionTotalScore: updated.TotalScore,
		CurrentPhotoIndex: updated.CurrentPhotoIndex,
		PhotoCount:        updated.PhotoCount,
		Finished:          finished,
	}
	result.NewAchievements = s.runAchievements(ctx, session.UserID, photo, scored.Total)
	return result, nil
}

// runAchievements is the best-effort pass after a committed guess. Failures
// are logged and swallowed: achievements are a bonus, not a correctness path.
func (s *GameService) runAchievements(ctx context.Context, userID string, photo *models.Photo, score int) []*models.Achievement {
	var unlocked []*models.Achievement

	hidden, err := s.evaluator.EvaluatePhotoBound(ctx, userID, photo, score)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("photo_id", photo.ID).Msg("Hidden achievement check failed")
	} else if hidden != nil {
		unlocked = append(unlocked, hidden)
	}

	granted, err := s.evaluator.Evaluate(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Achievement evaluation failed")
	} else {
		unlocked = append(unlocked, granted...)
	}

	if s.notifier != nil {
		for _, ach := range unlocked {
			s.notifier.NotifyAchievementUnlocked(userID, ach)
		}
	}
	return unlocked
}

func validateGuess(req SubmitGuessRequest) error {
	if req.SessionPhotoID == "" {
		return fmt.Errorf("session_photo_id is required: %w", ErrInvalidInput)
	}
	if req.GuessedMonth != nil && (*req.GuessedMonth < 1 || *req.GuessedMonth > 12) {
		return fmt.Errorf("month %d out of range: %w", *req.GuessedMonth, ErrInvalidInput)
	}
	if req.GuessedDay != nil && (*req.GuessedDay < 1 || *req.GuessedDay > 31) {
		return fmt.Errorf("day %d out of range: %w", *req.GuessedDay, ErrInvalidInput)
	}
	if req.GuessedYear != nil && (*req.GuessedYear < 1800 || *req.GuessedYear > 2200) {
		return fmt.Errorf("year %d out of range: %w", *req.GuessedYear, ErrInvalidInput)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
