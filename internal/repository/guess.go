package repository

import (
	"context"
	"errors"
	"fmt"

	"photo-guess-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GuessRepository handles database operations for guesses
type GuessRepository struct {
	db *pgxpool.Pool
}

// NewGuessRepository creates a new guess repository
func NewGuessRepository(db *pgxpool.Pool) *GuessRepository {
	return &GuessRepository{db: db}
}

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Create inserts a guess. The unique constraint on session_photo_id is the
// single atomic "already answered" check: the loser of a double submission
// gets ErrDuplicate and nothing is written.
func (r *GuessRepository) Create(ctx context.Context, guess *models.Guess) error {
	query := `
		INSERT INTO guesses (
			id, session_photo_id, guessed_year, guessed_month, guessed_day, guessed_special,
			year_hit, month_hit, day_hit, special_hit, people_hit_all, is_combo,
			score_delta, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		guess.ID, guess.SessionPhotoID,
		guess.GuessedYear, guess.GuessedMonth, guess.GuessedDay, guess.GuessedSpecial,
		guess.YearHit, guess.MonthHit, guess.DayHit, guess.SpecialHit,
		guess.PeopleHitAll, guess.IsCombo,
		guess.ScoreDelta, guess.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("guess for session photo %s: %w", guess.SessionPhotoID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create guess: %w", err)
	}
	return nil
}

// GetBySessionPhotoID retrieves the guess for a session photo, if any
func (r *GuessRepository) GetBySessionPhotoID(ctx context.Context, sessionPhotoID string) (*models.Guess, error) {
	query := `
		SELECT id, session_photo_id, guessed_year, guessed_month, guessed_day, guessed_special,
		       year_hit, month_hit, day_hit, special_hit, people_hit_all, is_combo,
		       score_delta, created_at
		FROM guesses
		WHERE session_photo_id = $1
	`
	var g models.Guess
	err := r.db.QueryRow(ctx, query, sessionPhotoID).Scan(
		&g.ID, &g.SessionPhotoID,
		&g.GuessedYear, &g.GuessedMonth, &g.GuessedDay, &g.GuessedSpecial,
		&g.YearHit, &g.MonthHit, &g.DayHit, &g.SpecialHit, &g.PeopleHitAll, &g.IsCombo,
		&g.ScoreDelta, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("guess: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get guess: %w", err)
	}
	return &g, nil
}
