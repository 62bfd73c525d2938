package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-guess-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles database operations for sessions and their
// ordered photo lists
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateWithPhotos inserts a session and its session_photos rows in one
// transaction, fixing the photo order at positions 0..n-1.
func (r *SessionRepository) CreateWithPhotos(ctx context.Context, session *models.Session, photos []*models.SessionPhoto) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sessions (id, user_id, mode, photo_count, current_photo_index, total_score, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, $5)
	`
	_, err = tx.Exec(ctx, query,
		session.ID, session.UserID, session.Mode, session.PhotoCount, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	for _, sp := range photos {
		_, err = tx.Exec(ctx,
			`INSERT INTO session_photos (id, session_id, photo_id, position) VALUES ($1, $2, $3, $4)`,
			sp.ID, sp.SessionID, sp.PhotoID, sp.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to create session photo: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

const sessionColumns = `
	id, user_id, mode, photo_count, current_photo_index, total_score,
	created_at, finished_at, duration_seconds
`

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.Mode, &s.PhotoCount, &s.CurrentPhotoIndex,
		&s.TotalScore, &s.CreatedAt, &s.FinishedAt, &s.DurationSeconds,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &s, nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, id))
}

// GetSessionPhoto retrieves one session photo row by ID
func (r *SessionRepository) GetSessionPhoto(ctx context.Context, id string) (*models.SessionPhoto, error) {
	query := `SELECT id, session_id, photo_id, position FROM session_photos WHERE id = $1`
	var sp models.SessionPhoto
	err := r.db.QueryRow(ctx, query, id).Scan(&sp.ID, &sp.SessionID, &sp.PhotoID, &sp.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session photo: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session photo: %w", err)
	}
	return &sp, nil
}

// ListSessionPhotos retrieves a session's photos in play order
func (r *SessionRepository) ListSessionPhotos(ctx context.Context, sessionID string) ([]*models.SessionPhoto, error) {
	query := `
		SELECT id, session_id, photo_id, position
		FROM session_photos
		WHERE session_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session photos: %w", err)
	}
	defer rows.Close()

	var result []*models.SessionPhoto
	for rows.Next() {
		var sp models.SessionPhoto
		if err := rows.Scan(&sp.ID, &sp.SessionID, &sp.PhotoID, &sp.Position); err != nil {
			return nil, fmt.Errorf("failed to scan session photo: %w", err)
		}
		result = append(result, &sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session photos: %w", err)
	}
	return result, nil
}

// Advance applies one answered guess to the session: a single atomic
// increment of the running score and the photo index. The updated row comes
// back so the caller can detect completion without a second read.
func (r *SessionRepository) Advance(ctx context.Context, sessionID string, scoreDelta int) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET total_score = total_score + $1,
		    current_photo_index = current_photo_index + 1
		WHERE id = $2
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, scoreDelta, sessionID))
}

// Finish stamps the terminal state. The finished_at IS NULL guard makes the
// transition happen exactly once even under a race.
func (r *SessionRepository) Finish(ctx context.Context, sessionID string, finishedAt time.Time, durationSeconds int) error {
	query := `
		UPDATE sessions
		SET finished_at = $1, duration_seconds = $2
		WHERE id = $3 AND finished_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, finishedAt, durationSeconds, sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	return nil
}
