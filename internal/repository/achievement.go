package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-guess-backend/internal/achievements"
	"photo-guess-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// AchievementRepository handles achievement rows, grants and the history
// aggregates the rule table runs against. It implements
// achievements.GrantStore and achievements.HistorySource.
type AchievementRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db, now: time.Now}
}

const achievementColumns = `id, key, title, description, icon, category, rarity, is_hidden, created_at`

func scanAchievement(row pgx.Row) (*models.Achievement, error) {
	var a models.Achievement
	err := row.Scan(
		&a.ID, &a.Key, &a.Title, &a.Description, &a.Icon,
		&a.Category, &a.Rarity, &a.IsHidden, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("achievement: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan achievement: %w", err)
	}
	return &a, nil
}

// GrantedKeys returns the keys of every achievement the player already holds
func (r *AchievementRepository) GrantedKeys(ctx context.Context, userID string) (map[string]bool, error) {
	query := `
		SELECT a.key
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load granted keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan granted key: %w", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating granted keys: %w", err)
	}
	return keys, nil
}

// EnsureAchievement creates the achievement row for a definition if needed
// and returns it. Concurrent creation for the same key converges on the row
// that won the insert.
func (r *AchievementRepository) EnsureAchievement(ctx context.Context, def achievements.Def) (*models.Achievement, error) {
	insert := `
		INSERT INTO achievements (id, key, title, description, icon, category, rarity, is_hidden, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO NOTHING
	`
	_, err := r.db.Exec(ctx, insert,
		uuid.New().String(), def.Key, def.Title, def.Description, def.Icon,
		def.Category, def.Rarity, def.Hidden, r.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure achievement %s: %w", def.Key, err)
	}

	query := `SELECT ` + achievementColumns + ` FROM achievements WHERE key = $1`
	return scanAchievement(r.db.QueryRow(ctx, query, def.Key))
}

// Grant records the user/achievement pair, at most once. It reports false
// when the pair already exists so racing grants land as no-ops.
func (r *AchievementRepository) Grant(ctx context.Context, userID, achievementID string, photoID *string) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, photo_id, awarded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, achievementID, photoID, r.now())
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListVisible returns all achievements, masking title/description/icon of
// hidden ones the player has not earned yet
func (r *AchievementRepository) ListVisible(ctx context.Context, userID string) ([]*models.Achievement, error) {
	query := `
		SELECT ` + achievementColumns + `, (ua.user_id IS NOT NULL) AS earned
		FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = $1
		ORDER BY a.category, a.key
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var result []*models.Achievement
	for rows.Next() {
		var (
			a      models.Achievement
			earned bool
		)
		err := rows.Scan(
			&a.ID, &a.Key, &a.Title, &a.Description, &a.Icon,
			&a.Category, &a.Rarity, &a.IsHidden, &a.CreatedAt, &earned,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		if a.IsHidden && !earned {
			a.Title = "???"
			a.Description = ""
			a.Icon = ""
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}
	return result, nil
}

// ListForUser returns the achievements a player has earned, newest first
func (r *AchievementRepository) ListForUser(ctx context.Context, userID string) ([]*models.Achievement, error) {
	query := `
		SELECT ` + achievementColumns + `
		FROM achievements a
		JOIN user_achievements ua ON ua.achievement_id = a.id
		WHERE ua.user_id = $1
		ORDER BY ua.awarded_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}
	defer rows.Close()

	var result []*models.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user achievements: %w", err)
	}
	return result, nil
}

// History assembles the aggregate snapshot the rule table evaluates.
// Counters owned by the surrounding product (comments, likes, uploads) are
// loaded best-effort: a failed query leaves its counters at zero so rule
// evaluation never blocks guess submission.
func (r *AchievementRepository) History(ctx context.Context, userID string) (achievements.History, error) {
	var h achievements.History

	if err := r.loadGuessAggregates(ctx, userID, &h); err != nil {
		return h, err
	}
	if err := r.loadSessionAggregates(ctx, userID, &h); err != nil {
		return h, err
	}
	if err := r.loadStreaks(ctx, userID, &h); err != nil {
		return h, err
	}

	var createdAt time.Time
	err := r.db.QueryRow(ctx, `SELECT created_at FROM users WHERE id = $1`, userID).Scan(&createdAt)
	if err != nil {
		return h, fmt.Errorf("failed to load user: %w", err)
	}
	h.AccountAgeDays = int(r.now().Sub(createdAt).Hours() / 24)

	r.loadExternalAggregates(ctx, userID, &h)
	return h, nil
}

func (r *AchievementRepository) loadGuessAggregates(ctx context.Context, userID string, h *achievements.History) error {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(g.score_delta), 0),
			COALESCE(MAX(g.score_delta), 0),
			COUNT(*) FILTER (WHERE g.is_combo),
			COUNT(*) FILTER (WHERE g.special_hit),
			COUNT(*) FILTER (WHERE g.people_hit_all),
			COUNT(*) FILTER (WHERE g.year_hit),
			COUNT(*) FILTER (WHERE g.month_hit),
			COUNT(*) FILTER (WHERE g.day_hit),
			COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM g.created_at) < 6),
			COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM g.created_at) >= 6 AND EXTRACT(HOUR FROM g.created_at) < 9),
			COUNT(DISTINCT sp.photo_id)
		FROM guesses g
		JOIN session_photos sp ON sp.id = g.session_photo_id
		JOIN sessions s ON s.id = sp.session_id
		WHERE s.user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&h.TotalGuesses, &h.TotalScore, &h.BestGuessScore,
		&h.ComboCount, &h.SpecialHitCount, &h.PeopleAllHitCount,
		&h.ExactYearCount, &h.ExactMonthCount, &h.ExactDayCount,
		&h.NightGuessCount, &h.MorningGuessCount, &h.DistinctPhotosGuessed,
	)
	if err != nil {
		return fmt.Errorf("failed to load guess aggregates: %w", err)
	}
	return nil
}

func (r *AchievementRepository) loadSessionAggregates(ctx context.Context, userID string, h *achievements.History) error {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE finished_at IS NOT NULL),
			COUNT(*) FILTER (WHERE finished_at IS NOT NULL AND mode = $2),
			COUNT(*) FILTER (WHERE finished_at IS NOT NULL AND mode = $3),
			COALESCE(MAX(total_score) FILTER (WHERE finished_at IS NOT NULL), 0),
			COALESCE(MIN(duration_seconds), 0),
			COALESCE(MAX(duration_seconds), 0)
		FROM sessions
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID, models.ModeRanked, models.ModeFun).Scan(
		&h.TotalSessions, &h.FinishedSessions, &h.RankedFinished, &h.FunFinished,
		&h.BestSessionScore, &h.FastestFinishSeconds, &h.LongestFinishSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to load session aggregates: %w", err)
	}
	return nil
}

// loadStreaks walks the player's guesses in submission order and computes
// the run lengths the streak rules need.
func (r *AchievementRepository) loadStreaks(ctx context.Context, userID string, h *achievements.History) error {
	query := `
		SELECT g.is_combo, g.day_hit, g.created_at
		FROM guesses g
		JOIN session_photos sp ON sp.id = g.session_photo_id
		JOIN sessions s ON s.id = sp.session_id
		WHERE s.user_id = $1
		ORDER BY g.created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to load guess stream: %w", err)
	}
	defer rows.Close()

	var (
		comboRun, dayRun int
		playRun          int
		lastDay          time.Time
		haveDay          bool
	)
	for rows.Next() {
		var (
			isCombo, dayHit bool
			createdAt       time.Time
		)
		if err := rows.Scan(&isCombo, &dayHit, &createdAt); err != nil {
			return fmt.Errorf("failed to scan guess stream: %w", err)
		}

		if isCombo {
			comboRun++
		} else {
			comboRun = 0
		}
		if dayHit {
			dayRun++
		} else {
			dayRun = 0
		}
		if comboRun > h.MaxComboStreak {
			h.MaxComboStreak = comboRun
		}
		if dayRun > h.MaxExactDayStreak {
			h.MaxExactDayStreak = dayRun
		}

		day := createdAt.Truncate(24 * time.Hour)
		switch {
		case !haveDay:
			playRun = 1
			haveDay = true
		case day.Equal(lastDay):
			// same calendar day, run unchanged
		case day.Sub(lastDay) == 24*time.Hour:
			playRun++
		default:
			playRun = 1
		}
		lastDay = day
		if playRun > h.MaxPlayDayStreak {
			h.MaxPlayDayStreak = playRun
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating guess stream: %w", err)
	}
	return nil
}

// loadExternalAggregates reads counters from tables the surrounding product
// owns. Any failure is logged and leaves the counters at zero.
func (r *AchievementRepository) loadExternalAggregates(ctx context.Context, userID string, h *achievements.History) {
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments WHERE user_id = $1`, userID,
	).Scan(&h.CommentCount)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load comment count")
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM comment_likes cl
		JOIN comments c ON c.id = cl.comment_id
		WHERE c.user_id = $1
	`, userID).Scan(&h.CommentLikesReceived)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load comment likes")
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT EXTRACT(YEAR FROM exif_taken_at))
		FROM uploads
		WHERE user_id = $1 AND status = 'approved'
	`, userID).Scan(&h.ApprovedUploadCount, &h.DistinctUploadYears)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load upload aggregates")
	}
}
