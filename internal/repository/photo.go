package repository

import (
	"context"
	"errors"
	"fmt"

	"photo-guess-backend/internal/geometry"
	"photo-guess-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for photos and person zones
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `
	id, s3_key, title, location, taken_at, special_question, special_answer,
	hidden_achievement_title, hidden_achievement_description, hidden_achievement_icon,
	created_at
`

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.S3Key, &photo.Title, &photo.Location, &photo.TakenAt,
		&photo.SpecialQuestion, &photo.SpecialAnswer,
		&photo.HiddenAchievementTitle, &photo.HiddenAchievementDescription,
		&photo.HiddenAchievementIcon, &photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("photo: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan photo: %w", err)
	}
	return &photo, nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	return scanPhoto(r.db.QueryRow(ctx, query, id))
}

// PickRandomDated selects n random photos that have a ground-truth capture
// date. Undated photos cannot be scored and never enter a session.
func (r *PhotoRepository) PickRandomDated(ctx context.Context, n int) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE taken_at IS NOT NULL ORDER BY random() LIMIT $1`
	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to pick photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

// GetZones retrieves the decoded person zones drawn on a photo
func (r *PhotoRepository) GetZones(ctx context.Context, photoID string) ([]geometry.Zone, error) {
	query := `
		SELECT id, photo_id, person_name, shape_type, shape_data, tolerance_px
		FROM person_zones
		WHERE photo_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get zones: %w", err)
	}
	defer rows.Close()

	var zones []geometry.Zone
	for rows.Next() {
		var (
			zone      geometry.Zone
			shapeType string
			shapeData []byte
		)
		err := rows.Scan(&zone.ID, &zone.PhotoID, &zone.PersonName, &shapeType, &shapeData, &zone.TolerancePx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zone.Shape, err = geometry.DecodeShape(shapeType, shapeData)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", zone.ID, err)
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zones: %w", err)
	}
	return zones, nil
}
