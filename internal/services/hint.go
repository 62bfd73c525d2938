package services

import (
	"context"
	"fmt"
	"strings"
)

// Hint types.
const (
	HintLocation = "location"
	HintDate     = "date"
	HintPeople   = "people"
)

// GetHint returns a short natural-language hint derived directly from the
// photo's ground truth. Read-only, no state mutation. The oracle is
// intentionally leaky (the date hint names the year outright); there is no
// anti-cheat gating here.
func (s *GameService) GetHint(ctx context.Context, photoID, hintType string) (string, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return "", mapNotFound(err)
	}

	switch hintType {
	case HintLocation:
		if photo.Location == nil || strings.TrimSpace(*photo.Location) == "" {
			return "", fmt.Errorf("photo %s has no location: %w", photoID, ErrHintUnavailable)
		}
		first := []rune(strings.TrimSpace(*photo.Location))[0]
		return fmt.Sprintf("Название места начинается на «%c»", first), nil

	case HintDate:
		if photo.TakenAt == nil {
			return "", fmt.Errorf("photo %s: %w", photoID, ErrNoCaptureDate)
		}
		return fmt.Sprintf("Фотография сделана в %d году", photo.TakenAt.Year()), nil

	case HintPeople:
		zones, err := s.photos.GetZones(ctx, photoID)
		if err != nil {
			return "", fmt.Errorf("failed to load zones: %w", err)
		}
		names := distinctPersonNames(zones)
		if len(names) == 0 {
			return "На этой фотографии нет отмеченных людей", nil
		}
		return fmt.Sprintf("На фотографии отмечены: %s", strings.Join(names, ", ")), nil

	default:
		return "", fmt.Errorf("unknown hint type %q: %w", hintType, ErrInvalidInput)
	}
}
