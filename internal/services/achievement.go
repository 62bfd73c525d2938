package services

import (
	"context"

	"photo-guess-backend/internal/models"
	"photo-guess-backend/internal/repository"
)

// AchievementService exposes the achievement catalog to handlers. Granting
// happens inside the game service; this is the read side.
type AchievementService struct {
	repo *repository.AchievementRepository
}

// NewAchievementService creates a new achievement service
func NewAchievementService(repo *repository.AchievementRepository) *AchievementService {
	return &AchievementService{repo: repo}
}

// ListVisible returns the full catalog for a player, with not-yet-earned
// hidden achievements masked
func (s *AchievementService) ListVisible(ctx context.Context, userID string) ([]*models.Achievement, error) {
	return s.repo.ListVisible(ctx, userID)
}

// ListMine returns the achievements the player has earned, newest first
func (s *AchievementService) ListMine(ctx context.Context, userID string) ([]*models.Achievement, error) {
	return s.repo.ListForUser(ctx, userID)
}
