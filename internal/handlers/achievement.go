package handlers

import (
	"net/http"

	"photo-guess-backend/internal/middleware"
	"photo-guess-backend/internal/services"
)

// AchievementHandler handles achievement catalog HTTP requests
type AchievementHandler struct {
	achievementService *services.AchievementService
}

// NewAchievementHandler creates a new achievement handler
func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// ListAchievements handles GET /api/v1/achievements
func (h *AchievementHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	achievements, err := h.achievementService.ListVisible(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"achievements": achievements}, http.StatusOK)
}

// ListMyAchievements handles GET /api/v1/me/achievements
func (h *AchievementHandler) ListMyAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	achievements, err := h.achievementService.ListMine(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"achievements": achievements}, http.StatusOK)
}
