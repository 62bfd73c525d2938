package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"photo-guess-backend/internal/middleware"
	"photo-guess-backend/internal/models"
	"photo-guess-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GameHandler handles game session and guess HTTP requests
type GameHandler struct {
	gameService      *services.GameService
	photoService     *services.PhotoService
	photosPerSession int
}

// NewGameHandler creates a new game handler. photosPerSession is the deal
// size used when the client does not ask for one; zero falls back to the
// service default.
func NewGameHandler(gameService *services.GameService, photoService *services.PhotoService, photosPerSession int) *GameHandler {
	return &GameHandler{
		gameService:      gameService,
		photoService:     photoService,
		photosPerSession: photosPerSession,
	}
}

type startSessionRequest struct {
	Mode       string `json:"mode"`
	PhotoCount int    `json:"photo_count,omitempty"`
}

type sessionPhotoResponse struct {
	ID       string `json:"id"`
	PhotoID  string `json:"photo_id"`
	Position int    `json:"position"`
	ImageURL string `json:"image_url,omitempty"`
}

type sessionResponse struct {
	Session *models.Session        `json:"session"`
	Photos  []sessionPhotoResponse `json:"photos"`
}

// StartSession handles POST /api/v1/sessions
func (h *GameHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	photoCount := req.PhotoCount
	if photoCount == 0 {
		photoCount = h.photosPerSession
	}

	result, err := h.gameService.StartSession(ctx, userID, req.Mode, photoCount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	photos := make([]sessionPhotoResponse, len(result.SessionPhotos))
	for i, sp := range result.SessionPhotos {
		photos[i] = sessionPhotoResponse{
			ID:       sp.ID,
			PhotoID:  sp.PhotoID,
			Position: sp.Position,
			ImageURL: h.imageURL(ctx, result.Photos[i].S3Key),
		}
	}

	respondJSON(w, sessionResponse{Session: result.Session, Photos: photos}, http.StatusCreated)
}

// GetSession handles GET /api/v1/sessions/{sessionId}
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionId")

	session, sessionPhotos, err := h.gameService.GetSession(ctx, sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if session.UserID != middleware.GetUserID(ctx) {
		respondError(w, "Not found", http.StatusNotFound)
		return
	}

	photos := make([]sessionPhotoResponse, len(sessionPhotos))
	for i, sp := range sessionPhotos {
		photos[i] = sessionPhotoResponse{ID: sp.ID, PhotoID: sp.PhotoID, Position: sp.Position}
	}

	respondJSON(w, sessionResponse{Session: session, Photos: photos}, http.StatusOK)
}

// SubmitGuess handles POST /api/v1/session-photos/{sessionPhotoId}/guess
func (h *GameHandler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.SubmitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.SessionPhotoID = chi.URLParam(r, "sessionPhotoId")

	result, err := h.gameService.SubmitGuess(ctx, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, result, http.StatusOK)
}

// GetHint handles GET /api/v1/photos/{photoId}/hint?type=location|date|people
func (h *GameHandler) GetHint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	photoID := chi.URLParam(r, "photoId")
	hintType := r.URL.Query().Get("type")

	hint, err := h.gameService.GetHint(ctx, photoID, hintType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]string{"hint": hint}, http.StatusOK)
}

// ScoreClassicRound handles POST /api/v1/photos/{photoId}/classic-score
func (h *GameHandler) ScoreClassicRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ClassicRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.PhotoID = chi.URLParam(r, "photoId")

	result, err := h.gameService.ScoreClassicRound(ctx, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, result, http.StatusOK)
}

// imageURL presigns the photo image, logging and omitting it on failure so a
// broken S3 config does not break session start.
func (h *GameHandler) imageURL(ctx context.Context, s3Key string) string {
	if h.photoService == nil || s3Key == "" {
		return ""
	}
	url, err := h.photoService.ImageURL(ctx, s3Key)
	if err != nil {
		log.Warn().Err(err).Str("s3_key", s3Key).Msg("Failed to presign photo URL")
		return ""
	}
	return url
}
