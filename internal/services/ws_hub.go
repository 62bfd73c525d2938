package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"photo-guess-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message pushed to a player
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// AchievementUnlockedPayload is the grant feed entry the UI renders
type AchievementUnlockedPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
}

// WSHub manages player WebSocket connections and delivers the achievement
// grant feed. Players not connected fall back to APNs push, if configured.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	push        *PushService
}

// NewWSHub creates a new WebSocket hub. push may be nil.
func NewWSHub(push *PushService) *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
		push:        push,
	}
}

// Register registers a new WebSocket connection for a player
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A reconnect replaces the previous connection.
	if existing, exists := h.connections[userID]; exists {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a player's WebSocket connection
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[userID]; exists {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific player
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a player has a live connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyAchievementUnlocked pushes one grant feed entry to the player.
// Offline players get an APNs push instead when the push service is wired.
// Delivery is best-effort either way.
func (h *WSHub) NotifyAchievementUnlocked(userID string, ach *models.Achievement) {
	payload := AchievementUnlockedPayload{
		Title:       ach.Title,
		Description: ach.Description,
		Icon:        ach.Icon,
		Rarity:      ach.Rarity,
	}

	if h.IsOnline(userID) {
		err := h.SendToUser(userID, WSMessage{Type: "achievement_unlocked", Data: payload})
		if err == nil {
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to push achievement over WebSocket")
	}

	if h.push != nil {
		go h.push.SendAchievementUnlocked(userID, payload)
	}
}
