package services

import (
	"context"
	"fmt"
	"time"

	appconfig "photo-guess-backend/internal/config"
	"photo-guess-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushService delivers achievement unlocks to offline players over APNs
type PushService struct {
	client   *apns2.Client
	topic    string
	userRepo *repository.UserRepository
}

// NewPushService creates a push service from config. Returns nil (no error)
// when APNs is not configured; callers treat a nil service as disabled.
func NewPushService(cfg appconfig.APNSConfig, userRepo *repository.UserRepository) (*PushService, error) {
	if cfg.KeyPath == "" {
		return nil, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushService{
		client:   client,
		topic:    cfg.Topic,
		userRepo: userRepo,
	}, nil
}

// SendAchievementUnlocked pushes one unlock notification. Best-effort:
// players without a device token are skipped silently, delivery errors are
// logged and dropped.
func (s *PushService) SendAchievementUnlocked(userID string, p AchievementUnlockedPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for push")
		return
	}
	if user.PushToken == nil {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       s.topic,
		Payload: payload.NewPayload().
			AlertTitle(fmt.Sprintf("%s %s", p.Icon, p.Title)).
			AlertBody(p.Description).
			Sound("default"),
	}

	res, err := s.client.PushWithContext(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send APNs push")
		return
	}
	if !res.Sent() {
		log.Warn().
			Str("user_id", userID).
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("APNs push rejected")
	}
}
