// Package achievements evaluates the unlockable-condition rule table against
// a player's aggregated history and grants each achievement at most once.
package achievements

import (
	"context"
	"fmt"

	"photo-guess-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// HiddenGrantThreshold is the minimum guess score that unlocks a photo-bound
// hidden achievement.
const HiddenGrantThreshold = 500

// hiddenKeyPrefix namespaces lazily created photo-bound achievement keys so
// they can never collide with the built-in rule table.
const hiddenKeyPrefix = "hidden-"

// GrantStore persists achievements and their grants
type GrantStore interface {
	// GrantedKeys returns the keys of every achievement the player already has.
	GrantedKeys(ctx context.Context, userID string) (map[string]bool, error)
	// EnsureAchievement creates the achievement row for a definition if it
	// does not exist yet and returns it either way.
	EnsureAchievement(ctx context.Context, def Def) (*models.Achievement, error)
	// Grant records the user/achievement pair. It reports false without error
	// when the pair already exists, so racing grants resolve as no-ops.
	Grant(ctx context.Context, userID, achievementID string, photoID *string) (bool, error)
}

// HistorySource builds the aggregate snapshot for a player
type HistorySource interface {
	History(ctx context.Context, userID string) (History, error)
}

// Evaluator walks the rule table against a player's history snapshot
type Evaluator struct {
	store   GrantStore
	history HistorySource
	rules   []Rule
}

// NewEvaluator creates an evaluator over the given rule table
func NewEvaluator(store GrantStore, history HistorySource, rules []Rule) *Evaluator {
	return &Evaluator{store: store, history: history, rules: rules}
}

// Evaluate checks every not-yet-granted rule and grants the ones whose
// condition holds. It returns the newly granted achievements. Re-running
// against unchanged history grants nothing: granted keys are skipped before
// any predicate runs.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) ([]*models.Achievement, error) {
	granted, err := e.store.GrantedKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load granted achievements: %w", err)
	}

	h, err := e.history.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build player history: %w", err)
	}

	var unlocked []*models.Achievement
	for _, r := range e.rules {
		if granted[r.Def.Key] {
			continue
		}
		if !e.check(r, h) {
			continue
		}

		ach, err := e.store.EnsureAchievement(ctx, r.Def)
		if err != nil {
			log.Error().Err(err).Str("key", r.Def.Key).Msg("Failed to ensure achievement")
			continue
		}
		isNew, err := e.store.Grant(ctx, userID, ach.ID, nil)
		if err != nil {
			log.Error().Err(err).Str("key", r.Def.Key).Str("user_id", userID).Msg("Failed to grant achievement")
			continue
		}
		if isNew {
			unlocked = append(unlocked, ach)
		}
	}
	return unlocked, nil
}

// check runs one predicate, treating a panic as "condition not satisfied".
// A single broken rule must never take down guess submission.
func (e *Evaluator) check(r Rule, h History) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("key", r.Def.Key).Interface("panic", rec).Msg("Achievement rule panicked")
			ok = false
		}
	}()
	return r.Check(h)
}

// EvaluatePhotoBound handles the hidden achievements an admin attaches to a
// specific photo: any guess on that photo scoring at least
// HiddenGrantThreshold grants the achievement, once per player, no matter how
// many photos share the title. The achievement row is created lazily on the
// first qualifying guess.
func (e *Evaluator) EvaluatePhotoBound(ctx context.Context, userID string, photo *models.Photo, score int) (*models.Achievement, error) {
	if photo.HiddenAchievementTitle == nil || score < HiddenGrantThreshold {
		return nil, nil
	}

	def := Def{
		Key:      hiddenKeyPrefix + Slugify(*photo.HiddenAchievementTitle),
		Title:    *photo.HiddenAchievementTitle,
		Category: CategorySpecial,
		Rarity:   RarityEpic,
		Hidden:   true,
	}
	if photo.HiddenAchievementDescription != nil {
		def.Description = *photo.HiddenAchievementDescription
	}
	if photo.HiddenAchievementIcon != nil {
		def.Icon = *photo.HiddenAchievementIcon
	}

	ach, err := e.store.EnsureAchievement(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure hidden achievement: %w", err)
	}
	isNew, err := e.store.Grant(ctx, userID, ach.ID, &photo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to grant hidden achievement: %w", err)
	}
	if !isNew {
		return nil, nil
	}
	return ach, nil
}
