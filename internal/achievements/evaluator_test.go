package achievements

import (
	"context"
	"testing"
	"time"

	"photo-guess-backend/internal/models"
)

// fakeStore is an in-memory GrantStore.
type fakeStore struct {
	achievements map[string]*models.Achievement // by key
	grants       map[string]map[string]bool     // userID -> achievementID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		achievements: make(map[string]*models.Achievement),
		grants:       make(map[string]map[string]bool),
	}
}

func (s *fakeStore) GrantedKeys(_ context.Context, userID string) (map[string]bool, error) {
	keys := make(map[string]bool)
	for _, ach := range s.achievements {
		if s.grants[userID][ach.ID] {
			keys[ach.Key] = true
		}
	}
	return keys, nil
}

func (s *fakeStore) EnsureAchievement(_ context.Context, def Def) (*models.Achievement, error) {
	if ach, ok := s.achievements[def.Key]; ok {
		return ach, nil
	}
	ach := &models.Achievement{
		ID:          "ach-" + def.Key,
		Key:         def.Key,
		Title:       def.Title,
		Description: def.Description,
		Icon:        def.Icon,
		Category:    def.Category,
		Rarity:      def.Rarity,
		IsHidden:    def.Hidden,
		CreatedAt:   time.Now(),
	}
	s.achievements[def.Key] = ach
	return ach, nil
}

func (s *fakeStore) Grant(_ context.Context, userID, achievementID string, _ *string) (bool, error) {
	if s.grants[userID] == nil {
		s.grants[userID] = make(map[string]bool)
	}
	if s.grants[userID][achievementID] {
		return false, nil
	}
	s.grants[userID][achievementID] = true
	return true, nil
}

type fakeHistory struct{ h History }

func (f fakeHistory) History(context.Context, string) (History, error) { return f.h, nil }

func TestEvaluateGrantsMatchingRules(t *testing.T) {
	store := newFakeStore()
	ev := NewEvaluator(store, fakeHistory{History{TotalGuesses: 12, ComboCount: 1}}, DefaultRules())

	unlocked, err := ev.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	got := make(map[string]bool, len(unlocked))
	for _, a := range unlocked {
		got[a.Key] = true
	}
	for _, key := range []string{"first-guess", "guesses-10", "first-combo"} {
		if !got[key] {
			t.Errorf("expected %q to unlock, got %v", key, got)
		}
	}
	if got["guesses-100"] {
		t.Error("guesses-100 must not unlock at 12 guesses")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	hist := fakeHistory{History{TotalGuesses: 1}}
	ev := NewEvaluator(store, hist, DefaultRules())

	first, err := ev.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("first run should unlock something")
	}

	second, err := ev.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run against unchanged history granted %d achievements", len(second))
	}
}

func TestEvaluateSurvivesPanickingRule(t *testing.T) {
	store := newFakeStore()
	rules := []Rule{
		rule("broken", "Broken", "", "", CategorySpecial, RarityCommon,
			func(History) bool { panic("missing aggregate") }),
		rule("fine", "Fine", "", "", CategorySpecial, RarityCommon,
			func(h History) bool { return h.TotalGuesses >= 1 }),
	}
	ev := NewEvaluator(store, fakeHistory{History{TotalGuesses: 1}}, rules)

	unlocked, err := ev.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Key != "fine" {
		t.Errorf("expected only the healthy rule to unlock, got %v", unlocked)
	}
}

func TestEvaluatePhotoBound(t *testing.T) {
	title := "Тайна моста"
	desc := "Вы разгадали тайну"
	photo := &models.Photo{ID: "p1", HiddenAchievementTitle: &title, HiddenAchievementDescription: &desc}
	otherPhoto := &models.Photo{ID: "p2", HiddenAchievementTitle: &title}

	store := newFakeStore()
	ev := NewEvaluator(store, fakeHistory{}, nil)
	ctx := context.Background()

	t.Run("below threshold does not grant", func(t *testing.T) {
		ach, err := ev.EvaluatePhotoBound(ctx, "u1", photo, HiddenGrantThreshold-1)
		if err != nil || ach != nil {
			t.Errorf("got ach=%v err=%v, want nil/nil", ach, err)
		}
	})

	t.Run("photo without hidden achievement is a no-op", func(t *testing.T) {
		ach, err := ev.EvaluatePhotoBound(ctx, "u1", &models.Photo{ID: "p3"}, 2000)
		if err != nil || ach != nil {
			t.Errorf("got ach=%v err=%v, want nil/nil", ach, err)
		}
	})

	t.Run("qualifying guess creates and grants once", func(t *testing.T) {
		ach, err := ev.EvaluatePhotoBound(ctx, "u1", photo, HiddenGrantThreshold)
		if err != nil {
			t.Fatalf("EvaluatePhotoBound: %v", err)
		}
		if ach == nil {
			t.Fatal("expected a grant at the threshold")
		}
		if ach.Key != "hidden-тайна-моста" {
			t.Errorf("key = %q, want slug of the title", ach.Key)
		}
		if !ach.IsHidden {
			t.Error("photo-bound achievements must be hidden")
		}
		if ach.Description != desc {
			t.Errorf("description = %q, want %q", ach.Description, desc)
		}
	})

	t.Run("same title on another photo does not grant twice", func(t *testing.T) {
		ach, err := ev.EvaluatePhotoBound(ctx, "u1", otherPhoto, 1000)
		if err != nil {
			t.Fatalf("EvaluatePhotoBound: %v", err)
		}
		if ach != nil {
			t.Error("player already holds this title, expected no new grant")
		}
	})

	t.Run("another player still qualifies", func(t *testing.T) {
		ach, err := ev.EvaluatePhotoBound(ctx, "u2", otherPhoto, 1000)
		if err != nil || ach == nil {
			t.Errorf("got ach=%v err=%v, want a grant", ach, err)
		}
	})
}

func TestDefaultRulesHaveUniqueKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range DefaultRules() {
		if r.Def.Key == "" || r.Def.Title == "" {
			t.Errorf("rule %+v missing key or title", r.Def)
		}
		if seen[r.Def.Key] {
			t.Errorf("duplicate rule key %q", r.Def.Key)
		}
		seen[r.Def.Key] = true
		if r.Check == nil {
			t.Errorf("rule %q has no predicate", r.Def.Key)
		}
		// Every predicate must be false on an empty history: nothing unlocks
		// before the player has done anything.
		if r.Check(History{}) {
			t.Errorf("rule %q unlocks on an empty history", r.Def.Key)
		}
	}
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Тайна моста", "тайна-моста"},
		{"  Old Bridge!  ", "old-bridge"},
		{"A  B--C", "a-b-c"},
		{"1945", "1945"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
