package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"photo-guess-backend/internal/geometry"
	"photo-guess-backend/internal/models"
	"photo-guess-backend/internal/repository"
)

type fakePhotos struct {
	photos map[string]*models.Photo
	zones  map[string][]geometry.Zone
}

func (f *fakePhotos) GetByID(_ context.Context, id string) (*models.Photo, error) {
	photo, ok := f.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo: %w", repository.ErrNotFound)
	}
	return photo, nil
}

func (f *fakePhotos) PickRandomDated(_ context.Context, n int) ([]*models.Photo, error) {
	var out []*models.Photo
	for _, p := range f.photos {
		if p.TakenAt != nil && len(out) < n {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePhotos) GetZones(_ context.Context, photoID string) ([]geometry.Zone, error) {
	return f.zones[photoID], nil
}

type fakeSessions struct {
	sessions      map[string]*models.Session
	sessionPhotos map[string]*models.SessionPhoto
}

func (f *fakeSessions) CreateWithPhotos(_ context.Context, s *models.Session, photos []*models.SessionPhoto) error {
	f.sessions[s.ID] = s
	for _, sp := range photos {
		f.sessionPhotos[sp.ID] = sp
	}
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) GetSessionPhoto(_ context.Context, id string) (*models.SessionPhoto, error) {
	sp, ok := f.sessionPhotos[id]
	if !ok {
		return nil, fmt.Errorf("session photo: %w", repository.ErrNotFound)
	}
	return sp, nil
}

func (f *fakeSessions) ListSessionPhotos(_ context.Context, sessionID string) ([]*models.SessionPhoto, error) {
	var out []*models.SessionPhoto
	for _, sp := range f.sessionPhotos {
		if sp.SessionID == sessionID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (f *fakeSessions) Advance(_ context.Context, sessionID string, scoreDelta int) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	s.TotalScore += scoreDelta
	s.CurrentPhotoIndex++
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) Finish(_ context.Context, sessionID string, finishedAt time.Time, durationSeconds int) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	if s.FinishedAt == nil {
		s.FinishedAt = &finishedAt
		s.DurationSeconds = &durationSeconds
	}
	return nil
}

type fakeGuesses struct {
	bySessionPhoto map[string]*models.Guess
}

func (f *fakeGuesses) Create(_ context.Context, g *models.Guess) error {
	if _, exists := f.bySessionPhoto[g.SessionPhotoID]; exists {
		return fmt.Errorf("guess: %w", repository.ErrDuplicate)
	}
	f.bySessionPhoto[g.SessionPhotoID] = g
	return nil
}

type fakeEvaluator struct {
	unlock     []*models.Achievement
	hidden     *models.Achievement
	err        error
	evalCalls  int
	boundCalls int
}

func (f *fakeEvaluator) Evaluate(context.Context, string) ([]*models.Achievement, error) {
	f.evalCalls++
	return f.unlock, f.err
}

func (f *fakeEvaluator) EvaluatePhotoBound(_ context.Context, _ string, _ *models.Photo, _ int) (*models.Achievement, error) {
	f.boundCalls++
	return f.hidden, f.err
}

type fixture struct {
	svc      *GameService
	photos   *fakePhotos
	sessions *fakeSessions
	guesses  *fakeGuesses
	eval     *fakeEvaluator
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	takenAt := time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC)
	special := "мост"
	f := &fixture{
		photos: &fakePhotos{
			photos: map[string]*models.Photo{
				"photo-1": {ID: "photo-1", TakenAt: &takenAt, SpecialAnswer: &special},
				"photo-2": {ID: "photo-2", TakenAt: &takenAt},
				"undated": {ID: "undated"},
			},
			zones: map[string][]geometry.Zone{
				"photo-1": {{
					ID:          "z1",
					PhotoID:     "photo-1",
					PersonName:  "Аня",
					Shape:       geometry.Rect{X: 10, Y: 10, Width: 50, Height: 50},
					TolerancePx: 5,
				}},
			},
		},
		sessions: &fakeSessions{
			sessions:      make(map[string]*models.Session),
			sessionPhotos: make(map[string]*models.SessionPhoto),
		},
		guesses: &fakeGuesses{bySessionPhoto: make(map[string]*models.Guess)},
		eval:    &fakeEvaluator{},
		now:     time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}

	f.sessions.sessions["sess-1"] = &models.Session{
		ID:         "sess-1",
		UserID:     "user-1",
		Mode:       models.ModeRanked,
		PhotoCount: 2,
		CreatedAt:  f.now.Add(-90 * time.Second),
	}
	f.sessions.sessionPhotos["sp-1"] = &models.SessionPhoto{ID: "sp-1", SessionID: "sess-1", PhotoID: "photo-1", Position: 0}
	f.sessions.sessionPhotos["sp-2"] = &models.SessionPhoto{ID: "sp-2", SessionID: "sess-1", PhotoID: "photo-2", Position: 1}
	f.sessions.sessionPhotos["sp-undated"] = &models.SessionPhoto{ID: "sp-undated", SessionID: "sess-1", PhotoID: "undated", Position: 1}

	f.svc = NewGameService(f.photos, f.sessions, f.guesses, f.eval, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func intp(v int) *int       { return &v }
func strp(s string) *string { return &s }

func TestSubmitGuessScoresAndAdvances(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SubmitGuess(context.Background(), SubmitGuessRequest{
		SessionPhotoID: "sp-1",
		GuessedYear:    intp(2021),
		GuessedMonth:   intp(6),
		GuessedDay:     intp(20),
		PeopleCoords:   []geometry.TaggedPoint{{X: 8, Y: 8, PersonName: "Аня"}},
	})
	if err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}

	if res.Score != 380 {
		t.Errorf("score = %d, want 380", res.Score)
	}
	if res.IsCombo || res.YearHit || !res.MonthHit || res.DayHit {
		t.Errorf("hit flags = %+v", res)
	}
	if !res.PeopleHitAll {
		t.Error("coordinate inside tolerance band must hit the zone")
	}
	if res.SessionTotalScore != 380 || res.CurrentPhotoIndex != 1 {
		t.Errorf("session state = %d/%d, want 380/1", res.SessionTotalScore, res.CurrentPhotoIndex)
	}
	if res.Finished {
		t.Error("one of two photos answered, session must not finish")
	}

	stored := f.guesses.bySessionPhoto["sp-1"]
	if stored == nil || stored.ScoreDelta != 380 {
		t.Fatalf("guess not persisted correctly: %+v", stored)
	}
	if f.eval.evalCalls != 1 || f.eval.boundCalls != 1 {
		t.Errorf("evaluator calls = %d/%d, want 1/1", f.eval.evalCalls, f.eval.boundCalls)
	}
}

func TestSubmitGuessComboWithSpecial(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SubmitGuess(context.Background(), SubmitGuessRequest{
		SessionPhotoID: "sp-1",
		GuessedYear:    intp(2022),
		GuessedMonth:   intp(6),
		GuessedDay:     intp(15),
		GuessedSpecial: strp(" мост "),
	})
	if err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}
	if !res.IsCombo || !res.SpecialHit {
		t.Errorf("expected combo and special hit, got %+v", res)
	}
	if res.Score != 2000 {
		t.Errorf("score = %d, want 2000", res.Score)
	}
}

func TestSubmitGuessDuplicateRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := SubmitGuessRequest{SessionPhotoID: "sp-1", GuessedYear: intp(2022)}
	if _, err := f.svc.SubmitGuess(ctx, first); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	scoreAfter := f.sessions.sessions["sess-1"].TotalScore
	indexAfter := f.sessions.sessions["sess-1"].CurrentPhotoIndex

	_, err := f.svc.SubmitGuess(ctx, first)
	if !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second submit error = %v, want ErrAlreadyAnswered", err)
	}
	if f.sessions.sessions["sess-1"].TotalScore != scoreAfter ||
		f.sessions.sessions["sess-1"].CurrentPhotoIndex != indexAfter {
		t.Error("rejected duplicate must leave session state untouched")
	}
}

func TestSubmitGuessNoCaptureDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitGuess(context.Background(), SubmitGuessRequest{SessionPhotoID: "sp-undated"})
	if !errors.Is(err, ErrNoCaptureDate) {
		t.Fatalf("error = %v, want ErrNoCaptureDate", err)
	}
	if len(f.guesses.bySessionPhoto) != 0 {
		t.Error("precondition failure must not persist a guess")
	}
	if f.sessions.sessions["sess-1"].CurrentPhotoIndex != 0 {
		t.Error("precondition failure must not advance the session")
	}
}

func TestSubmitGuessUnknownSessionPhoto(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitGuess(context.Background(), SubmitGuessRequest{SessionPhotoID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSubmitGuessValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		req  SubmitGuessRequest
	}{
		{"missing id", SubmitGuessRequest{}},
		{"month too big", SubmitGuessRequest{SessionPhotoID: "sp-1", GuessedMonth: intp(13)}},
		{"month zero", SubmitGuessRequest{SessionPhotoID: "sp-1", GuessedMonth: intp(0)}},
		{"day too big", SubmitGuessRequest{SessionPhotoID: "sp-1", GuessedDay: intp(32)}},
		{"year absurd", SubmitGuessRequest{SessionPhotoID: "sp-1", GuessedYear: intp(12)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.SubmitGuess(ctx, tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSessionFinishesAfterLastGuess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SubmitGuess(ctx, SubmitGuessRequest{SessionPhotoID: "sp-1"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	res, err := f.svc.SubmitGuess(ctx, SubmitGuessRequest{SessionPhotoID: "sp-2"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !res.Finished || res.CurrentPhotoIndex != res.PhotoCount {
		t.Fatalf("expected finished session, got %+v", res)
	}

	s := f.sessions.sessions["sess-1"]
	if s.FinishedAt == nil || !s.FinishedAt.Equal(f.now) {
		t.Errorf("finishedAt = %v, want injected clock %v", s.FinishedAt, f.now)
	}
	if s.DurationSeconds == nil || *s.DurationSeconds != 90 {
		t.Errorf("durationSeconds = %v, want 90", s.DurationSeconds)
	}

	// No further guesses anywhere in the finished session.
	_, err = f.svc.SubmitGuess(ctx, SubmitGuessRequest{SessionPhotoID: "sp-undated"})
	if !errors.Is(err, ErrSessionFinished) {
		t.Errorf("error = %v, want ErrSessionFinished", err)
	}
}

func TestSubmitGuessSurvivesEvaluatorFailure(t *testing.T) {
	f := newFixture(t)
	f.eval.err = errors.New("history store down")

	res, err := f.svc.SubmitGuess(context.Background(), SubmitGuessRequest{SessionPhotoID: "sp-1"})
	if err != nil {
		t.Fatalf("SubmitGuess must succeed despite evaluator failure, got %v", err)
	}
	if len(res.NewAchievements) != 0 {
		t.Error("failed evaluation must not report achievements")
	}
}

func TestSubmitGuessReportsNewAchievements(t *testing.T) {
	f := newFixture(t)
	f.eval.unlock = []*models.Achievement{{ID: "a1", Key: "first-guess", Title: "Первый шаг"}}
	f.eval.hidden = &models.Achievement{ID: "a2", Key: "hidden-тайна", IsHidden: true}

	res, err := f.svc.SubmitGuess(context.Background(), SubmitGuessRequest{
		SessionPhotoID: "sp-1",
		GuessedYear:    intp(2022),
		GuessedMonth:   intp(6),
		GuessedDay:     intp(15),
	})
	if err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}
	if len(res.NewAchievements) != 2 {
		t.Fatalf("got %d new achievements, want 2", len(res.NewAchievements))
	}
	if res.NewAchievements[0].Key != "hidden-тайна" {
		t.Error("photo-bound grant should come first in the feed")
	}
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown mode rejected", func(t *testing.T) {
		if _, err := f.svc.StartSession(ctx, "user-1", "hardcore", 2); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("not enough dated photos", func(t *testing.T) {
		if _, err := f.svc.StartSession(ctx, "user-1", models.ModeFun, 10); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("creates ordered session", func(t *testing.T) {
		res, err := f.svc.StartSession(ctx, "user-1", models.ModeFun, 2)
		if err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		if res.Session.PhotoCount != 2 || res.Session.CurrentPhotoIndex != 0 || res.Session.TotalScore != 0 {
			t.Errorf("fresh session state = %+v", res.Session)
		}
		if !res.Session.CreatedAt.Equal(f.now) {
			t.Error("session must use the injected clock")
		}
		for i, sp := range res.SessionPhotos {
			if sp.Position != i {
				t.Errorf("position %d at index %d", sp.Position, i)
			}
		}
	})
}

func TestGetHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := "Новгород"
	f.photos.photos["photo-1"].Location = &loc

	t.Run("location", func(t *testing.T) {
		hint, err := f.svc.GetHint(ctx, "photo-1", HintLocation)
		if err != nil {
			t.Fatalf("GetHint: %v", err)
		}
		if hint != "Название места начинается на «Н»" {
			t.Errorf("hint = %q", hint)
		}
	})

	t.Run("date", func(t *testing.T) {
		hint, err := f.svc.GetHint(ctx, "photo-1", HintDate)
		if err != nil {
			t.Fatalf("GetHint: %v", err)
		}
		if hint != "Фотография сделана в 2022 году" {
			t.Errorf("hint = %q", hint)
		}
	})

	t.Run("people", func(t *testing.T) {
		hint, err := f.svc.GetHint(ctx, "photo-1", HintPeople)
		if err != nil {
			t.Fatalf("GetHint: %v", err)
		}
		if hint != "На фотографии отмечены: Аня" {
			t.Errorf("hint = %q", hint)
		}
	})

	t.Run("people with no zones", func(t *testing.T) {
		hint, err := f.svc.GetHint(ctx, "photo-2", HintPeople)
		if err != nil {
			t.Fatalf("GetHint: %v", err)
		}
		if hint != "На этой фотографии нет отмеченных людей" {
			t.Errorf("hint = %q", hint)
		}
	})

	t.Run("date hint on undated photo", func(t *testing.T) {
		if _, err := f.svc.GetHint(ctx, "undated", HintDate); !errors.Is(err, ErrNoCaptureDate) {
			t.Errorf("error = %v, want ErrNoCaptureDate", err)
		}
	})

	t.Run("location hint without location", func(t *testing.T) {
		if _, err := f.svc.GetHint(ctx, "photo-2", HintLocation); !errors.Is(err, ErrHintUnavailable) {
			t.Errorf("error = %v, want ErrHintUnavailable", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := f.svc.GetHint(ctx, "photo-1", "exif"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestScoreClassicRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := "Новгород"
	f.photos.photos["photo-1"].Location = &loc

	t.Run("scores without persisting", func(t *testing.T) {
		res, err := f.svc.ScoreClassicRound(ctx, ClassicRoundRequest{
			PhotoID:         "photo-1",
			GuessedLocation: "новгород",
			GuessedYear:     intp(2022),
			GuessedMonth:    intp(6),
			GuessedDay:      intp(15),
			GuessedPeople:   []string{"аня"},
			ElapsedSeconds:  300,
			Mode:            models.ModeRanked,
		})
		if err != nil {
			t.Fatalf("ScoreClassicRound: %v", err)
		}
		// 400 location + 300 year + 200 month + 150 day + 300 people, no time bonus.
		if res.Score != 1350 {
			t.Errorf("score = %d, want 1350", res.Score)
		}
		if !res.YearHit || !res.MonthHit || !res.DayHit {
			t.Errorf("hit flags = %+v", res)
		}
		if len(f.guesses.bySessionPhoto) != 0 {
			t.Error("classic scoring must not persist anything")
		}
	})

	t.Run("undated photo rejected", func(t *testing.T) {
		_, err := f.svc.ScoreClassicRound(ctx, ClassicRoundRequest{PhotoID: "undated", Mode: models.ModeFun})
		if !errors.Is(err, ErrNoCaptureDate) {
			t.Errorf("error = %v, want ErrNoCaptureDate", err)
		}
	})

	t.Run("bad mode rejected", func(t *testing.T) {
		_, err := f.svc.ScoreClassicRound(ctx, ClassicRoundRequest{PhotoID: "photo-1", Mode: "x"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}
