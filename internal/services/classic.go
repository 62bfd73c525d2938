package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"photo-guess-backend/internal/geometry"
	"photo-guess-backend/internal/models"
	"photo-guess-backend/internal/scoring"
)

// ClassicRoundRequest is one whole-round guess for the classic scorer:
// date plus location, people names, elapsed time and hint usage.
type ClassicRoundRequest struct {
	PhotoID         string   `json:"photo_id"`
	GuessedLocation string   `json:"guessed_location,omitempty"`
	GuessedYear     *int     `json:"guessed_year,omitempty"`
	GuessedMonth    *int     `json:"guessed_month,omitempty"`
	GuessedDay      *int     `json:"guessed_day,omitempty"`
	GuessedPeople   []string `json:"guessed_people,omitempty"`
	ElapsedSeconds  int      `json:"elapsed_seconds"`
	HintsUsed       int      `json:"hints_used"`
	Mode            string   `json:"mode"`
}

// ClassicRoundResult is the classic scorer's breakdown
type ClassicRoundResult struct {
	YearHit  bool `json:"year_hit"`
	MonthHit bool `json:"month_hit"`
	DayHit   bool `json:"day_hit"`
	Score    int  `json:"score"`
}

// ScoreClassicRound scores a whole-round guess with the classic strategy.
// Nothing is persisted; this entry point serves leaderboard estimates and
// the hint-aware game variant, not live session play.
func (s *GameService) ScoreClassicRound(ctx context.Context, req ClassicRoundRequest) (*ClassicRoundResult, error) {
	if req.PhotoID == "" {
		return nil, fmt.Errorf("photo_id is required: %w", ErrInvalidInput)
	}
	if req.Mode != models.ModeRanked && req.Mode != models.ModeFun {
		return nil, fmt.Errorf("unknown mode %q: %w", req.Mode, ErrInvalidInput)
	}
	if req.ElapsedSeconds < 0 || req.HintsUsed < 0 {
		return nil, fmt.Errorf("negative elapsed time or hint count: %w", ErrInvalidInput)
	}

	photo, err := s.photos.GetByID(ctx, req.PhotoID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if photo.TakenAt == nil {
		return nil, fmt.Errorf("photo %s: %w", photo.ID, ErrNoCaptureDate)
	}

	zones, err := s.photos.GetZones(ctx, photo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}

	location := ""
	if photo.Location != nil {
		location = *photo.Location
	}

	scored := scoring.Classic{}.Score(scoring.Input{
		TakenAt:         *photo.TakenAt,
		GuessedYear:     req.GuessedYear,
		GuessedMonth:    req.GuessedMonth,
		GuessedDay:      req.GuessedDay,
		Location:        location,
		GuessedLocation: req.GuessedLocation,
		People:          distinctPersonNames(zones),
		GuessedPeople:   req.GuessedPeople,
		ElapsedSeconds:  req.ElapsedSeconds,
		HintsUsed:       req.HintsUsed,
		FunMode:         req.Mode == models.ModeFun,
	})

	return &ClassicRoundResult{
		YearHit:  scored.YearHit,
		MonthHit: scored.MonthHit,
		DayHit:   scored.DayHit,
		Score:    scored.Total,
	}, nil
}

// distinctPersonNames returns the unique person names across zones, sorted
// for stable output.
func distinctPersonNames(zones []geometry.Zone) []string {
	seen := make(map[string]bool, len(zones))
	var names []string
	for _, z := range zones {
		key := strings.ToLower(z.PersonName)
		if !seen[key] {
			seen[key] = true
			names = append(names, z.PersonName)
		}
	}
	sort.Strings(names)
	return names
}
