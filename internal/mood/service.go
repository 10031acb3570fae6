package mood

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidLevel indicates a mood level outside the 1..5 scale.
var ErrInvalidLevel = errors.New("mood level must be between 1 and 5")

// Service manages mood check-ins.
type Service struct {
	repo Repository
}

// NewService creates a mood service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a manual check-in. A second check-in on the same day replaces
// the first instead of inserting a duplicate.
func (s *Service) Record(ctx context.Context, userID string, level int, note string) (Mood, error) {
	if level < MinLevel || level > MaxLevel {
		return Mood{}, ErrInvalidLevel
	}
	m := Mood{
		ID:        uuid.NewString(),
		UserID:    userID,
		Level:     level,
		Note:      note,
		Source:    SourceManual,
		CreatedAt: time.Now().UTC(),
	}
	return s.repo.UpsertToday(ctx, m)
}

// RecordFromAssistant stores a mood captured by a chat tool call.
func (s *Service) RecordFromAssistant(ctx context.Context, userID string, level int, note string) (Mood, error) {
	if level < MinLevel || level > MaxLevel {
		return Mood{}, ErrInvalidLevel
	}
	m := Mood{
		ID:        uuid.NewString(),
		UserID:    userID,
		Level:     level,
		Note:      note,
		Source:    SourceAssistant,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return Mood{}, err
	}
	return m, nil
}

// Recent lists the user's check-ins over the last `days` days, newest first.
func (s *Service) Recent(ctx context.Context, userID string, days int) ([]Mood, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.repo.Recent(ctx, userID, since)
}

// Average returns the mean level over the last 7 days, or 0 with false when
// there are no check-ins.
func (s *Service) Average(ctx context.Context, userID string) (float64, bool, error) {
	moods, err := s.Recent(ctx, userID, 7)
	if err != nil {
		return 0, false, err
	}
	if len(moods) == 0 {
		return 0, false, nil
	}
	var sum int
	for _, m := range moods {
		sum += m.Level
	}
	return float64(sum) / float64(len(moods)), true, nil
}
