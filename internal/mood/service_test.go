package mood

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRecordSameDayReplaces(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.Record(ctx, userID, 2, "rough morning")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.Record(ctx, userID, 4, "better now"); err != nil {
		t.Fatalf("record again: %v", err)
	}

	moods, err := svc.Recent(ctx, userID, 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(moods) != 1 {
		t.Fatalf("expected one check-in for today, got %d", len(moods))
	}
	if moods[0].ID != first.ID || moods[0].Level != 4 {
		t.Fatalf("expected replaced check-in at level 4, got %+v", moods[0])
	}
}

func TestRecordRejectsOutOfRangeLevel(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	for _, level := range []int{0, 6, -1} {
		if _, err := svc.Record(context.Background(), uuid.NewString(), level, ""); !errors.Is(err, ErrInvalidLevel) {
			t.Fatalf("level %d: expected ErrInvalidLevel, got %v", level, err)
		}
	}
}

func TestAssistantMoodsDoNotReplaceManual(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.Record(ctx, userID, 3, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.RecordFromAssistant(ctx, userID, 1, "shared during chat"); err != nil {
		t.Fatalf("assistant record: %v", err)
	}

	moods, err := svc.Recent(ctx, userID, 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(moods) != 2 {
		t.Fatalf("expected two check-ins, got %d", len(moods))
	}
}

func TestAverage(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	userID := uuid.NewString()

	_, ok, err := svc.Average(ctx, userID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if ok {
		t.Fatal("expected no average without check-ins")
	}

	if _, err := svc.Record(ctx, userID, 2, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.RecordFromAssistant(ctx, userID, 4, ""); err != nil {
		t.Fatalf("assistant record: %v", err)
	}

	avg, ok, err := svc.Average(ctx, userID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if !ok || avg != 3 {
		t.Fatalf("expected average 3, got %v (ok=%v)", avg, ok)
	}
}
