package content

import (
	"context"
	"testing"
	"time"
)

func TestListActiveFiltersAndSorts(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Now().UTC()

	repo.Seed(Item{ID: "a", Title: "Respirazione del mattino", Category: "relazioni", Active: true, CreatedAt: now.Add(-2 * time.Hour)})
	repo.Seed(Item{ID: "b", Title: "Nutrizione intuitiva", Category: "sport", Active: true, CreatedAt: now.Add(-time.Hour)})
	repo.Seed(Item{ID: "c", Title: "Archivio", Category: "sport", Active: false, CreatedAt: now})

	all, err := repo.ListActive(context.Background(), "")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 active items, got %d", len(all))
	}
	if all[0].ID != "b" {
		t.Fatalf("expected newest first, got %s", all[0].ID)
	}

	sport, err := repo.ListActive(context.Background(), "sport")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(sport) != 1 || sport[0].ID != "b" {
		t.Fatalf("expected only the active sport item, got %+v", sport)
	}
}
