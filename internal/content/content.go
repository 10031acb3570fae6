package content

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Item is one piece of curated daily content.
type Item struct {
	ID           string
	Title        string
	Description  string
	Category     string
	ContentType  string
	ContentURL   string
	ThumbnailURL string
	Duration     string
	Active       bool
	CreatedAt    time.Time
}

// Repository reads the curated content catalog.
type Repository interface {
	ListActive(ctx context.Context, category string) ([]Item, error)
}

// PostgresRepository backs Repository with pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed content repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListActive(ctx context.Context, category string) ([]Item, error) {
	query := `
		SELECT id, title, description, category, content_type,
		       COALESCE(content_url, ''), COALESCE(thumbnail_url, ''), duration, active, created_at
		FROM daily_content
		WHERE active = TRUE`
	args := []any{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select daily content: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.Category, &it.ContentType,
			&it.ContentURL, &it.ThumbnailURL, &it.Duration, &it.Active, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan daily content: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily content: %w", err)
	}
	return out, nil
}

// MemoryRepository serves a fixed catalog from memory. Used when no database
// is configured, and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewMemoryRepository constructs an empty in-memory content repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]Item)}
}

// Seed adds an item to the catalog.
func (r *MemoryRepository) Seed(it Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
}

func (r *MemoryRepository) ListActive(_ context.Context, category string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Item
	for _, it := range r.items {
		if !it.Active {
			continue
		}
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
