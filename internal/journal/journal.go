package journal

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the entry does not exist or belongs to another user.
var ErrNotFound = errors.New("journal entry not found")

// Entry is a free-form journal note.
type Entry struct {
	ID        string
	UserID    string
	Type      string
	Content   string
	CreatedAt time.Time
}

// Repository persists journal entries.
type Repository interface {
	Create(ctx context.Context, e Entry) error
	List(ctx context.Context, userID string, limit int) ([]Entry, error)
	Delete(ctx context.Context, userID, id string) error
}

// PostgresRepository stores entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed journal repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an entry.
func (r *PostgresRepository) Create(ctx context.Context, e Entry) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(e.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO journal_entries (id, user_id, type, content, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, uid, e.Type, e.Content, e.CreatedAt.UTC())
	return err
}

// List returns the user's entries, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, COALESCE(type, ''), content, created_at
        FROM journal_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			id      uuid.UUID
			created time.Time
		)
		if err := rows.Scan(&id, &e.Type, &e.Content, &created); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.UserID = userID
		e.CreatedAt = created.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the entry if it belongs to the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	eid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, eid, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryRepository constructs an in-memory repository for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]Entry)}
}

func (r *memoryRepository) Create(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID] = e
	return nil
}

func (r *memoryRepository) List(_ context.Context, userID string, limit int) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}
