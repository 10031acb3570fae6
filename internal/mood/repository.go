package mood

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists mood check-ins.
type Repository interface {
	// UpsertToday replaces the user's manual check-in for m.CreatedAt's day
	// if one exists, otherwise inserts. Assistant-sourced moods always insert.
	UpsertToday(ctx context.Context, m Mood) (Mood, error)
	Insert(ctx context.Context, m Mood) error
	Recent(ctx context.Context, userID string, since time.Time) ([]Mood, error)
}

// PostgresRepository stores moods in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed mood repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertToday replaces today's manual check-in or inserts a new row.
func (r *PostgresRepository) UpsertToday(ctx context.Context, m Mood) (Mood, error) {
	uid, err := uuid.Parse(m.UserID)
	if err != nil {
		return Mood{}, err
	}

	day := m.CreatedAt.UTC().Truncate(24 * time.Hour)
	cmd, err := r.db.Exec(ctx, `UPDATE moods SET mood_level = $3, note = $4
        WHERE user_id = $1 AND source = $5 AND created_at >= $2 AND created_at < $2 + interval '1 day'`,
		uid, day, m.Level, m.Note, SourceManual)
	if err != nil {
		return Mood{}, err
	}
	if cmd.RowsAffected() > 0 {
		return m, nil
	}

	if err := r.insert(ctx, uid, m); err != nil {
		return Mood{}, err
	}
	return m, nil
}

// Insert stores a mood row unconditionally.
func (r *PostgresRepository) Insert(ctx context.Context, m Mood) error {
	uid, err := uuid.Parse(m.UserID)
	if err != nil {
		return err
	}
	return r.insert(ctx, uid, m)
}

func (r *PostgresRepository) insert(ctx context.Context, uid uuid.UUID, m Mood) error {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO moods (id, user_id, mood_level, note, source, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, uid, m.Level, m.Note, m.Source, m.CreatedAt.UTC())
	return err
}

// Recent lists moods since the given time, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, userID string, since time.Time) ([]Mood, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, mood_level, COALESCE(note, ''), COALESCE(source, 'manual'), created_at
        FROM moods WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at DESC`, uid, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mood
	for rows.Next() {
		var (
			m       Mood
			id      uuid.UUID
			created time.Time
		)
		if err := rows.Scan(&id, &m.Level, &m.Note, &m.Source, &created); err != nil {
			return nil, err
		}
		m.ID = id.String()
		m.UserID = userID
		m.CreatedAt = created.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

type memoryRepository struct {
	mu    sync.RWMutex
	moods map[string][]Mood
}

// NewMemoryRepository constructs an in-memory repository for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{moods: make(map[string][]Mood)}
}

func (r *memoryRepository) UpsertToday(_ context.Context, m Mood) (Mood, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := m.CreatedAt.UTC().Truncate(24 * time.Hour)
	list := r.moods[m.UserID]
	for i, existing := range list {
		if existing.Source != SourceManual {
			continue
		}
		if existing.CreatedAt.UTC().Truncate(24 * time.Hour).Equal(day) {
			existing.Level = m.Level
			existing.Note = m.Note
			list[i] = existing
			return existing, nil
		}
	}
	r.moods[m.UserID] = append(list, m)
	return m, nil
}

func (r *memoryRepository) Insert(_ context.Context, m Mood) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moods[m.UserID] = append(r.moods[m.UserID], m)
	return nil
}

func (r *memoryRepository) Recent(_ context.Context, userID string, since time.Time) ([]Mood, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Mood
	for _, m := range r.moods[userID] {
		if !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
