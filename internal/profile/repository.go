package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists wellness profiles.
type Repository interface {
	// Get returns the user's profile, creating an empty row on first access.
	Get(ctx context.Context, userID string) (Profile, error)
	Update(ctx context.Context, userID string, in UpdateInput) (Profile, error)
}

// PostgresRepository stores profiles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the profile row, upserting an empty one when missing.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (Profile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Profile{}, err
	}
	if _, err := r.db.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, uid); err != nil {
		return Profile{}, err
	}
	return r.read(ctx, uid, userID)
}

// Update merges the provided fields into the profile row.
func (r *PostgresRepository) Update(ctx context.Context, userID string, in UpdateInput) (Profile, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	merged := merge(current, in)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return Profile{}, err
	}
	_, err = r.db.Exec(ctx, `UPDATE profiles SET
        name = $2, interests = $3, goals = $4, fitness_level = $5, skin_type = $6,
        lifestyle = $7, birth_year = $8, onboarding_completed = $9, updated_at = now()
        WHERE user_id = $1`,
		uid, merged.Name, merged.Interests, merged.Goals, merged.FitnessLevel,
		merged.SkinType, merged.Lifestyle, nullableInt(merged.BirthYear), merged.OnboardingCompleted)
	if err != nil {
		return Profile{}, err
	}
	return r.read(ctx, uid, userID)
}

func (r *PostgresRepository) read(ctx context.Context, uid uuid.UUID, userID string) (Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT COALESCE(name, ''), COALESCE(interests, '{}'), COALESCE(goals, '{}'),
        COALESCE(fitness_level, ''), COALESCE(skin_type, ''), COALESCE(lifestyle, ''),
        COALESCE(birth_year, 0), onboarding_completed, updated_at
        FROM profiles WHERE user_id = $1`, uid)

	p := Profile{UserID: userID}
	var updatedAt time.Time
	if err := row.Scan(&p.Name, &p.Interests, &p.Goals, &p.FitnessLevel, &p.SkinType,
		&p.Lifestyle, &p.BirthYear, &p.OnboardingCompleted, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{UserID: userID}, nil
		}
		return Profile{}, err
	}
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository constructs an in-memory repository for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = Profile{UserID: userID, UpdatedAt: time.Now().UTC()}
		r.profiles[userID] = p
	}
	return p, nil
}

func (r *memoryRepository) Update(_ context.Context, userID string, in UpdateInput) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = Profile{UserID: userID}
	}
	p = merge(p, in)
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return p, nil
}
