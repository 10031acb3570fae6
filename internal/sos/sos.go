package sos

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrContactNotFound indicates the contact id does not belong to the
	// user.
	ErrContactNotFound = errors.New("emergency contact not found")

	// ErrMissingFields indicates a contact without name or phone.
	ErrMissingFields = errors.New("contact name and phone are required")
)

// Contact is one emergency contact, dialed in priority order.
type Contact struct {
	ID           string
	UserID       string
	Name         string
	Phone        string
	Relationship string
	Priority     int
	CreatedAt    time.Time
}

// UpdateInput carries a partial contact update; nil fields are left
// unchanged.
type UpdateInput struct {
	Name         *string
	Phone        *string
	Relationship *string
	Priority     *int
}

// Repository persists emergency contacts.
type Repository interface {
	Create(ctx context.Context, c Contact) error
	List(ctx context.Context, userID string) ([]Contact, error)
	Get(ctx context.Context, userID, id string) (Contact, error)
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, userID, id string) error
}

// Service validates and stores emergency contacts.
type Service struct {
	repo Repository
}

// NewService constructs an SOS contact service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add stores a new contact.
func (s *Service) Add(ctx context.Context, userID, name, phone, relationship string, priority int) (Contact, error) {
	if name == "" || phone == "" {
		return Contact{}, ErrMissingFields
	}
	c := Contact{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Phone:        phone,
		Relationship: relationship,
		Priority:     priority,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// List returns the user's contacts ordered by priority.
func (s *Service) List(ctx context.Context, userID string) ([]Contact, error) {
	return s.repo.List(ctx, userID)
}

// Update merges the provided fields into an existing contact.
func (s *Service) Update(ctx context.Context, userID, id string, input UpdateInput) (Contact, error) {
	c, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Contact{}, err
	}
	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Phone != nil {
		c.Phone = *input.Phone
	}
	if input.Relationship != nil {
		c.Relationship = *input.Relationship
	}
	if input.Priority != nil {
		c.Priority = *input.Priority
	}
	if c.Name == "" || c.Phone == "" {
		return Contact{}, ErrMissingFields
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// Remove deletes a contact.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// PostgresRepository backs Repository with pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed contact repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c Contact) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sos_contacts (id, user_id, name, phone, relationship, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.Name, c.Phone, c.Relationship, c.Priority, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Contact, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, phone, relationship, priority, created_at
		FROM sos_contacts
		WHERE user_id = $1
		ORDER BY priority ASC, created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Relationship, &c.Priority, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Contact, error) {
	var c Contact
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, phone, relationship, priority, created_at
		FROM sos_contacts
		WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Relationship, &c.Priority, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrContactNotFound
	}
	if err != nil {
		return Contact{}, fmt.Errorf("select contact: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Contact) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sos_contacts
		SET name = $3, phone = $4, relationship = $5, priority = $6
		WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Name, c.Phone, c.Relationship, c.Priority)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sos_contacts WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

// MemoryRepository keeps contacts in process memory. Used when no database
// is configured, and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

// NewMemoryRepository constructs an empty in-memory contact repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{contacts: make(map[string]Contact)}
}

func (r *MemoryRepository) Create(_ context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[c.ID] = c
	return nil
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return Contact{}, ErrContactNotFound
	}
	return c, nil
}

func (r *MemoryRepository) Update(_ context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return ErrContactNotFound
	}
	r.contacts[c.ID] = c
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}
