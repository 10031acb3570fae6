package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrMentorNotFound indicates an unknown mentor identifier.
	ErrMentorNotFound = errors.New("mentor not found")

	// ErrBookingNotFound indicates the booking does not exist or belongs to
	// another user.
	ErrBookingNotFound = errors.New("booking not found")
)

// Repository persists mentors and bookings.
type Repository interface {
	ListMentors(ctx context.Context, category, search string) ([]Mentor, error)
	GetMentor(ctx context.Context, id string) (Mentor, error)
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, userID, id string) (Booking, error)
	ListBookings(ctx context.Context, userID string) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, userID, id, status string) error
}

// PostgresRepository stores mentors and bookings in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed booking repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListMentors returns mentors for a category, optionally filtered by a text
// search over name, specialty and bio.
func (r *PostgresRepository) ListMentors(ctx context.Context, category, search string) ([]Mentor, error) {
	query := `SELECT id, name, specialty, category, COALESCE(bio, ''), COALESCE(avatar_emoji, ''),
        price_per_session_cents, COALESCE(rating, 0), COALESCE(reviews_count, 0), COALESCE(verified, false)
        FROM mentors WHERE ($1 = '' OR category = $1)
        AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR specialty ILIKE '%' || $2 || '%' OR bio ILIKE '%' || $2 || '%')
        ORDER BY rating DESC NULLS LAST, name`
	rows, err := r.db.Query(ctx, query, category, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mentor
	for rows.Next() {
		var (
			m  Mentor
			id uuid.UUID
		)
		if err := rows.Scan(&id, &m.Name, &m.Specialty, &m.Category, &m.Bio, &m.AvatarEmoji,
			&m.PricePerSessionCents, &m.Rating, &m.ReviewsCount, &m.Verified); err != nil {
			return nil, err
		}
		m.ID = id.String()
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMentor fetches a mentor by identifier.
func (r *PostgresRepository) GetMentor(ctx context.Context, id string) (Mentor, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return Mentor{}, ErrMentorNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, specialty, category, COALESCE(bio, ''), COALESCE(avatar_emoji, ''),
        price_per_session_cents, COALESCE(rating, 0), COALESCE(reviews_count, 0), COALESCE(verified, false)
        FROM mentors WHERE id = $1`, mid)
	var (
		m   Mentor
		mID uuid.UUID
	)
	if err := row.Scan(&mID, &m.Name, &m.Specialty, &m.Category, &m.Bio, &m.AvatarEmoji,
		&m.PricePerSessionCents, &m.Rating, &m.ReviewsCount, &m.Verified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Mentor{}, ErrMentorNotFound
		}
		return Mentor{}, err
	}
	m.ID = mID.String()
	return m, nil
}

// CreateBooking inserts a booking row.
func (r *PostgresRepository) CreateBooking(ctx context.Context, b Booking) error {
	bid, err := uuid.Parse(b.ID)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(b.UserID)
	if err != nil {
		return err
	}
	mid, err := uuid.Parse(b.MentorID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO bookings (id, user_id, mentor_id, service_name, booking_date, booking_time, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bid, uid, mid, b.ServiceName, b.Date, b.Time, b.Status, b.CreatedAt.UTC())
	return err
}

// GetBooking fetches one of the user's bookings.
func (r *PostgresRepository) GetBooking(ctx context.Context, userID, id string) (Booking, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Booking{}, err
	}
	bid, err := uuid.Parse(id)
	if err != nil {
		return Booking{}, ErrBookingNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, mentor_id, service_name, booking_date, booking_time, status, created_at
        FROM bookings WHERE id = $1 AND user_id = $2`, bid, uid)
	return scanBooking(row, userID)
}

// ListBookings returns the user's bookings, newest first.
func (r *PostgresRepository) ListBookings(ctx context.Context, userID string) ([]Booking, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, mentor_id, service_name, booking_date, booking_time, status, created_at
        FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBookingStatus changes the status of one of the user's bookings.
func (r *PostgresRepository) UpdateBookingStatus(ctx context.Context, userID, id, status string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	bid, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status = $3, updated_at = now()
        WHERE id = $1 AND user_id = $2`, bid, uid, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func scanBooking(row pgx.Row, userID string) (Booking, error) {
	var (
		b       Booking
		id      uuid.UUID
		mid     uuid.UUID
		created time.Time
	)
	if err := row.Scan(&id, &mid, &b.ServiceName, &b.Date, &b.Time, &b.Status, &created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}
	b.ID = id.String()
	b.UserID = userID
	b.MentorID = mid.String()
	b.CreatedAt = created.UTC()
	return b, nil
}

// NewMemoryRepository constructs an in-memory repository for dev and tests.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mentors:  make(map[string]Mentor),
		bookings: make(map[string]Booking),
	}
}

// MemoryRepository keeps mentors and bookings in maps. Exported so tests can
// seed mentors directly.
type MemoryRepository struct {
	mu       sync.RWMutex
	mentors  map[string]Mentor
	bookings map[string]Booking
}

// SeedMentor inserts a mentor for dev and tests.
func (r *MemoryRepository) SeedMentor(m Mentor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mentors[m.ID] = m
}

func (r *MemoryRepository) ListMentors(_ context.Context, category, search string) ([]Mentor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(search)
	var out []Mentor
	for _, m := range r.mentors {
		if category != "" && m.Category != category {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(m.Name + " " + m.Specialty + " " + m.Bio)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryRepository) GetMentor(_ context.Context, id string) (Mentor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mentors[id]
	if !ok {
		return Mentor{}, ErrMentorNotFound
	}
	return m, nil
}

func (r *MemoryRepository) CreateBooking(_ context.Context, b Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = b
	return nil
}

func (r *MemoryRepository) GetBooking(_ context.Context, userID, id string) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok || b.UserID != userID {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (r *MemoryRepository) ListBookings(_ context.Context, userID string) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) UpdateBookingStatus(_ context.Context, userID, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.UserID != userID {
		return ErrBookingNotFound
	}
	b.Status = status
	r.bookings[id] = b
	return nil
}
