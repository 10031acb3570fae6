package chat

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
	// ErrConversationNotFound indicates the conversation id does not belong
	// to the user.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrFollowupNotFound indicates the followup id does not belong to the
	// user.
	ErrFollowupNotFound = errors.New("followup not found")
)

// Repository persists conversations, messages and followups.
type Repository interface {
	CreateConversation(ctx context.Context, c Conversation) error
	GetConversation(ctx context.Context, userID, id string) (Conversation, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error
	AppendMessage(ctx context.Context, m Message) error
	Messages(ctx context.Context, conversationID string, limit int) ([]Message, error)
	CreateFollowup(ctx context.Context, f Followup) error
	DueFollowups(ctx context.Context, userID string, before string) ([]Followup, error)
	CompleteFollowup(ctx context.Context, userID, id string) error
}

// PostgresRepository backs Repository with pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed chat repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateConversation(ctx context.Context, c Conversation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO conversations (id, user_id, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.UserID, c.Category, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetConversation(ctx context.Context, userID, id string) (Conversation, error) {
	var c Conversation
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, category, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&c.ID, &c.UserID, &c.Category, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("select conversation: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) TouchConversation(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, m Message) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Messages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	// Oldest first for prompt assembly.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *PostgresRepository) CreateFollowup(ctx context.Context, f Followup) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO followups (id, user_id, topic, context, followup_date, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.UserID, f.Topic, f.Context, f.FollowupDate, f.Completed, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert followup: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DueFollowups(ctx context.Context, userID string, before string) ([]Followup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, topic, context, followup_date, completed, created_at
		FROM followups
		WHERE user_id = $1 AND completed = FALSE AND followup_date <= $2
		ORDER BY followup_date DESC`,
		userID, before)
	if err != nil {
		return nil, fmt.Errorf("select followups: %w", err)
	}
	defer rows.Close()

	var out []Followup
	for rows.Next() {
		var f Followup
		if err := rows.Scan(&f.ID, &f.UserID, &f.Topic, &f.Context, &f.FollowupDate, &f.Completed, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan followup: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate followups: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) CompleteFollowup(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE followups SET completed = TRUE
		WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("complete followup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFollowupNotFound
	}
	return nil
}

// MemoryRepository keeps chat state in process memory. Used when no
// database is configured, and in tests.
type MemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]Conversation
	messages      map[string][]Message
	followups     map[string]Followup
}

// NewMemoryRepository constructs an empty in-memory chat repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: make(map[string]Conversation),
		messages:      make(map[string][]Message),
		followups:     make(map[string]Followup),
	}
}

func (r *MemoryRepository) CreateConversation(_ context.Context, c Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[c.ID] = c
	return nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, userID, id string) (Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok || c.UserID != userID {
		return Conversation{}, ErrConversationNotFound
	}
	return c, nil
}

func (r *MemoryRepository) TouchConversation(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		c.UpdatedAt = at
		r.conversations[id] = c
	}
	return nil
}

func (r *MemoryRepository) AppendMessage(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return nil
}

func (r *MemoryRepository) Messages(_ context.Context, conversationID string, limit int) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.messages[conversationID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Message, len(all))
	copy(out, all)
	return out, nil
}

func (r *MemoryRepository) CreateFollowup(_ context.Context, f Followup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.followups[f.ID] = f
	return nil
}

func (r *MemoryRepository) DueFollowups(_ context.Context, userID string, before string) ([]Followup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Followup
	for _, f := range r.followups {
		if f.UserID == userID && !f.Completed && f.FollowupDate <= before {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FollowupDate > out[j].FollowupDate })
	return out, nil
}

func (r *MemoryRepository) CompleteFollowup(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.followups[id]
	if !ok || f.UserID != userID {
		return ErrFollowupNotFound
	}
	f.Completed = true
	r.followups[id] = f
	return nil
}
