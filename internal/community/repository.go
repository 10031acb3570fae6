package community

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPostNotFound indicates the post id does not exist.
var ErrPostNotFound = errors.New("post not found")

// Repository persists the community feed.
type Repository interface {
	CreatePost(ctx context.Context, p Post) error
	GetPost(ctx context.Context, id string) (Post, error)
	ListPosts(ctx context.Context, category string, limit int) ([]Post, error)
	CreateComment(ctx context.Context, c Comment) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	// ToggleReaction adds the reaction, or removes it when the same user
	// already reacted with the same kind. Reports whether the reaction is
	// now present.
	ToggleReaction(ctx context.Context, postID, userID, kind string) (bool, error)
}

// PostgresRepository backs Repository with pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed community repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePost(ctx context.Context, p Post) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO posts (id, user_id, category, type, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Category, p.Type, p.Content, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, category, type, content, created_at
		FROM posts WHERE id = $1`,
		id).Scan(&p.ID, &p.UserID, &p.Category, &p.Type, &p.Content, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("select post: %w", err)
	}
	return r.decorate(ctx, p)
}

func (r *PostgresRepository) ListPosts(ctx context.Context, category string, limit int) ([]Post, error) {
	query := `
		SELECT id, user_id, category, type, content, created_at
		FROM posts`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Category, &p.Type, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	for i := range out {
		if out[i], err = r.decorate(ctx, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decorate fills the comment count and per-kind reaction counts.
func (r *PostgresRepository) decorate(ctx context.Context, p Post) (Post, error) {
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1`, p.ID).Scan(&p.CommentsCount)
	if err != nil {
		return Post{}, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT kind, COUNT(*) FROM post_reactions
		WHERE post_id = $1 GROUP BY kind`, p.ID)
	if err != nil {
		return Post{}, fmt.Errorf("count reactions: %w", err)
	}
	defer rows.Close()

	p.Reactions = map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return Post{}, fmt.Errorf("scan reaction count: %w", err)
		}
		p.Reactions[kind] = n
	}
	if err := rows.Err(); err != nil {
		return Post{}, fmt.Errorf("iterate reaction counts: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) CreateComment(ctx context.Context, c Comment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO comments (id, post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.PostID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, user_id, content, created_at
		FROM comments WHERE post_id = $1
		ORDER BY created_at ASC`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ToggleReaction(ctx context.Context, postID, userID, kind string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM post_reactions
		WHERE post_id = $1 AND user_id = $2 AND kind = $3`,
		postID, userID, kind)
	if err != nil {
		return false, fmt.Errorf("delete reaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO post_reactions (post_id, user_id, kind, created_at)
		VALUES ($1, $2, $3, $4)`,
		postID, userID, kind, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert reaction: %w", err)
	}
	return true, nil
}

type reactionKey struct {
	postID string
	userID string
	kind   string
}

// MemoryRepository keeps the feed in process memory. Used when no database
// is configured, and in tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	posts     map[string]Post
	comments  map[string][]Comment
	reactions map[reactionKey]struct{}
}

// NewMemoryRepository constructs an empty in-memory community repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:     make(map[string]Post),
		comments:  make(map[string][]Comment),
		reactions: make(map[reactionKey]struct{}),
	}
}

func (r *MemoryRepository) CreatePost(_ context.Context, p Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p
	return nil
}

func (r *MemoryRepository) GetPost(_ context.Context, id string) (Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return r.decorate(p), nil
}

func (r *MemoryRepository) ListPosts(_ context.Context, category string, limit int) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Post
	for _, p := range r.posts {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, r.decorate(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) decorate(p Post) Post {
	p.CommentsCount = len(r.comments[p.ID])
	p.Reactions = map[string]int{}
	for key := range r.reactions {
		if key.postID == p.ID {
			p.Reactions[key.kind]++
		}
	}
	return p
}

func (r *MemoryRepository) CreateComment(_ context.Context, c Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[c.PostID]; !ok {
		return ErrPostNotFound
	}
	r.comments[c.PostID] = append(r.comments[c.PostID], c)
	return nil
}

func (r *MemoryRepository) ListComments(_ context.Context, postID string) ([]Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Comment, len(r.comments[postID]))
	copy(out, r.comments[postID])
	return out, nil
}

func (r *MemoryRepository) ToggleReaction(_ context.Context, postID, userID, kind string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[postID]; !ok {
		return false, ErrPostNotFound
	}
	key := reactionKey{postID: postID, userID: userID, kind: kind}
	if _, ok := r.reactions[key]; ok {
		delete(r.reactions, key)
		return false, nil
	}
	r.reactions[key] = struct{}{}
	return true, nil
}
