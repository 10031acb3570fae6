package community

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyContent indicates a post or comment without text.
	ErrEmptyContent = errors.New("content is required")

	// ErrInvalidReaction indicates an unknown reaction kind.
	ErrInvalidReaction = errors.New("unknown reaction")
)

const defaultFeedLimit = 50

// Service implements the community feed.
type Service struct {
	repo Repository
}

// NewService constructs a community service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreatePost publishes a new feed entry.
func (s *Service) CreatePost(ctx context.Context, userID, category, postType, content string) (Post, error) {
	if content == "" {
		return Post{}, ErrEmptyContent
	}
	p := Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Type:      postType,
		Content:   content,
		Reactions: map[string]int{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreatePost(ctx, p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// Posts lists the feed newest-first, optionally filtered by category.
func (s *Service) Posts(ctx context.Context, category string) ([]Post, error) {
	return s.repo.ListPosts(ctx, category, defaultFeedLimit)
}

// Comment adds a reply under a post.
func (s *Service) Comment(ctx context.Context, userID, postID, content string) (Comment, error) {
	if content == "" {
		return Comment{}, ErrEmptyContent
	}
	c := Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return Comment{}, err
	}
	return c, nil
}

// Comments lists the replies under a post, oldest first.
func (s *Service) Comments(ctx context.Context, postID string) ([]Comment, error) {
	return s.repo.ListComments(ctx, postID)
}

// React toggles the user's reaction and reports whether it is now active.
func (s *Service) React(ctx context.Context, userID, postID, kind string) (bool, error) {
	if !ValidReaction(kind) {
		return false, ErrInvalidReaction
	}
	return s.repo.ToggleReaction(ctx, postID, userID, kind)
}
