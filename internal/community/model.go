package community

import "time"

// Reaction kinds mirroring the three feed buttons.
const (
	ReactionInspire = "inspire"
	ReactionHelp    = "help"
	ReactionSmile   = "smile"
)

// Post is one feed entry.
type Post struct {
	ID            string
	UserID        string
	Category      string
	Type          string
	Content       string
	CommentsCount int
	Reactions     map[string]int
	CreatedAt     time.Time
}

// Comment is one reply under a post.
type Comment struct {
	ID        string
	PostID    string
	UserID    string
	Content   string
	CreatedAt time.Time
}

// ValidReaction reports whether kind is one of the feed reactions.
func ValidReaction(kind string) bool {
	switch kind {
	case ReactionInspire, ReactionHelp, ReactionSmile:
		return true
	default:
		return false
	}
}
