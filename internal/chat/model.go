package chat

import "time"

// Message roles on the gateway wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation groups the messages of one assistant thread.
type Conversation struct {
	ID        string
	UserID    string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one persisted turn of a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// Followup is a check-in the assistant scheduled for a later date.
type Followup struct {
	ID           string
	UserID       string
	Topic        string
	Context      string
	FollowupDate string
	Completed    bool
	CreatedAt    time.Time
}
