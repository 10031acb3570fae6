package mood

import "time"

// Mood sources. Assistant-recorded moods come from chat tool calls.
const (
	SourceManual    = "manual"
	SourceAssistant = "assistant"
)

// MinLevel and MaxLevel bound the 5-point mood scale.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Mood is a single check-in on the 1..5 scale.
type Mood struct {
	ID        string
	UserID    string
	Level     int
	Note      string
	Source    string
	CreatedAt time.Time
}
