package booking

import "time"

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Mentor is a bookable human expert with a fixed per-session price.
type Mentor struct {
	ID                   string
	Name                 string
	Specialty            string
	Category             string
	Bio                  string
	AvatarEmoji          string
	PricePerSessionCents int64
	Rating               float64
	ReviewsCount         int
	Verified             bool
}

// Booking is one scheduled mentor session.
type Booking struct {
	ID          string
	UserID      string
	MentorID    string
	ServiceName string
	Date        string
	Time        string
	Status      string
	CreatedAt   time.Time
}
