package account

import "time"

// Account represents a registered user who can hold a wallet and book sessions.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Credentials is the login/registration request structure.
type Credentials struct {
	Email    string
	Password string
	Name     string
}
