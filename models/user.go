package models

import "time"

// User represents a registered account in the system.
// The session token is opaque and doubles as the bearer of identity for
// subsequent requests; it is nil until a cookie has been issued.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	SessionID *string   `json:"session_id,omitempty" db:"session_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateUserRequest represents the request to register a user
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
