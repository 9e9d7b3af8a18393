package models

import "time"

// User is a dashboard account.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
