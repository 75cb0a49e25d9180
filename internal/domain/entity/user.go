package entity

import "time"

// Role is an authorization role. This service reads it but never changes it;
// every account created here starts as RoleUser.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never plaintext, and must not appear in any
// response body.
type User struct {
	ID           string
	Name         string
	Email        string
	Password     string
	IsActivated  bool
	ProfilePhoto string // URL of the uploaded photo; empty until first upload
	Role         Role
	Addresses    []Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
