package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the name shown to other trip members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized or logged.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user with the creation time stamped. The ID is
// assigned by the store on insert.
func NewUser(email, displayName, passwordHash string) *User {
	return &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
