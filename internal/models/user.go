package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Receipts and split sessions are
// owned by users; nothing in the split computation reads user state.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// Phone is the user's phone number, kept from sign-up. Optional and
	// not used as a credential.
	Phone string `json:"phone,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password. Never
	// serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`
}

// NewUser creates a user with a generated ID and creation timestamp.
func NewUser(email, name, phone, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
