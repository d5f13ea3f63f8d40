package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered trip participant.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the login identifier (unique).
	Email string

	// DisplayName is the nickname shown to other trip members.
	DisplayName string

	// AvatarURL references the profile picture (usually a blob key or URL).
	AvatarURL string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// TelegramChatID is the linked chat for notifications. Zero means not linked.
	TelegramChatID int64

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, avatarURL, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		AvatarURL:    avatarURL,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
