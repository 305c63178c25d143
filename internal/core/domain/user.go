package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered gallery member. Every user can both create
// (generate) artworks and trade them.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
