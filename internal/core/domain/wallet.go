package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a user's spendable balance in cents. Balance never goes
// negative; LifetimeSales only grows. Both fields are mutated exclusively
// inside a settlement transaction.
type Wallet struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Balance       int64     `json:"balance"`        // cents
	LifetimeSales int64     `json:"lifetime_sales"` // cents, gross of platform fee
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
