package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bid is an immutable auction bid. At most one bid per artwork carries
// IsWinning = true at any time, and that bid holds the maximum amount.
type Bid struct {
	ID        uuid.UUID `json:"id"`
	ArtworkID uuid.UUID `json:"artwork_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    int64     `json:"amount"` // cents
	IsWinning bool      `json:"is_winning"`
	CreatedAt time.Time `json:"created_at"`
}
