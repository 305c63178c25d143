package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArtworkStatus is the lifecycle state of an artwork.
type ArtworkStatus string

const (
	ArtworkStatusDraft     ArtworkStatus = "draft"
	ArtworkStatusPublished ArtworkStatus = "published"
	ArtworkStatusSold      ArtworkStatus = "sold"
	ArtworkStatusArchived  ArtworkStatus = "archived"
)

// Artwork is a unique, non-fungible gallery item. Owner, listing flags and
// status are mutated only by the settlement engine; sold and archived are
// terminal states.
type Artwork struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`

	// Generation metadata, carried from the task that produced the image.
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model,omitempty"`
	Seed   int64  `json:"seed,omitempty"`

	// Listing. IsForSale and IsAuction are mutually exclusive.
	Price          int64      `json:"price"` // cents
	IsForSale      bool       `json:"is_for_sale"`
	IsAuction      bool       `json:"is_auction"`
	AuctionEndTime *time.Time `json:"auction_end_time,omitempty"`
	MinimumBid     int64      `json:"minimum_bid"` // cents

	Status    ArtworkStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Purchasable reports whether a direct purchase may proceed against this
// artwork. It does not check buyer-side preconditions.
func (a *Artwork) Purchasable() bool {
	return a.Status != ArtworkStatusSold && a.Status != ArtworkStatusArchived && a.IsForSale
}

// AuctionOpen reports whether the auction accepts bids at the given instant.
// An unset end time means an open-ended auction.
func (a *Artwork) AuctionOpen(now time.Time) bool {
	if !a.IsAuction || a.Status != ArtworkStatusPublished {
		return false
	}
	return a.AuctionEndTime == nil || a.AuctionEndTime.After(now)
}

// AuctionExpired reports whether the auction end time has elapsed.
func (a *Artwork) AuctionExpired(now time.Time) bool {
	return a.IsAuction && a.AuctionEndTime != nil && !a.AuctionEndTime.After(now)
}
