package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies marketplace events delivered to users.
type NotificationKind string

const (
	NotificationKindSale   NotificationKind = "sale"
	NotificationKindBid    NotificationKind = "bid"
	NotificationKindOutbid NotificationKind = "outbid"
)

// Notification is a persisted, per-user event record.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Event is the wire form of a marketplace event emitted by the settlement
// engine. Delivery is fire-and-forget: emission never fails a settlement.
type Event struct {
	Kind      NotificationKind `json:"kind"`
	UserID    uuid.UUID        `json:"user_id"`
	ArtworkID uuid.UUID        `json:"artwork_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
}

// NewSaleEvent addresses the previous owner after a completed sale.
func NewSaleEvent(seller uuid.UUID, artworkID uuid.UUID, title string, buyer string, amount int64) Event {
	return Event{
		Kind:      NotificationKindSale,
		UserID:    seller,
		ArtworkID: artworkID,
		Title:     "Artwork Sold!",
		Message:   fmt.Sprintf("Your artwork %q was purchased by %s for %s", title, buyer, FormatCents(amount)),
	}
}

// NewBidEvent addresses the artwork owner after a new bid.
func NewBidEvent(owner uuid.UUID, artworkID uuid.UUID, title string, bidder string, amount int64) Event {
	return Event{
		Kind:      NotificationKindBid,
		UserID:    owner,
		ArtworkID: artworkID,
		Title:     "New Bid!",
		Message:   fmt.Sprintf("%s placed a %s bid on %q", bidder, FormatCents(amount), title),
	}
}

// NewOutbidEvent addresses the previously winning bidder.
func NewOutbidEvent(previousBidder uuid.UUID, artworkID uuid.UUID, title string) Event {
	return Event{
		Kind:      NotificationKindOutbid,
		UserID:    previousBidder,
		ArtworkID: artworkID,
		Title:     "You have been outbid!",
		Message:   fmt.Sprintf("Someone placed a higher bid on %q", title),
	}
}

// FormatCents renders a cent amount as a dollar string, e.g. 10050 -> "$100.50".
func FormatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
