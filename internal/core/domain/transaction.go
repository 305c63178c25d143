package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes how the ownership transfer was settled.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeBidWon   TransactionType = "bid_won"
)

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry recording an artwork sale.
// Completed entries are never mutated or deleted; they are the audit trail
// for every balance change in the system.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	Type        TransactionType   `json:"type"`
	BuyerID     uuid.UUID         `json:"buyer_id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	ArtworkID   uuid.UUID         `json:"artwork_id"`
	Amount      int64             `json:"amount"`       // cents, full sale price
	PlatformFee int64             `json:"platform_fee"` // cents, retained from the seller credit
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// SellerAmount is the net credit to the seller after the platform fee.
func (t *Transaction) SellerAmount() int64 {
	return t.Amount - t.PlatformFee
}

// PlatformFee computes the fee retained by the platform for a sale price.
// feePercent is a whole percentage (5 = 5%); cents truncate toward zero.
func PlatformFee(price int64, feePercent int64) int64 {
	return price * feePercent / 100
}
