package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ai-art-marketplace/internal/core/domain"
)

// DBTransactor begins database transactions. The settlement engine holds a
// transaction open for the full critical section of a purchase or bid.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// WalletRepository persists wallets. The ForUpdate variant must run inside a
// transaction and acquires a row lock held until commit or rollback.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	// UpdateBalance sets the wallet balance and adds salesDelta to the
	// lifetime sales counter. Must run inside the transaction that locked
	// the row.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64, salesDelta int64) error
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Wallet, error)
}

// ArtworkFilter narrows gallery listings.
type ArtworkFilter struct {
	OwnerID *uuid.UUID
	ForSale *bool
	Auction *bool
	Status  *domain.ArtworkStatus
	Limit   int
	Offset  int
}

// ArtworkRepository persists artworks.
type ArtworkRepository interface {
	Create(ctx context.Context, artwork *domain.Artwork) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Artwork, error)
	List(ctx context.Context, filter ArtworkFilter) ([]*domain.Artwork, error)
	// UpdateListing persists price, sale/auction flags, end time, minimum
	// bid and status for an unsold artwork.
	UpdateListing(ctx context.Context, artwork *domain.Artwork) error
	// TransferOwnership moves the artwork to the buyer and applies the
	// terminal listing state inside the settlement transaction.
	TransferOwnership(ctx context.Context, tx pgx.Tx, artworkID, newOwnerID uuid.UUID, status domain.ArtworkStatus) error
	// SetStatus updates status only; used by the finalizer to archive
	// expired listings inside its transaction.
	SetStatus(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID, status domain.ArtworkStatus) error
	// ListExpiredAuctions returns published auctions whose end time has
	// passed as of the given instant.
	ListExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*domain.Artwork, error)
}

// BidRepository persists auction bids.
type BidRepository interface {
	// Insert writes a bid inside the settlement transaction.
	Insert(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error
	// GetWinningForUpdate returns the current winning bid with a row lock,
	// or nil when the auction has no bids yet.
	GetWinningForUpdate(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID) (*domain.Bid, error)
	GetWinning(ctx context.Context, artworkID uuid.UUID) (*domain.Bid, error)
	// ClearWinning drops the winning flag from all bids on the artwork.
	ClearWinning(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID) error
	ListByArtwork(ctx context.Context, artworkID uuid.UUID, limit int) ([]*domain.Bid, error)
}

// TransactionFilter narrows ledger queries.
type TransactionFilter struct {
	UserID *uuid.UUID
	Status *domain.TransactionStatus
	Limit  int
	Offset int
}

// MarketplaceStats aggregates the completed ledger.
type MarketplaceStats struct {
	TotalSales      int64 `json:"total_sales"`
	TotalVolume     int64 `json:"total_volume"` // cents
	TotalFees       int64 `json:"total_fees"`   // cents
	ArtworksListed  int64 `json:"artworks_listed"`
	AuctionsOpen    int64 `json:"auctions_open"`
	RegisteredUsers int64 `json:"registered_users"`
}

// TransactionRepository persists the immutable settlement ledger.
type TransactionRepository interface {
	// Create writes a ledger entry inside the settlement transaction.
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	GetStats(ctx context.Context) (*MarketplaceStats, error)
}

// NotificationRepository persists delivered notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GenerationTaskRepository persists AI generation tasks.
type GenerationTaskRepository interface {
	Create(ctx context.Context, task *domain.GenerationTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationTask, error)
	Update(ctx context.Context, task *domain.GenerationTask) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.GenerationTask, error)
}
