package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ai-art-marketplace/internal/core/domain"
)

// ReleaseFunc releases a held artwork lock. Safe to call exactly once.
type ReleaseFunc func(ctx context.Context)

// ArtworkLocker serializes settlements per artwork. Acquire blocks until the
// lock is held or the configured acquire timeout elapses, in which case it
// returns apperror.ErrLockTimeout.
type ArtworkLocker interface {
	Acquire(ctx context.Context, artworkID uuid.UUID) (ReleaseFunc, error)
}

// NotificationSink accepts marketplace events after a settlement commits.
// Emit is fire-and-forget: it logs failures but never returns them to the
// settlement path.
type NotificationSink interface {
	Emit(ctx context.Context, event domain.Event)
}

// PurchaseResult is the outcome of a completed direct purchase.
type PurchaseResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Artwork     *domain.Artwork     `json:"artwork"`
}

// PlaceBidResult is the outcome of an accepted bid.
type PlaceBidResult struct {
	Bid     *domain.Bid     `json:"bid"`
	Artwork *domain.Artwork `json:"artwork"`
}

// SettlementService executes atomic marketplace settlements. Each operation
// holds the per-artwork lock for its full duration, so at most one purchase
// or bid per artwork is in flight at any time.
type SettlementService interface {
	// Purchase atomically transfers ownership and funds for a fixed-price
	// listing. Either every effect applies or none do.
	Purchase(ctx context.Context, buyerID, artworkID uuid.UUID) (*PurchaseResult, error)
	// PlaceBid records a bid on an open auction. The bid must exceed the
	// current winning amount, or meet the minimum when no bids exist.
	PlaceBid(ctx context.Context, bidderID, artworkID uuid.UUID, amount int64) (*PlaceBidResult, error)
}

// AuctionFinalizer settles expired auctions.
type AuctionFinalizer interface {
	// FinalizeExpired settles every expired open auction and returns the
	// number of auctions processed.
	FinalizeExpired(ctx context.Context) (int, error)
}

// RegisterParams carries a registration request.
type RegisterParams struct {
	Username    string
	Password    string
	DisplayName string
}

// AuthResult carries a signed token plus the authenticated user.
type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TokenService signs and verifies access tokens.
type TokenService interface {
	Generate(userID uuid.UUID) (token string, expiresAt time.Time, err error)
	Verify(token string) (uuid.UUID, error)
}

// HashService hashes and verifies passwords.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// GenerateParams carries an image generation request.
type GenerateParams struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	CfgScale       float64
	Seed           int64
}

// SaveArtworkParams carries listing details for saving a completed
// generation task to the gallery.
type SaveArtworkParams struct {
	Title          string
	Description    string
	Price          int64
	IsForSale      bool
	IsAuction      bool
	AuctionEndTime *time.Time
	MinimumBid     int64
}

// GenerationService produces AI images and promotes them to artworks.
type GenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, params GenerateParams) (*domain.GenerationTask, error)
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.GenerationTask, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.GenerationTask, error)
	// SaveArtwork turns a completed task owned by the user into a
	// published artwork.
	SaveArtwork(ctx context.Context, userID, taskID uuid.UUID, params SaveArtworkParams) (*domain.Artwork, error)
}

// ListArtworkParams carries a listing update request.
type ListArtworkParams struct {
	Price          int64
	IsForSale      bool
	IsAuction      bool
	AuctionEndTime *time.Time
	MinimumBid     int64
}

// ArtworkService manages gallery items outside the settlement path.
type ArtworkService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Artwork, error)
	List(ctx context.Context, filter ArtworkFilter) ([]*domain.Artwork, error)
	// UpdateListing changes price and sale/auction flags. Only the owner
	// may relist, and sold or archived artworks are immutable.
	UpdateListing(ctx context.Context, ownerID, artworkID uuid.UUID, params ListArtworkParams) (*domain.Artwork, error)
	Bids(ctx context.Context, artworkID uuid.UUID, limit int) ([]*domain.Bid, error)
}

// WalletService exposes balances and top-ups.
type WalletService interface {
	Balance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// TopUp credits the wallet. Amount must be positive.
	TopUp(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Wallet, error)
}

// NotificationService reads and dispatches user notifications.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ReportingService exposes the ledger and marketplace aggregates.
type ReportingService interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	Stats(ctx context.Context) (*MarketplaceStats, error)
}
