package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SettlementServiceImpl implements ports.SettlementService. It is the only
// mutation path for wallet balances, artwork ownership and listing state,
// and the winning-bid flag.
type SettlementServiceImpl struct {
	artworkRepo ports.ArtworkRepository
	walletRepo  ports.WalletRepository
	bidRepo     ports.BidRepository
	txRepo      ports.TransactionRepository
	userRepo    ports.UserRepository
	transactor  ports.DBTransactor
	locker      ports.ArtworkLocker
	events      ports.NotificationSink
	feePercent  int64
	log         zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	artworkRepo ports.ArtworkRepository,
	walletRepo ports.WalletRepository,
	bidRepo ports.BidRepository,
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	transactor ports.DBTransactor,
	locker ports.ArtworkLocker,
	events ports.NotificationSink,
	feePercent int64,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		artworkRepo: artworkRepo,
		walletRepo:  walletRepo,
		bidRepo:     bidRepo,
		txRepo:      txRepo,
		userRepo:    userRepo,
		transactor:  transactor,
		locker:      locker,
		events:      events,
		feePercent:  feePercent,
		log:         log,
	}
}

// Purchase implements the fixed-price settlement with per-artwork locking.
// Either every effect applies or none do; business-rule failures leave no
// state change, so retrying a sold artwork fails identically every time.
func (s *SettlementServiceImpl) Purchase(ctx context.Context, buyerID, artworkID uuid.UUID) (*ports.PurchaseResult, error) {
	release, err := s.locker.Acquire(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	defer release(ctx)

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get artwork
	artwork, err := s.artworkRepo.GetByIDForUpdate(ctx, dbTx, artworkID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock artwork: %w", err))
	}
	if artwork == nil {
		return nil, apperror.ErrArtworkNotFound()
	}

	// Business rules, checked in order
	if !artwork.Purchasable() {
		return nil, apperror.ErrNotForSale()
	}
	if artwork.OwnerID == buyerID {
		return nil, apperror.ErrSelfTrade()
	}

	// Lock both wallets in a fixed global order to avoid deadlock between
	// concurrent purchases with the same pair in opposite roles.
	buyerWallet, sellerWallet, err := lockWalletPair(ctx, s.walletRepo, dbTx, buyerID, artwork.OwnerID)
	if err != nil {
		return nil, err
	}

	if buyerWallet.Balance < artwork.Price {
		return nil, apperror.ErrInsufficientFunds()
	}

	fee := domain.PlatformFee(artwork.Price, s.feePercent)
	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypePurchase,
		BuyerID:     buyerID,
		SellerID:    artwork.OwnerID,
		ArtworkID:   artwork.ID,
		Amount:      artwork.Price,
		PlatformFee: fee,
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}

	// Persist: debit buyer, credit seller net of fee, count the sale
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, buyerWallet.ID, buyerWallet.Balance-artwork.Price, 0); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit buyer: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, sellerWallet.ID, sellerWallet.Balance+txn.SellerAmount(), artwork.Price); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit seller: %w", err))
	}

	// Persist: transfer ownership
	if err := s.artworkRepo.TransferOwnership(ctx, dbTx, artwork.ID, buyerID, domain.ArtworkStatusSold); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transfer ownership: %w", err))
	}

	// Persist: ledger entry
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	sellerID := artwork.OwnerID
	artwork.OwnerID = buyerID
	artwork.IsForSale = false
	artwork.Status = domain.ArtworkStatusSold

	// Post-commit: notify the previous owner (best-effort)
	s.events.Emit(ctx, domain.NewSaleEvent(sellerID, artwork.ID, artwork.Title, s.username(ctx, buyerID), artwork.Price))

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("artwork_id", artwork.ID.String()).
		Str("buyer_id", buyerID.String()).
		Int64("amount", txn.Amount).
		Int64("platform_fee", txn.PlatformFee).
		Msg("purchase settled")

	return &ports.PurchaseResult{Transaction: txn, Artwork: artwork}, nil
}

// PlaceBid implements the auction settlement with per-artwork locking.
func (s *SettlementServiceImpl) PlaceBid(ctx context.Context, bidderID, artworkID uuid.UUID, amount int64) (*ports.PlaceBidResult, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	release, err := s.locker.Acquire(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	defer release(ctx)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	artwork, err := s.artworkRepo.GetByIDForUpdate(ctx, dbTx, artworkID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock artwork: %w", err))
	}
	if artwork == nil {
		return nil, apperror.ErrArtworkNotFound()
	}

	now := time.Now().UTC()
	if !artwork.IsAuction {
		return nil, apperror.ErrNotAnAuction()
	}
	if !artwork.AuctionOpen(now) {
		return nil, apperror.ErrAuctionClosed()
	}
	// An owner bidding up their own auction would settle against a single
	// wallet at expiry.
	if artwork.OwnerID == bidderID {
		return nil, apperror.ErrSelfTrade()
	}
	if amount < artwork.MinimumBid {
		return nil, apperror.ErrBidTooLow(fmt.Sprintf("bid must be at least %s", domain.FormatCents(artwork.MinimumBid)))
	}

	// Strict increase over the current winner; ties are rejected.
	previous, err := s.bidRepo.GetWinningForUpdate(ctx, dbTx, artworkID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock winning bid: %w", err))
	}
	if previous != nil && amount <= previous.Amount {
		return nil, apperror.ErrBidTooLow(fmt.Sprintf("bid must exceed the current winning bid of %s", domain.FormatCents(previous.Amount)))
	}

	if previous != nil {
		if err := s.bidRepo.ClearWinning(ctx, dbTx, artworkID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("clear winning bid: %w", err))
		}
	}

	bid := &domain.Bid{
		ID:        uuid.New(),
		ArtworkID: artworkID,
		BidderID:  bidderID,
		Amount:    amount,
		IsWinning: true,
		CreatedAt: now,
	}
	if err := s.bidRepo.Insert(ctx, dbTx, bid); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("insert bid: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-commit events: new-bid to the owner, outbid to the displaced
	// bidder when they are a distinct party and not the owner.
	bidderName := s.username(ctx, bidderID)
	s.events.Emit(ctx, domain.NewBidEvent(artwork.OwnerID, artwork.ID, artwork.Title, bidderName, amount))
	if previous != nil && previous.BidderID != bidderID && previous.BidderID != artwork.OwnerID {
		s.events.Emit(ctx, domain.NewOutbidEvent(previous.BidderID, artwork.ID, artwork.Title))
	}

	s.log.Info().
		Str("bid_id", bid.ID.String()).
		Str("artwork_id", artworkID.String()).
		Str("bidder_id", bidderID.String()).
		Int64("amount", amount).
		Msg("bid accepted")

	return &ports.PlaceBidResult{Bid: bid, Artwork: artwork}, nil
}

// lockWalletPair locks the buyer and seller wallets ordered by user id
// bytes. The fixed order prevents deadlock when two concurrent purchases
// involve the same pair of users in opposite roles.
func lockWalletPair(ctx context.Context, walletRepo ports.WalletRepository, dbTx pgx.Tx, buyerID, sellerID uuid.UUID) (buyer, seller *domain.Wallet, err error) {
	lock := func(userID uuid.UUID, role string) (*domain.Wallet, error) {
		w, err := walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock %s wallet: %w", role, err))
		}
		if w == nil {
			return nil, apperror.ErrNotFound(role + " wallet")
		}
		return w, nil
	}

	if bytes.Compare(buyerID[:], sellerID[:]) < 0 {
		if buyer, err = lock(buyerID, "buyer"); err != nil {
			return nil, nil, err
		}
		if seller, err = lock(sellerID, "seller"); err != nil {
			return nil, nil, err
		}
	} else {
		if seller, err = lock(sellerID, "seller"); err != nil {
			return nil, nil, err
		}
		if buyer, err = lock(buyerID, "buyer"); err != nil {
			return nil, nil, err
		}
	}
	return buyer, seller, nil
}

func (s *SettlementServiceImpl) username(ctx context.Context, userID uuid.UUID) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return "another collector"
	}
	return user.Username
}
