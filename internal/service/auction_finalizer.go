package service

import (
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

// finalizerBatchSize bounds how many expired auctions one sweep settles.
const finalizerBatchSize = 100

// AuctionFinalizerImpl settles expired auctions in the background. Each
// auction is finalized under the same per-artwork lock as live settlements,
// so a finalization can never race a concurrent bid on the same artwork.
type AuctionFinalizerImpl struct {
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

// NewAuctionFinalizer creates a new AuctionFinalizerImpl.
func NewAuctionFinalizer(
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
) *AuctionFinalizerImpl {
	return &AuctionFinalizerImpl{
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

// FinalizeExpired settles every published auction whose end time has passed
// and returns the number of auctions processed. A failure on one auction is
// logged and does not stop the sweep.
func (f *AuctionFinalizerImpl) FinalizeExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	expired, err := f.artworkRepo.ListExpiredAuctions(ctx, now, finalizerBatchSize)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("list expired auctions: %w", err))
	}

	processed := 0
	for _, artwork := range expired {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if err := f.finalizeOne(ctx, artwork.ID, now); err != nil {
			f.log.Error().Err(err).
				Str("artwork_id", artwork.ID.String()).
				Msg("failed to finalize auction")
			continue
		}
		processed++
	}

	if processed > 0 {
		f.log.Info().Int("count", processed).Msg("expired auctions finalized")
	}
	return processed, nil
}

func (f *AuctionFinalizerImpl) finalizeOne(ctx context.Context, artworkID uuid.UUID, now time.Time) error {
	release, err := f.locker.Acquire(ctx, artworkID)
	if err != nil {
		return err
	}
	defer release(ctx)

	dbTx, err := f.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Re-check under the lock; a concurrent sweep may have settled this
	// auction between the listing query and lock acquisition.
	artwork, err := f.artworkRepo.GetByIDForUpdate(ctx, dbTx, artworkID)
	if err != nil {
		return fmt.Errorf("lock artwork: %w", err)
	}
	if artwork == nil || artwork.Status != domain.ArtworkStatusPublished || !artwork.AuctionExpired(now) {
		return nil
	}

	winning, err := f.bidRepo.GetWinningForUpdate(ctx, dbTx, artworkID)
	if err != nil {
		return fmt.Errorf("lock winning bid: %w", err)
	}

	// No bids: the listing simply ends.
	if winning == nil {
		if err := f.artworkRepo.SetStatus(ctx, dbTx, artworkID, domain.ArtworkStatusArchived); err != nil {
			return fmt.Errorf("archive unsold auction: %w", err)
		}
		if err := dbTx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		f.log.Info().Str("artwork_id", artworkID.String()).Msg("auction expired with no bids")
		return nil
	}

	// Bids by the owner are rejected at placement; an old row that predates
	// that rule must not settle a wallet against itself.
	if winning.BidderID == artwork.OwnerID {
		return f.voidAuction(ctx, dbTx, artwork, winning, now, "winning bid was placed by the owner")
	}

	winnerWallet, sellerWallet, err := lockWalletPair(ctx, f.walletRepo, dbTx, winning.BidderID, artwork.OwnerID)
	if err != nil {
		return err
	}

	// The winner's funds are only checked now, at settlement time. A winner
	// who can no longer pay forfeits the auction and the listing ends.
	if winnerWallet.Balance < winning.Amount {
		return f.voidAuction(ctx, dbTx, artwork, winning, now, "winning bidder could not fund the bid")
	}

	fee := domain.PlatformFee(winning.Amount, f.feePercent)
	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypeBidWon,
		BuyerID:     winning.BidderID,
		SellerID:    artwork.OwnerID,
		ArtworkID:   artwork.ID,
		Amount:      winning.Amount,
		PlatformFee: fee,
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}

	if err := f.walletRepo.UpdateBalance(ctx, dbTx, winnerWallet.ID, winnerWallet.Balance-winning.Amount, 0); err != nil {
		return fmt.Errorf("debit winner: %w", err)
	}
	if err := f.walletRepo.UpdateBalance(ctx, dbTx, sellerWallet.ID, sellerWallet.Balance+txn.SellerAmount(), winning.Amount); err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}
	if err := f.artworkRepo.TransferOwnership(ctx, dbTx, artwork.ID, winning.BidderID, domain.ArtworkStatusSold); err != nil {
		return fmt.Errorf("transfer ownership: %w", err)
	}
	if err := f.txRepo.Create(ctx, dbTx, txn); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	winnerName := "another collector"
	if winner, err := f.userRepo.GetByID(ctx, winning.BidderID); err == nil && winner != nil {
		winnerName = winner.Username
	}
	f.events.Emit(ctx, domain.NewSaleEvent(artwork.OwnerID, artwork.ID, artwork.Title, winnerName, winning.Amount))

	f.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("artwork_id", artwork.ID.String()).
		Str("winner_id", winning.BidderID.String()).
		Int64("amount", winning.Amount).
		Msg("auction settled")
	return nil
}

// voidAuction records a failed ledger entry for a winning bid that cannot
// settle and archives the listing without transferring anything.
func (f *AuctionFinalizerImpl) voidAuction(ctx context.Context, dbTx pgx.Tx, artwork *domain.Artwork, winning *domain.Bid, now time.Time, reason string) error {
	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypeBidWon,
		BuyerID:     winning.BidderID,
		SellerID:    artwork.OwnerID,
		ArtworkID:   artwork.ID,
		Amount:      winning.Amount,
		PlatformFee: 0,
		Status:      domain.TransactionStatusFailed,
		CreatedAt:   now,
	}

	if err := f.bidRepo.ClearWinning(ctx, dbTx, artwork.ID); err != nil {
		return fmt.Errorf("clear winning bid: %w", err)
	}
	if err := f.artworkRepo.SetStatus(ctx, dbTx, artwork.ID, domain.ArtworkStatusArchived); err != nil {
		return fmt.Errorf("archive forfeited auction: %w", err)
	}
	if err := f.txRepo.Create(ctx, dbTx, txn); err != nil {
		return fmt.Errorf("create failed transaction: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	f.log.Warn().
		Str("artwork_id", artwork.ID.String()).
		Str("winner_id", winning.BidderID.String()).
		Int64("amount", winning.Amount).
		Str("reason", reason).
		Msg("auction voided")
	return nil
}
