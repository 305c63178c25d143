package service

import (
	"context"
	"testing"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type finalizerTestDeps struct {
	svc         *AuctionFinalizerImpl
	artworkRepo *mocks.MockArtworkRepository
	walletRepo  *mocks.MockWalletRepository
	bidRepo     *mocks.MockBidRepository
	txRepo      *mocks.MockTransactionRepository
	userRepo    *mocks.MockUserRepository
	transactor  *mocks.MockDBTransactor
	locker      *mocks.MockArtworkLocker
	events      *mocks.MockNotificationSink
	ctrl        *gomock.Controller
}

func setupAuctionFinalizer(t *testing.T) *finalizerTestDeps {
	ctrl := gomock.NewController(t)
	d := &finalizerTestDeps{
		artworkRepo: mocks.NewMockArtworkRepository(ctrl),
		walletRepo:  mocks.NewMockWalletRepository(ctrl),
		bidRepo:     mocks.NewMockBidRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		userRepo:    mocks.NewMockUserRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		locker:      mocks.NewMockArtworkLocker(ctrl),
		events:      mocks.NewMockNotificationSink(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuctionFinalizer(
		d.artworkRepo, d.walletRepo, d.bidRepo, d.txRepo, d.userRepo,
		d.transactor, d.locker, d.events, 5, zerolog.Nop(),
	)
	return d
}

func newExpiredAuction(ownerID uuid.UUID, minimumBid int64) *domain.Artwork {
	end := time.Now().UTC().Add(-time.Minute)
	a := newAuctionArtwork(ownerID, minimumBid, &end)
	return a
}

func noopRelease() ports.ReleaseFunc {
	return func(context.Context) {}
}

func TestFinalizer_NoExpiredAuctions(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	d.artworkRepo.EXPECT().ListExpiredAuctions(gomock.Any(), gomock.Any(), finalizerBatchSize).Return(nil, nil)

	count, err := d.svc.FinalizeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFinalizer_ArchivesAuctionWithNoBids(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	artwork := newExpiredAuction(uuid.New(), 1000)
	tx := &mockTx{}

	d.artworkRepo.EXPECT().ListExpiredAuctions(ctx, gomock.Any(), finalizerBatchSize).Return([]*domain.Artwork{artwork}, nil)
	d.locker.EXPECT().Acquire(gomock.Any(), artwork.ID).Return(noopRelease(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.artworkRepo.EXPECT().GetByIDForUpdate(ctx, tx, artwork.ID).Return(artwork, nil)
	d.bidRepo.EXPECT().GetWinningForUpdate(ctx, tx, artwork.ID).Return(nil, nil)
	d.artworkRepo.EXPECT().SetStatus(ctx, tx, artwork.ID, domain.ArtworkStatusArchived).Return(nil)

	count, err := d.svc.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFinalizer_SettlesWinningBid(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	winnerID := uuid.New()
	artwork := newExpiredAuction(ownerID, 1000)
	tx := &mockTx{}

	winning := &domain.Bid{ID: uuid.New(), ArtworkID: artwork.ID, BidderID: winnerID, Amount: 2000, IsWinning: true}
	winnerWallet := &domain.Wallet{ID: uuid.New(), UserID: winnerID, Balance: 5000}
	sellerWallet := &domain.Wallet{ID: uuid.New(), UserID: ownerID, Balance: 100}

	d.artworkRepo.EXPECT().ListExpiredAuctions(ctx, gomock.Any(), finalizerBatchSize).Return([]*domain.Artwork{artwork}, nil)
	d.locker.EXPECT().Acquire(gomock.Any(), artwork.ID).Return(noopRelease(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.artworkRepo.EXPECT().GetByIDForUpdate(ctx, tx, artwork.ID).Return(artwork, nil)
	d.bidRepo.EXPECT().GetWinningForUpdate(ctx, tx, artwork.ID).Return(winning, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, winnerID).Return(winnerWallet, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, ownerID).Return(sellerWallet, nil)

	// $50.00 - $20.00 for the winner; the seller gains $19.00 net of the
	// $1.00 fee and counts the full hammer price in lifetime sales.
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, winnerWallet.ID, int64(3000), int64(0)).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, sellerWallet.ID, int64(100+1900), int64(2000)).Return(nil)
	d.artworkRepo.EXPECT().TransferOwnership(ctx, tx, artwork.ID, winnerID, domain.ArtworkStatusSold).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeBidWon, txn.Type)
			assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
			assert.Equal(t, int64(2000), txn.Amount)
			assert.Equal(t, int64(100), txn.PlatformFee)
			return nil
		})

	d.userRepo.EXPECT().GetByID(ctx, winnerID).Return(&domain.User{ID: winnerID, Username: "dora"}, nil)
	d.events.EXPECT().Emit(ctx, gomock.Any()).Do(func(_ context.Context, e domain.Event) {
		assert.Equal(t, domain.NotificationKindSale, e.Kind)
		assert.Equal(t, ownerID, e.UserID)
		assert.Contains(t, e.Message, "dora")
	})

	count, err := d.svc.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFinalizer_VoidsUnfundableWinner(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	winnerID := uuid.New()
	artwork := newExpiredAuction(ownerID, 1000)
	tx := &mockTx{}

	winning := &domain.Bid{ID: uuid.New(), ArtworkID: artwork.ID, BidderID: winnerID, Amount: 2000, IsWinning: true}
	winnerWallet := &domain.Wallet{ID: uuid.New(), UserID: winnerID, Balance: 500}
	sellerWallet := &domain.Wallet{ID: uuid.New(), UserID: ownerID, Balance: 100}

	d.artworkRepo.EXPECT().ListExpiredAuctions(ctx, gomock.Any(), finalizerBatchSize).Return([]*domain.Artwork{artwork}, nil)
	d.locker.EXPECT().Acquire(gomock.Any(), artwork.ID).Return(noopRelease(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.artworkRepo.EXPECT().GetByIDForUpdate(ctx, tx, artwork.ID).Return(artwork, nil)
	d.bidRepo.EXPECT().GetWinningForUpdate(ctx, tx, artwork.ID).Return(winning, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, winnerID).Return(winnerWallet, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, ownerID).Return(sellerWallet, nil)

	d.bidRepo.EXPECT().ClearWinning(ctx, tx, artwork.ID).Return(nil)
	d.artworkRepo.EXPECT().SetStatus(ctx, tx, artwork.ID, domain.ArtworkStatusArchived).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionStatusFailed, txn.Status)
			assert.Nil(t, txn.CompletedAt)
			return nil
		})

	count, err := d.svc.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFinalizer_VoidsWinningBidByOwner(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	artwork := newExpiredAuction(ownerID, 1000)
	tx := &mockTx{}

	// A leftover winning bid placed by the owner themselves. Settling it
	// would debit and credit the same wallet from two stale snapshots and
	// create money out of thin air, so the auction must be voided instead.
	winning := &domain.Bid{ID: uuid.New(), ArtworkID: artwork.ID, BidderID: ownerID, Amount: 2000, IsWinning: true}

	d.artworkRepo.EXPECT().ListExpiredAuctions(ctx, gomock.Any(), finalizerBatchSize).Return([]*domain.Artwork{artwork}, nil)
	d.locker.EXPECT().Acquire(gomock.Any(), artwork.ID).Return(noopRelease(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.artworkRepo.EXPECT().GetByIDForUpdate(ctx, tx, artwork.ID).Return(artwork, nil)
	d.bidRepo.EXPECT().GetWinningForUpdate(ctx, tx, artwork.ID).Return(winning, nil)

	// No wallet reads, no UpdateBalance, no ownership transfer.
	d.bidRepo.EXPECT().ClearWinning(ctx, tx, artwork.ID).Return(nil)
	d.artworkRepo.EXPECT().SetStatus(ctx, tx, artwork.ID, domain.ArtworkStatusArchived).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionStatusFailed, txn.Status)
			assert.Equal(t, int64(0), txn.PlatformFee)
			assert.Nil(t, txn.CompletedAt)
			return nil
		})

	count, err := d.svc.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFinalizer_SkipsAlreadySettledAuction(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	artwork := newExpiredAuction(uuid.New(), 1000)
	tx := &mockTx{}

	settled := *artwork
	settled.Status = domain.ArtworkStatusSold

	d.artworkRepo.EXPECT().ListExpiredAuctions(ctx, gomock.Any(), finalizerBatchSize).Return([]*domain.Artwork{artwork}, nil)
	d.locker.EXPECT().Acquire(gomock.Any(), artwork.ID).Return(noopRelease(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.artworkRepo.EXPECT().GetByIDForUpdate(ctx, tx, artwork.ID).Return(&settled, nil)

	count, err := d.svc.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFinalizer_ContinuesAfterOneFailure(t *testing.T) {
	d := setupAuctionFinalizer(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	broken := newExpiredAuction(uuid.New(), 1000)
	healthy := newExpiredAuction(uuid.New(), 1000)
	tx := &mockTx{}

	d.artworkRepo.EXPECT().ListExpiredAuctions(ctx, gomock.Any(), finalizerBatchSize).
		Return([]*domain.Artwork{broken, healthy}, nil)

	d.locker.EXPECT().Acquire(gomock.Any(), broken.ID).Return(nil, assert.AnError)

	d.locker.EXPECT().Acquire(gomock.Any(), healthy.ID).Return(noopRelease(), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.artworkRepo.EXPECT().GetByIDForUpdate(ctx, tx, healthy.ID).Return(healthy, nil)
	d.bidRepo.EXPECT().GetWinningForUpdate(ctx, tx, healthy.ID).Return(nil, nil)
	d.artworkRepo.EXPECT().SetStatus(ctx, tx, healthy.ID, domain.ArtworkStatusArchived).Return(nil)

	count, err := d.svc.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the healthy auction still settles")
}
