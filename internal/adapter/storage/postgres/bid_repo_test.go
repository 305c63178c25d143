package postgres

import (
	"context"
	"testing"
	"time"

	"ai-art-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bidColumns() []string {
	return []string{"id", "artwork_id", "bidder_id", "amount", "is_winning", "created_at"}
}

func TestBidRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBidRepo(mock)
	b := &domain.Bid{
		ID:        uuid.New(),
		ArtworkID: uuid.New(),
		BidderID:  uuid.New(),
		Amount:    1500,
		IsWinning: true,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bids").
		WithArgs(b.ID, b.ArtworkID, b.BidderID, b.Amount, b.IsWinning, b.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Insert(context.Background(), tx, b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepo_GetWinningForUpdate_NoBids(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBidRepo(mock)
	artworkID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM bids WHERE artwork_id .+ FOR UPDATE").
		WithArgs(artworkID).
		WillReturnRows(pgxmock.NewRows(bidColumns()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetWinningForUpdate(context.Background(), tx, artworkID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepo_ClearWinning(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBidRepo(mock)
	artworkID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bids SET is_winning").
		WithArgs(artworkID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.ClearWinning(context.Background(), tx, artworkID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepo_ListByArtwork(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBidRepo(mock)
	artworkID := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows(bidColumns()).
		AddRow(uuid.New(), artworkID, uuid.New(), int64(2000), true, now).
		AddRow(uuid.New(), artworkID, uuid.New(), int64(1500), false, now)
	mock.ExpectQuery("SELECT .+ FROM bids WHERE artwork_id").
		WithArgs(artworkID, 50).
		WillReturnRows(rows)

	result, err := repo.ListByArtwork(context.Background(), artworkID, 0)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.True(t, result[0].IsWinning)
	assert.Equal(t, int64(2000), result[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
