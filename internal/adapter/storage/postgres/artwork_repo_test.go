package postgres

import (
	"context"
	"testing"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArtwork(ownerID uuid.UUID) *domain.Artwork {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Artwork{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		CreatorID:  ownerID,
		Title:      "Neon Garden",
		ImageURL:   "https://cdn.example.com/neon-garden.png",
		Prompt:     "a neon garden at dusk",
		Model:      "stability",
		Seed:       42,
		Price:      10000,
		IsForSale:  true,
		MinimumBid: 0,
		Status:     domain.ArtworkStatusPublished,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func artworkRowColumns() []string {
	return []string{
		"id", "owner_id", "creator_id", "title", "description", "image_url",
		"prompt", "model", "seed", "price", "is_for_sale", "is_auction",
		"auction_end_time", "minimum_bid", "status", "created_at", "updated_at",
	}
}

func artworkRow(a *domain.Artwork) *pgxmock.Rows {
	return pgxmock.NewRows(artworkRowColumns()).AddRow(
		a.ID, a.OwnerID, a.CreatorID, a.Title, a.Description, a.ImageURL,
		a.Prompt, a.Model, a.Seed, a.Price, a.IsForSale, a.IsAuction,
		a.AuctionEndTime, a.MinimumBid, a.Status, a.CreatedAt, a.UpdatedAt,
	)
}

func TestArtworkRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	a := newTestArtwork(uuid.New())

	mock.ExpectExec("INSERT INTO artworks").
		WithArgs(a.ID, a.OwnerID, a.CreatorID, a.Title, a.Description, a.ImageURL,
			a.Prompt, a.Model, a.Seed, a.Price, a.IsForSale, a.IsAuction,
			a.AuctionEndTime, a.MinimumBid, a.Status, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	a := newTestArtwork(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM artworks WHERE id").
		WithArgs(a.ID).
		WillReturnRows(artworkRow(a))

	result, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.Title, result.Title)
	assert.True(t, result.IsForSale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM artworks WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(artworkRowColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	a := newTestArtwork(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM artworks WHERE id .+ FOR UPDATE").
		WithArgs(a.ID).
		WillReturnRows(artworkRow(a))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkRepo_List_ByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	ownerID := uuid.New()
	a := newTestArtwork(ownerID)

	mock.ExpectQuery("SELECT .+ FROM artworks WHERE owner_id").
		WithArgs(ownerID, 50).
		WillReturnRows(artworkRow(a))

	result, err := repo.List(context.Background(), ports.ArtworkFilter{OwnerID: &ownerID})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, a.ID, result[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkRepo_TransferOwnership(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	artworkID := uuid.New()
	buyerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE artworks SET owner_id").
		WithArgs(buyerID, domain.ArtworkStatusSold, artworkID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.TransferOwnership(context.Background(), tx, artworkID, buyerID, domain.ArtworkStatusSold)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtworkRepo_ListExpiredAuctions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewArtworkRepo(mock)
	now := time.Now().UTC()
	ended := now.Add(-time.Hour)
	a := newTestArtwork(uuid.New())
	a.IsForSale = false
	a.IsAuction = true
	a.AuctionEndTime = &ended

	mock.ExpectQuery("SELECT .+ FROM artworks WHERE is_auction").
		WithArgs(domain.ArtworkStatusPublished, now, 100).
		WillReturnRows(artworkRow(a))

	result, err := repo.ListExpiredAuctions(context.Background(), now, 100)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].AuctionExpired(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
