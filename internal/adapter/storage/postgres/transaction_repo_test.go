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

func newTestTransaction() *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypePurchase,
		BuyerID:     uuid.New(),
		SellerID:    uuid.New(),
		ArtworkID:   uuid.New(),
		Amount:      10000,
		PlatformFee: 500,
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
}

func transactionColumns() []string {
	return []string{"id", "type", "buyer_id", "seller_id", "artwork_id", "amount", "platform_fee", "status", "created_at", "completed_at"}
}

func transactionRow(tr *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionColumns()).AddRow(
		tr.ID, tr.Type, tr.BuyerID, tr.SellerID, tr.ArtworkID,
		tr.Amount, tr.PlatformFee, tr.Status, tr.CreatedAt, tr.CompletedAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tr.ID, tr.Type, tr.BuyerID, tr.SellerID, tr.ArtworkID,
			tr.Amount, tr.PlatformFee, tr.Status, tr.CreatedAt, tr.CompletedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, tr)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(tr.ID).
		WillReturnRows(transactionRow(tr))

	result, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(500), result.PlatformFee)
	assert.Equal(t, int64(9500), result.SellerAmount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_ByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	tr := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE .+buyer_id .+ OR seller_id").
		WithArgs(tr.BuyerID, 50).
		WillReturnRows(transactionRow(tr))

	result, err := repo.List(context.Background(), ports.TransactionFilter{UserID: &tr.BuyerID})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, tr.ID, result[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	rows := pgxmock.NewRows([]string{"sales", "volume", "fees", "listed", "auctions", "users"}).
		AddRow(int64(12), int64(240000), int64(12000), int64(7), int64(3), int64(40))
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalSales)
	assert.Equal(t, int64(240000), stats.TotalVolume)
	assert.Equal(t, int64(12000), stats.TotalFees)
	assert.Equal(t, int64(40), stats.RegisteredUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
