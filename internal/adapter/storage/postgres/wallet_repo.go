package postgres

import (
	"context"
	"errors"
	"fmt"

	"ai-art-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, lifetime_sales, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.Balance, w.LifetimeSales, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet by owner (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance, lifetime_sales, created_at, updated_at
		FROM wallets WHERE user_id = $1`
	return r.scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate fetches a wallet by owner with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance, lifetime_sales, created_at, updated_at
		FROM wallets WHERE user_id = $1 FOR UPDATE`
	return r.scanWallet(tx.QueryRow(ctx, query, userID))
}

// UpdateBalance sets the balance and bumps the lifetime sales counter within
// the transaction that locked the row.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64, salesDelta int64) error {
	query := `UPDATE wallets SET balance = $1, lifetime_sales = lifetime_sales + $2, updated_at = NOW()
		WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, salesDelta, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet balance: wallet %s not found", walletID)
	}
	return nil
}

// Credit atomically adds a positive amount to the wallet balance outside the
// settlement path (top-ups).
func (r *WalletRepo) Credit(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Wallet, error) {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, balance, lifetime_sales, created_at, updated_at`
	return r.scanWallet(r.pool.QueryRow(ctx, query, amount, userID))
}

func (r *WalletRepo) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.LifetimeSales, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
