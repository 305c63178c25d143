package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create writes a ledger entry within the settlement transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, type, buyer_id, seller_id, artwork_id, amount, platform_fee, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.Type, t.BuyerID, t.SellerID, t.ArtworkID,
		t.Amount, t.PlatformFee, t.Status, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by UUID. Returns (nil, nil) when not found.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, type, buyer_id, seller_id, artwork_id, amount, platform_fee, status, created_at, completed_at
		FROM transactions WHERE id = $1`
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// List returns ledger entries matching the filter, newest first. A UserID
// filter matches either side of the trade.
func (r *TransactionRepo) List(ctx context.Context, filter ports.TransactionFilter) ([]*domain.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		n := strconv.Itoa(len(args))
		conds = append(conds, "(buyer_id = $"+n+" OR seller_id = $"+n+")")
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, type, buyer_id, seller_id, artwork_id, amount, platform_fee, status, created_at, completed_at
		FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	query += " LIMIT $" + strconv.Itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// GetStats aggregates the completed ledger plus current listing counts.
func (r *TransactionRepo) GetStats(ctx context.Context) (*ports.MarketplaceStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM transactions WHERE status = 'completed'),
		(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status = 'completed'),
		(SELECT COALESCE(SUM(platform_fee), 0) FROM transactions WHERE status = 'completed'),
		(SELECT COUNT(*) FROM artworks WHERE is_for_sale = TRUE AND status = 'published'),
		(SELECT COUNT(*) FROM artworks WHERE is_auction = TRUE AND status = 'published'),
		(SELECT COUNT(*) FROM users)`

	s := &ports.MarketplaceStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalSales, &s.TotalVolume, &s.TotalFees,
		&s.ArtworksListed, &s.AuctionsOpen, &s.RegisteredUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("get marketplace stats: %w", err)
	}
	return s, nil
}

func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Type, &t.BuyerID, &t.SellerID, &t.ArtworkID,
		&t.Amount, &t.PlatformFee, &t.Status, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
