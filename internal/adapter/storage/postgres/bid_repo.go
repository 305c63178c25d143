package postgres

import (
	"context"
	"errors"
	"fmt"

	"ai-art-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BidRepo implements ports.BidRepository.
type BidRepo struct {
	pool Pool
}

// NewBidRepo creates a new BidRepo.
func NewBidRepo(pool Pool) *BidRepo {
	return &BidRepo{pool: pool}
}

// Insert writes a bid within the settlement transaction.
func (r *BidRepo) Insert(ctx context.Context, tx pgx.Tx, b *domain.Bid) error {
	query := `INSERT INTO bids (id, artwork_id, bidder_id, amount, is_winning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, b.ID, b.ArtworkID, b.BidderID, b.Amount, b.IsWinning, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// GetWinningForUpdate fetches the winning bid with pessimistic locking.
// Returns (nil, nil) when the auction has no bids. This MUST be called
// within a transaction.
func (r *BidRepo) GetWinningForUpdate(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID) (*domain.Bid, error) {
	query := `SELECT id, artwork_id, bidder_id, amount, is_winning, created_at
		FROM bids WHERE artwork_id = $1 AND is_winning = TRUE FOR UPDATE`
	return r.scanBid(tx.QueryRow(ctx, query, artworkID))
}

// GetWinning fetches the winning bid without locking.
func (r *BidRepo) GetWinning(ctx context.Context, artworkID uuid.UUID) (*domain.Bid, error) {
	query := `SELECT id, artwork_id, bidder_id, amount, is_winning, created_at
		FROM bids WHERE artwork_id = $1 AND is_winning = TRUE`
	return r.scanBid(r.pool.QueryRow(ctx, query, artworkID))
}

// ClearWinning drops the winning flag from every bid on the artwork.
func (r *BidRepo) ClearWinning(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID) error {
	query := `UPDATE bids SET is_winning = FALSE WHERE artwork_id = $1 AND is_winning = TRUE`

	if _, err := tx.Exec(ctx, query, artworkID); err != nil {
		return fmt.Errorf("clear winning bid: %w", err)
	}
	return nil
}

// ListByArtwork returns bids on an artwork, highest first.
func (r *BidRepo) ListByArtwork(ctx context.Context, artworkID uuid.UUID, limit int) ([]*domain.Bid, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT id, artwork_id, bidder_id, amount, is_winning, created_at
		FROM bids WHERE artwork_id = $1 ORDER BY amount DESC, created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, artworkID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		b, err := r.scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}
	return bids, nil
}

func (r *BidRepo) scanBid(row pgx.Row) (*domain.Bid, error) {
	b := &domain.Bid{}
	err := row.Scan(&b.ID, &b.ArtworkID, &b.BidderID, &b.Amount, &b.IsWinning, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bid: %w", err)
	}
	return b, nil
}
