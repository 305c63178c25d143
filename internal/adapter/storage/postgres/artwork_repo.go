package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const artworkColumns = `id, owner_id, creator_id, title, description, image_url,
	prompt, model, seed, price, is_for_sale, is_auction, auction_end_time,
	minimum_bid, status, created_at, updated_at`

// ArtworkRepo implements ports.ArtworkRepository.
type ArtworkRepo struct {
	pool Pool
}

// NewArtworkRepo creates a new ArtworkRepo.
func NewArtworkRepo(pool Pool) *ArtworkRepo {
	return &ArtworkRepo{pool: pool}
}

// Create inserts a new artwork into the database.
func (r *ArtworkRepo) Create(ctx context.Context, a *domain.Artwork) error {
	query := `INSERT INTO artworks (` + artworkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.OwnerID, a.CreatorID, a.Title, a.Description, a.ImageURL,
		a.Prompt, a.Model, a.Seed, a.Price, a.IsForSale, a.IsAuction,
		a.AuctionEndTime, a.MinimumBid, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artwork: %w", err)
	}
	return nil
}

// GetByID fetches an artwork by UUID (non-locking read).
func (r *ArtworkRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id = $1`
	return r.scanArtwork(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches an artwork with pessimistic locking. This MUST be
// called within a transaction; the row lock serializes settlements with any
// concurrent writers that bypass the distributed lock.
func (r *ArtworkRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE id = $1 FOR UPDATE`
	return r.scanArtwork(tx.QueryRow(ctx, query, id))
}

// List returns artworks matching the filter, newest first.
func (r *ArtworkRepo) List(ctx context.Context, filter ports.ArtworkFilter) ([]*domain.Artwork, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if filter.ForSale != nil {
		args = append(args, *filter.ForSale)
		conds = append(conds, "is_for_sale = $"+strconv.Itoa(len(args)))
	}
	if filter.Auction != nil {
		args = append(args, *filter.Auction)
		conds = append(conds, "is_auction = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + artworkColumns + ` FROM artworks`
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
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	defer rows.Close()

	return r.collectArtworks(rows)
}

// UpdateListing persists listing fields for an artwork outside the
// settlement path.
func (r *ArtworkRepo) UpdateListing(ctx context.Context, a *domain.Artwork) error {
	query := `UPDATE artworks SET price = $1, is_for_sale = $2, is_auction = $3,
		auction_end_time = $4, minimum_bid = $5, status = $6, updated_at = NOW()
		WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query,
		a.Price, a.IsForSale, a.IsAuction, a.AuctionEndTime, a.MinimumBid, a.Status, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artwork listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update artwork listing: artwork %s not found", a.ID)
	}
	return nil
}

// TransferOwnership moves the artwork to the new owner, clears listing flags
// and applies the terminal status within the settlement transaction.
func (r *ArtworkRepo) TransferOwnership(ctx context.Context, tx pgx.Tx, artworkID, newOwnerID uuid.UUID, status domain.ArtworkStatus) error {
	query := `UPDATE artworks SET owner_id = $1, is_for_sale = FALSE, is_auction = FALSE,
		auction_end_time = NULL, status = $2, updated_at = NOW()
		WHERE id = $3`

	tag, err := tx.Exec(ctx, query, newOwnerID, status, artworkID)
	if err != nil {
		return fmt.Errorf("transfer artwork ownership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transfer artwork ownership: artwork %s not found", artworkID)
	}
	return nil
}

// SetStatus updates the artwork status within a transaction.
func (r *ArtworkRepo) SetStatus(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID, status domain.ArtworkStatus) error {
	query := `UPDATE artworks SET status = $1, is_for_sale = FALSE, is_auction = FALSE, updated_at = NOW()
		WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, artworkID)
	if err != nil {
		return fmt.Errorf("set artwork status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set artwork status: artwork %s not found", artworkID)
	}
	return nil
}

// ListExpiredAuctions returns published auctions whose end time has passed.
func (r *ArtworkRepo) ListExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*domain.Artwork, error) {
	query := `SELECT ` + artworkColumns + ` FROM artworks
		WHERE is_auction = TRUE AND status = $1 AND auction_end_time IS NOT NULL AND auction_end_time <= $2
		ORDER BY auction_end_time ASC LIMIT $3`

	rows, err := r.pool.Query(ctx, query, domain.ArtworkStatusPublished, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired auctions: %w", err)
	}
	defer rows.Close()

	return r.collectArtworks(rows)
}

func (r *ArtworkRepo) collectArtworks(rows pgx.Rows) ([]*domain.Artwork, error) {
	var artworks []*domain.Artwork
	for rows.Next() {
		a, err := r.scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artworks: %w", err)
	}
	return artworks, nil
}

func (r *ArtworkRepo) scanArtwork(row pgx.Row) (*domain.Artwork, error) {
	a := &domain.Artwork{}
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.CreatorID, &a.Title, &a.Description, &a.ImageURL,
		&a.Prompt, &a.Model, &a.Seed, &a.Price, &a.IsForSale, &a.IsAuction,
		&a.AuctionEndTime, &a.MinimumBid, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan artwork: %w", err)
	}
	return a, nil
}
