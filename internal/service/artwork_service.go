package service

import (
	"context"
	"fmt"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArtworkServiceImpl implements ports.ArtworkService. It never mutates
// ownership or balances; that is the settlement engine's territory.
type ArtworkServiceImpl struct {
	artworkRepo ports.ArtworkRepository
	bidRepo     ports.BidRepository
	log         zerolog.Logger
}

// NewArtworkService creates a new ArtworkServiceImpl.
func NewArtworkService(artworkRepo ports.ArtworkRepository, bidRepo ports.BidRepository, log zerolog.Logger) *ArtworkServiceImpl {
	return &ArtworkServiceImpl{artworkRepo: artworkRepo, bidRepo: bidRepo, log: log}
}

// Get returns one artwork by id.
func (s *ArtworkServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	artwork, err := s.artworkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find artwork: %w", err))
	}
	if artwork == nil {
		return nil, apperror.ErrArtworkNotFound()
	}
	return artwork, nil
}

// List returns artworks matching the filter.
func (s *ArtworkServiceImpl) List(ctx context.Context, filter ports.ArtworkFilter) ([]*domain.Artwork, error) {
	artworks, err := s.artworkRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list artworks: %w", err))
	}
	return artworks, nil
}

// UpdateListing changes price and sale/auction flags. Only the owner may
// relist, and sold or archived artworks are immutable.
func (s *ArtworkServiceImpl) UpdateListing(ctx context.Context, ownerID, artworkID uuid.UUID, params ports.ListArtworkParams) (*domain.Artwork, error) {
	artwork, err := s.artworkRepo.GetByID(ctx, artworkID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find artwork: %w", err))
	}
	if artwork == nil {
		return nil, apperror.ErrArtworkNotFound()
	}
	if artwork.OwnerID != ownerID {
		return nil, apperror.ErrArtworkNotFound()
	}
	if artwork.Status == domain.ArtworkStatusSold || artwork.Status == domain.ArtworkStatusArchived {
		return nil, apperror.ErrInvalidListing("a sold or archived artwork cannot be relisted")
	}

	// An auction that already holds a winning bid is committed; changing the
	// listing would orphan the bid and let the artwork sell twice.
	if artwork.IsAuction {
		winning, err := s.bidRepo.GetWinning(ctx, artworkID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("find winning bid: %w", err))
		}
		if winning != nil {
			return nil, apperror.ErrInvalidListing("an auction with bids cannot be relisted")
		}
	}

	if err := validateListing(params.IsForSale, params.IsAuction, params.Price, params.MinimumBid, params.AuctionEndTime); err != nil {
		return nil, err
	}

	artwork.Price = params.Price
	artwork.IsForSale = params.IsForSale
	artwork.IsAuction = params.IsAuction
	artwork.AuctionEndTime = params.AuctionEndTime
	artwork.MinimumBid = params.MinimumBid
	artwork.Status = domain.ArtworkStatusPublished
	artwork.UpdatedAt = time.Now().UTC()

	if err := s.artworkRepo.UpdateListing(ctx, artwork); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update listing: %w", err))
	}

	s.log.Info().
		Str("artwork_id", artwork.ID.String()).
		Bool("for_sale", artwork.IsForSale).
		Bool("auction", artwork.IsAuction).
		Msg("listing updated")
	return artwork, nil
}

// Bids returns the bid history for an artwork, highest first.
func (s *ArtworkServiceImpl) Bids(ctx context.Context, artworkID uuid.UUID, limit int) ([]*domain.Bid, error) {
	artwork, err := s.artworkRepo.GetByID(ctx, artworkID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find artwork: %w", err))
	}
	if artwork == nil {
		return nil, apperror.ErrArtworkNotFound()
	}

	bids, err := s.bidRepo.ListByArtwork(ctx, artworkID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list bids: %w", err))
	}
	return bids, nil
}
