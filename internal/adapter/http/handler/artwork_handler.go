package handler

import (
	"strconv"
	"time"

	"ai-art-marketplace/internal/adapter/http/dto"
	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"
	"ai-art-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ArtworkHandler handles gallery browsing and listing management.
type ArtworkHandler struct {
	artworkSvc ports.ArtworkService
}

// NewArtworkHandler creates a new ArtworkHandler.
func NewArtworkHandler(artworkSvc ports.ArtworkService) *ArtworkHandler {
	return &ArtworkHandler{artworkSvc: artworkSvc}
}

// List handles GET /api/v1/artworks.
// Query params: for_sale, auction, owner_id, status, limit, offset.
func (h *ArtworkHandler) List(c *gin.Context) {
	var filter ports.ArtworkFilter

	if v := c.Query("for_sale"); v != "" {
		forSale := v == "true"
		filter.ForSale = &forSale
	}
	if v := c.Query("auction"); v != "" {
		auction := v == "true"
		filter.Auction = &auction
	}
	if v := c.Query("owner_id"); v != "" {
		ownerID, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid owner_id"))
			return
		}
		filter.OwnerID = &ownerID
	}
	if v := c.Query("status"); v != "" {
		status := domain.ArtworkStatus(v)
		filter.Status = &status
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	artworks, err := h.artworkSvc.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ArtworkResponse, 0, len(artworks))
	for _, a := range artworks {
		items = append(items, toArtworkResponse(a))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/artworks/:id.
func (h *ArtworkHandler) Get(c *gin.Context) {
	artworkID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrArtworkNotFound())
		return
	}

	artwork, err := h.artworkSvc.Get(c.Request.Context(), artworkID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toArtworkResponse(artwork))
}

// UpdateListing handles PUT /api/v1/artworks/:id/listing.
func (h *ArtworkHandler) UpdateListing(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	artworkID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrArtworkNotFound())
		return
	}

	var req dto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	artwork, err := h.artworkSvc.UpdateListing(c.Request.Context(), ownerID, artworkID, ports.ListArtworkParams{
		Price:          req.Price,
		IsForSale:      req.IsForSale,
		IsAuction:      req.IsAuction,
		AuctionEndTime: req.AuctionEndTime,
		MinimumBid:     req.MinimumBid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toArtworkResponse(artwork))
}

// Bids handles GET /api/v1/artworks/:id/bids.
func (h *ArtworkHandler) Bids(c *gin.Context) {
	artworkID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrArtworkNotFound())
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	bids, err := h.artworkSvc.Bids(c.Request.Context(), artworkID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.BidResponse, 0, len(bids))
	for _, b := range bids {
		items = append(items, toBidResponse(b))
	}
	response.OK(c, items)
}

func toArtworkResponse(a *domain.Artwork) dto.ArtworkResponse {
	resp := dto.ArtworkResponse{
		ID:          a.ID.String(),
		OwnerID:     a.OwnerID.String(),
		CreatorID:   a.CreatorID.String(),
		Title:       a.Title,
		Description: a.Description,
		ImageURL:    a.ImageURL,
		Prompt:      a.Prompt,
		Model:       a.Model,
		Price:       a.Price,
		IsForSale:   a.IsForSale,
		IsAuction:   a.IsAuction,
		MinimumBid:  a.MinimumBid,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.AuctionEndTime != nil {
		s := a.AuctionEndTime.Format(time.RFC3339)
		resp.AuctionEndTime = &s
	}
	return resp
}
