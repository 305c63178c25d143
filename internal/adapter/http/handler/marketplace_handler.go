package handler

import (
	"time"

	"ai-art-marketplace/internal/adapter/http/dto"
	"ai-art-marketplace/internal/adapter/http/middleware"
	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"
	"ai-art-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID extracts the authenticated user id set by the JWT middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// pathUUID parses a uuid path parameter.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// MarketplaceHandler exposes the settlement engine: purchases and bids.
type MarketplaceHandler struct {
	settlementSvc ports.SettlementService
}

// NewMarketplaceHandler creates a new MarketplaceHandler.
func NewMarketplaceHandler(settlementSvc ports.SettlementService) *MarketplaceHandler {
	return &MarketplaceHandler{settlementSvc: settlementSvc}
}

// Purchase handles POST /api/v1/artworks/:id/purchase.
func (h *MarketplaceHandler) Purchase(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	artworkID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrArtworkNotFound())
		return
	}

	result, err := h.settlementSvc.Purchase(c.Request.Context(), buyerID, artworkID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PurchaseResponse{
		TransactionID: result.Transaction.ID.String(),
		ArtworkID:     result.Artwork.ID.String(),
		Amount:        result.Transaction.Amount,
		PlatformFee:   result.Transaction.PlatformFee,
		Status:        string(result.Transaction.Status),
	})
}

// PlaceBid handles POST /api/v1/artworks/:id/bids.
func (h *MarketplaceHandler) PlaceBid(c *gin.Context) {
	bidderID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	artworkID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrArtworkNotFound())
		return
	}

	var req dto.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.settlementSvc.PlaceBid(c.Request.Context(), bidderID, artworkID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toBidResponse(result.Bid))
}

func toBidResponse(bid *domain.Bid) dto.BidResponse {
	return dto.BidResponse{
		ID:        bid.ID.String(),
		ArtworkID: bid.ArtworkID.String(),
		BidderID:  bid.BidderID.String(),
		Amount:    bid.Amount,
		IsWinning: bid.IsWinning,
		CreatedAt: bid.CreatedAt.Format(time.RFC3339),
	}
}
