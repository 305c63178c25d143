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
)

// ReportingHandler handles ledger and stats endpoints.
type ReportingHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingSvc ports.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions. The authenticated user
// sees entries where they are buyer or seller.
func (h *ReportingHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	filter := ports.TransactionFilter{UserID: &userID}
	if v := c.Query("status"); v != "" {
		status := domain.TransactionStatus(v)
		filter.Status = &status
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	txns, err := h.reportingSvc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		items = append(items, toTransactionResponse(txn))
	}
	response.OK(c, items)
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *ReportingHandler) GetTransaction(c *gin.Context) {
	txnID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponse(txn))
}

// GetStats handles GET /api/v1/stats.
func (h *ReportingHandler) GetStats(c *gin.Context) {
	stats, err := h.reportingSvc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

func toTransactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:          txn.ID.String(),
		Type:        string(txn.Type),
		BuyerID:     txn.BuyerID.String(),
		SellerID:    txn.SellerID.String(),
		ArtworkID:   txn.ArtworkID.String(),
		Amount:      txn.Amount,
		PlatformFee: txn.PlatformFee,
		Status:      string(txn.Status),
		CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.CompletedAt != nil {
		s := txn.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}
