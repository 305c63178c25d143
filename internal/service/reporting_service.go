package service

import (
	"context"
	"fmt"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
)

// ReportingServiceImpl implements ports.ReportingService over the
// append-only ledger.
type ReportingServiceImpl struct {
	txRepo ports.TransactionRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(txRepo ports.TransactionRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{txRepo: txRepo}
}

// GetTransaction returns one ledger entry by id.
func (s *ReportingServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return txn, nil
}

// ListTransactions returns ledger entries matching the filter.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]*domain.Transaction, error) {
	txns, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// Stats returns marketplace-wide aggregates.
func (s *ReportingServiceImpl) Stats(ctx context.Context) (*ports.MarketplaceStats, error) {
	stats, err := s.txRepo.GetStats(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get marketplace stats: %w", err))
	}
	return stats, nil
}
