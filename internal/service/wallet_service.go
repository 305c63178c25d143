package service

import (
	"context"
	"fmt"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(walletRepo ports.WalletRepository, log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{walletRepo: walletRepo, log: log}
}

// Balance returns the user's wallet.
func (s *WalletServiceImpl) Balance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// TopUp credits the wallet. Amount must be positive.
func (s *WalletServiceImpl) TopUp(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.walletRepo.Credit(ctx, userID, amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Int64("balance", wallet.Balance).
		Msg("wallet topped up")
	return wallet, nil
}
