package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("ART_001", "Artwork not found", http.StatusNotFound)
	assert.Equal(t, "[ART_001] Artwork not found", e.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("pg down"))
	assert.Equal(t, "[SYS_001] Internal server error: pg down", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := InternalError(fmt.Errorf("begin tx: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestErrorConstructors(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrArtworkNotFound(), "ART_001", http.StatusNotFound},
		{ErrNotForSale(), "ART_002", http.StatusBadRequest},
		{ErrSelfTrade(), "ART_003", http.StatusBadRequest},
		{ErrNotAnAuction(), "ART_004", http.StatusBadRequest},
		{ErrAuctionClosed(), "ART_005", http.StatusBadRequest},
		{ErrBidTooLow("Bid must exceed the current winning bid"), "ART_006", http.StatusBadRequest},
		{ErrInvalidListing("auction requires a minimum bid"), "ART_007", http.StatusBadRequest},
		{ErrInsufficientFunds(), "PAY_001", http.StatusPaymentRequired},
		{ErrInvalidAmount(), "PAY_002", http.StatusBadRequest},
		{ErrNotFound("wallet"), "PAY_004", http.StatusNotFound},
		{ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{ErrUsernameExists(), "AUTH_002", http.StatusConflict},
		{ErrInvalidToken(), "AUTH_003", http.StatusUnauthorized},
		{ErrTaskNotFound(), "GEN_002", http.StatusNotFound},
		{ErrTaskNotCompleted(), "GEN_003", http.StatusBadRequest},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{ErrLockTimeout(errors.New("timeout")), "SYS_002", http.StatusServiceUnavailable},
		{InternalError(errors.New("boom")), "SYS_001", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus)
	}
}
