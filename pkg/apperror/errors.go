package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Marketplace Business Logic (ART) ----

func ErrArtworkNotFound() *AppError {
	return New("ART_001", "Artwork not found", http.StatusNotFound)
}

func ErrNotForSale() *AppError {
	return New("ART_002", "Artwork is not for sale", http.StatusBadRequest)
}

func ErrSelfTrade() *AppError {
	return New("ART_003", "Cannot purchase or bid on your own artwork", http.StatusBadRequest)
}

func ErrNotAnAuction() *AppError {
	return New("ART_004", "Artwork is not an auction listing", http.StatusBadRequest)
}

func ErrAuctionClosed() *AppError {
	return New("ART_005", "Auction has ended", http.StatusBadRequest)
}

func ErrBidTooLow(message string) *AppError {
	return New("ART_006", message, http.StatusBadRequest)
}

func ErrInvalidListing(message string) *AppError {
	return New("ART_007", message, http.StatusBadRequest)
}

// ---- Wallet & Funds (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- AI Generation (GEN) ----

func ErrGenerationFailed(err error) *AppError {
	return Wrap("GEN_001", "Image generation failed", http.StatusBadGateway, err)
}

func ErrTaskNotFound() *AppError {
	return New("GEN_002", "Generation task not found", http.StatusNotFound)
}

func ErrTaskNotCompleted() *AppError {
	return New("GEN_003", "Generation task has no completed image", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Settlement lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic bad-request validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
