package dto

import "time"

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,username"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response body for successful register/login.
type AuthResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // Unix timestamp
}

// TopupRequest is the request body for wallet topup.
type TopupRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WalletResponse is the response for balance queries and topups.
type WalletResponse struct {
	Balance       int64 `json:"balance"`
	LifetimeSales int64 `json:"lifetime_sales"`
}

// GenerateRequest is the request body for an AI generation task.
type GenerateRequest struct {
	Prompt         string  `json:"prompt" binding:"required,max=2000"`
	NegativePrompt string  `json:"negative_prompt" binding:"max=2000"`
	Width          int     `json:"width" binding:"omitempty,min=64,max=2048"`
	Height         int     `json:"height" binding:"omitempty,min=64,max=2048"`
	Steps          int     `json:"steps" binding:"omitempty,min=1,max=150"`
	CfgScale       float64 `json:"cfg_scale" binding:"omitempty,min=1,max=30"`
	Seed           int64   `json:"seed"`
}

// GenerationTaskResponse is the response body for a generation task.
type GenerationTaskResponse struct {
	ID           string  `json:"id"`
	Prompt       string  `json:"prompt"`
	Model        string  `json:"model,omitempty"`
	Seed         int64   `json:"seed"`
	Status       string  `json:"status"`
	ImageURL     string  `json:"image_url,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}

// ListingRequest carries the listing fields shared by saving a generation
// and relisting an owned artwork.
type ListingRequest struct {
	Price          int64      `json:"price"`
	IsForSale      bool       `json:"is_for_sale"`
	IsAuction      bool       `json:"is_auction"`
	AuctionEndTime *time.Time `json:"auction_end_time,omitempty"`
	MinimumBid     int64      `json:"minimum_bid"`
}

// SaveArtworkRequest is the request body for saving a completed generation
// task to the gallery.
type SaveArtworkRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	ListingRequest
}

// ArtworkResponse is the response body for gallery items.
type ArtworkResponse struct {
	ID             string  `json:"id"`
	OwnerID        string  `json:"owner_id"`
	CreatorID      string  `json:"creator_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	Prompt         string  `json:"prompt,omitempty"`
	Model          string  `json:"model,omitempty"`
	Price          int64   `json:"price"`
	IsForSale      bool    `json:"is_for_sale"`
	IsAuction      bool    `json:"is_auction"`
	AuctionEndTime *string `json:"auction_end_time,omitempty"`
	MinimumBid     int64   `json:"minimum_bid"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// PurchaseResponse is the response body for a completed purchase.
type PurchaseResponse struct {
	TransactionID string `json:"transaction_id"`
	ArtworkID     string `json:"artwork_id"`
	Amount        int64  `json:"amount"`
	PlatformFee   int64  `json:"platform_fee"`
	Status        string `json:"status"`
}

// BidRequest is the request body for placing a bid.
type BidRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// BidResponse is the response body for an accepted or listed bid.
type BidResponse struct {
	ID        string `json:"id"`
	ArtworkID string `json:"artwork_id"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount"`
	IsWinning bool   `json:"is_winning"`
	CreatedAt string `json:"created_at"`
}

// TransactionResponse is the response body for ledger entries.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	BuyerID     string  `json:"buyer_id"`
	SellerID    string  `json:"seller_id"`
	ArtworkID   string  `json:"artwork_id"`
	Amount      int64   `json:"amount"`
	PlatformFee int64   `json:"platform_fee"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// NotificationResponse is the response body for notifications.
type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}
