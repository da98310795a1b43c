package helpers

// Request/Response DTOs
type JoinRoomRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	Username     string `json:"username"`
	ConnectionID string `json:"connection_id"`
}

type SubmitBidRequest struct {
	AuctionID string  `json:"auction_id" binding:"required"`
	UserID    string  `json:"user_id" binding:"required"`
	Username  string  `json:"username"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	AuctionID string  `json:"auction_id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

type RejectionResponse struct {
	Code            string  `json:"code"`
	Message         string  `json:"message"`
	MinimumRequired float64 `json:"minimum_required,omitempty"`
	Shortfall       float64 `json:"shortfall,omitempty"`
}
