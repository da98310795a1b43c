package events

import (
	"time"

	model "auction-rooms/internal/models"
)

// Event types fanned out to room participants
const (
	TypeStateUpdated        = "state-updated"        // authoritative price/end-time snapshot
	TypeBidAccepted         = "bid-accepted"         // a bid was applied
	TypeBidRejected         = "bid-rejected"         // a bid was turned down
	TypeOutbid              = "outbid"               // previous highest bidder lost the lead
	TypeEndingSoon          = "ending-soon"          // warning threshold crossed
	TypeEnded               = "ended"                // auction finalized
	TypeExtended            = "extended"             // end time pushed out
	TypeParticipantsUpdated = "participants-updated" // join/leave
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StateUpdatedPayload struct {
	AuctionID    string           `json:"auction_id"`
	Status       model.RoomStatus `json:"status"`
	CurrentPrice float64          `json:"current_price"`
	LastBidderID string           `json:"last_bidder_id,omitempty"`
	EndTime      time.Time        `json:"end_time"`
}

type BidAcceptedPayload struct {
	Bid          model.Bid `json:"bid"`
	CurrentPrice float64   `json:"current_price"`
}

type BidRejectedPayload struct {
	AuctionID       string  `json:"auction_id"`
	UserID          string  `json:"user_id"`
	Code            string  `json:"code"`
	Message         string  `json:"message"`
	MinimumRequired float64 `json:"minimum_required,omitempty"`
}

type OutbidPayload struct {
	AuctionID string  `json:"auction_id"`
	NewPrice  float64 `json:"new_price"`
	ByUserID  string  `json:"by_user_id"`
}

type EndingSoonPayload struct {
	AuctionID        string `json:"auction_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type EndedPayload struct {
	AuctionID  string      `json:"auction_id"`
	Winner     *model.User `json:"winner,omitempty"`
	FinalPrice float64     `json:"final_price"`
}

type ExtendedPayload struct {
	AuctionID  string    `json:"auction_id"`
	NewEndTime time.Time `json:"new_end_time"`
	Reason     string    `json:"reason"`
}

type ParticipantsUpdatedPayload struct {
	AuctionID string `json:"auction_id"`
	Count     int    `json:"count"`
}
