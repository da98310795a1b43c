package models

import "time"

// RoomStatus is the lifecycle state of a live auction room.
type RoomStatus string

const (
	StatusUpcoming   RoomStatus = "UPCOMING"
	StatusLive       RoomStatus = "LIVE"
	StatusEndingSoon RoomStatus = "ENDING_SOON"
	StatusEnded      RoomStatus = "ENDED"
	StatusCancelled  RoomStatus = "CANCELLED"
	StatusSuspended  RoomStatus = "SUSPENDED"
)

// Terminal reports whether the status admits no further transitions.
func (s RoomStatus) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled || s == StatusSuspended
}

// Biddable reports whether bids may be accepted in this status.
func (s RoomStatus) Biddable() bool {
	return s == StatusLive || s == StatusEndingSoon
}

// User represents a participant in the auction
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Bid represents an accepted bid on an auction. Immutable once recorded.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant tracks one user currently joined to a room.
type Participant struct {
	User         User      `json:"user"`
	ConnectionID string    `json:"connection_id"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActivity time.Time `json:"last_activity"`
	TotalBids    int       `json:"total_bids"`
	IsActive     bool      `json:"is_active"`
}

// RoomConfig holds the per-room tunables. Zero values are replaced with
// defaults via Normalize.
type RoomConfig struct {
	MaxParticipants           int     `json:"max_participants" yaml:"maxParticipants"`
	BidIncrementPercentage    float64 `json:"bid_increment_percentage" yaml:"bidIncrementPercentage"`
	AbsoluteIncrementFloor    float64 `json:"absolute_increment_floor" yaml:"absoluteIncrementFloor"`
	EndingSoonThresholdSec    int     `json:"ending_soon_threshold_sec" yaml:"endingSoonThresholdSec"`
	AutoExtensionThresholdSec int     `json:"auto_extension_threshold_sec" yaml:"autoExtensionThresholdSec"`
	AutoExtensionSec          int     `json:"auto_extension_sec" yaml:"autoExtensionSec"`
	MaxAutoExtensions         int     `json:"max_auto_extensions" yaml:"maxAutoExtensions"`
	HeartbeatIntervalMs       int     `json:"heartbeat_interval_ms" yaml:"heartbeatIntervalMs"`
	InactivityTimeoutMs       int     `json:"inactivity_timeout_ms" yaml:"inactivityTimeoutMs"`
	RemovalGracePeriodSec     int     `json:"removal_grace_period_sec" yaml:"removalGracePeriodSec"`
}

// DefaultRoomConfig returns the config applied to rooms created without
// explicit overrides.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxParticipants:           500,
		BidIncrementPercentage:    5,
		AbsoluteIncrementFloor:    500,
		EndingSoonThresholdSec:    60,
		AutoExtensionThresholdSec: 30,
		AutoExtensionSec:          120,
		MaxAutoExtensions:         10,
		HeartbeatIntervalMs:       15000,
		InactivityTimeoutMs:       60000,
		RemovalGracePeriodSec:     1800,
	}
}

// Normalize fills any unset field from the defaults.
func (c RoomConfig) Normalize() RoomConfig {
	def := DefaultRoomConfig()
	if c.MaxParticipants <= 0 {
		c.MaxParticipants = def.MaxParticipants
	}
	if c.BidIncrementPercentage <= 0 {
		c.BidIncrementPercentage = def.BidIncrementPercentage
	}
	if c.AbsoluteIncrementFloor <= 0 {
		c.AbsoluteIncrementFloor = def.AbsoluteIncrementFloor
	}
	if c.EndingSoonThresholdSec <= 0 {
		c.EndingSoonThresholdSec = def.EndingSoonThresholdSec
	}
	if c.AutoExtensionThresholdSec <= 0 {
		c.AutoExtensionThresholdSec = def.AutoExtensionThresholdSec
	}
	if c.AutoExtensionSec <= 0 {
		c.AutoExtensionSec = def.AutoExtensionSec
	}
	if c.MaxAutoExtensions <= 0 {
		c.MaxAutoExtensions = def.MaxAutoExtensions
	}
	if c.HeartbeatIntervalMs <= 0 {
		c.HeartbeatIntervalMs = def.HeartbeatIntervalMs
	}
	if c.InactivityTimeoutMs <= 0 {
		c.InactivityTimeoutMs = def.InactivityTimeoutMs
	}
	if c.RemovalGracePeriodSec <= 0 {
		c.RemovalGracePeriodSec = def.RemovalGracePeriodSec
	}
	return c
}

// RoomStats aggregates bidding activity inside a room.
type RoomStats struct {
	TotalBids               int     `json:"total_bids"`
	UniqueBidders           int     `json:"unique_bidders"`
	PeakParticipants        int     `json:"peak_participants"`
	AverageBidIncrement     float64 `json:"average_bid_increment"`
	PriceIncreasePercentage float64 `json:"price_increase_percentage"`
}

// AuctionSnapshot is what the Ledger Store returns when a room is first loaded.
type AuctionSnapshot struct {
	AuctionID  string     `json:"auction_id"`
	StartPrice float64    `json:"start_price"`
	EndTime    time.Time  `json:"end_time"`
	Status     RoomStatus `json:"status"`
	TopBid     *Bid       `json:"top_bid,omitempty"`
}

// RoomSnapshot is the read-only view of a room handed to the transport layer.
type RoomSnapshot struct {
	AuctionID    string        `json:"auction_id"`
	Status       RoomStatus    `json:"status"`
	CurrentPrice float64       `json:"current_price"`
	LastBidder   *User         `json:"last_bidder,omitempty"`
	EndTime      time.Time     `json:"end_time"`
	Participants []Participant `json:"participants"`
	Stats        RoomStats     `json:"stats"`
}
