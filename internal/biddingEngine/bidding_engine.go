package bidding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"auction-rooms/internal/auctionerrors"
	"auction-rooms/internal/events"
	"auction-rooms/internal/ledger"
	model "auction-rooms/internal/models"
	"auction-rooms/internal/room"
	"auction-rooms/internal/wallet"
	"auction-rooms/utils"
)

// fundsMargin is the safety factor applied to the funds check, covering
// fees and price volatility between bid and settlement.
const fundsMargin = 1.1

// RoomProvider resolves auction rooms. Implemented by the registry.
type RoomProvider interface {
	GetOrCreateRoom(ctx context.Context, auctionID string) (*room.Room, error)
	Room(auctionID string) *room.Room
}

// BanChecker is the hook point for per-auction bans. Concrete ban storage
// lives with an external collaborator.
type BanChecker interface {
	IsBanned(auctionID, userID string) bool
}

// BidResult is returned to the transport layer for every submission.
type BidResult struct {
	Success         bool       `json:"success"`
	Bid             *model.Bid `json:"bid,omitempty"`
	Code            string     `json:"code,omitempty"`
	Message         string     `json:"message,omitempty"`
	MinimumRequired float64    `json:"minimum_required,omitempty"`
	Shortfall       float64    `json:"shortfall,omitempty"`
	OutbidUserID    string     `json:"outbid_user_id,omitempty"`
}

// Engine turns raw bid submissions into accepted bids or typed rejections,
// with side effects applied exactly once.
type Engine struct {
	rooms     RoomProvider
	store     ledger.LedgerStore
	funds     wallet.WalletService
	bans      BanChecker
	publisher events.Publisher
}

// NewEngine creates a new bidding engine instance. bans may be nil.
func NewEngine(rooms RoomProvider, store ledger.LedgerStore, funds wallet.WalletService, bans BanChecker, publisher events.Publisher) *Engine {
	return &Engine{
		rooms:     rooms,
		store:     store,
		funds:     funds,
		bans:      bans,
		publisher: publisher,
	}
}

// SubmitBid validates and applies one bid against the room's authoritative
// state. Bids racing for the same room serialize on the room lock; the bid
// processed second is re-validated against the already-updated price and
// receives a fresh minimum rather than being dropped or applied stale.
func (e *Engine) SubmitBid(ctx context.Context, auctionID, userID string, amount float64, user model.User) (BidResult, error) {
	if auctionID == "" || userID == "" {
		return e.reject(auctionID, userID, BidResult{
			Code:    auctionerrors.CodeInvalidData,
			Message: "missing auction or user ID",
		}, fmt.Errorf("engine: %w - missing auctionID or userID", auctionerrors.ErrInvalidData))
	}

	r, err := e.rooms.GetOrCreateRoom(ctx, auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			return e.reject(auctionID, userID, BidResult{
				Code:    auctionerrors.CodeAuctionNotFound,
				Message: "auction not found",
			}, fmt.Errorf("engine: %w", err))
		}
		return e.reject(auctionID, userID, BidResult{
			Code:    auctionerrors.CodeSystemError,
			Message: "failed to load auction",
		}, fmt.Errorf("engine: load room for auction %s: %w", auctionID, err))
	}

	// One in-flight bid per (auction, user). The marker stays held across
	// the wallet and ledger calls below and is released on every exit path.
	if !r.TryBeginPending(userID) {
		return e.reject(auctionID, userID, BidResult{
			Code:    auctionerrors.CodeRateLimited,
			Message: "a previous bid from this user is still being processed",
		}, fmt.Errorf("engine: %w", auctionerrors.ErrRateLimited))
	}
	defer r.EndPending(userID)

	res, out, err := e.process(ctx, r, userID, amount, user)
	if err != nil {
		return e.reject(auctionID, userID, res, err)
	}

	e.announce(r, out)

	utils.Info("bid accepted", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
		"bid_id":     res.Bid.BidID,
		"amount":     res.Bid.Amount,
	})
	return res, nil
}

// outcome carries the events to publish once the room lock is released.
type outcome struct {
	bid        model.Bid
	newPrice   float64
	outbidUser string
	extended   bool
	newEndTime time.Time
}

// process runs the validation/apply pipeline under the room lock. The lock
// is held across the wallet and ledger calls so that bids for this room
// stay totally ordered.
func (e *Engine) process(ctx context.Context, r *room.Room, userID string, amount float64, user model.User) (BidResult, outcome, error) {
	r.Lock()
	defer r.Unlock()

	switch status := r.Status(); {
	case status.Terminal():
		return BidResult{
			Code:    auctionerrors.CodeAuctionEnded,
			Message: "auction has ended",
		}, outcome{}, fmt.Errorf("engine: auction %s is %s: %w", r.AuctionID, status, auctionerrors.ErrAuctionEnded)
	case !status.Biddable():
		return BidResult{
			Code:    auctionerrors.CodeAuctionNotStarted,
			Message: "auction is not accepting bids yet",
		}, outcome{}, fmt.Errorf("engine: auction %s is %s: %w", r.AuctionID, status, auctionerrors.ErrAuctionNotStarted)
	}

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return BidResult{
			Code:    auctionerrors.CodeInvalidData,
			Message: "bid amount must be a positive finite number",
		}, outcome{}, fmt.Errorf("engine: %w - non-positive or non-finite amount", auctionerrors.ErrInvalidData)
	}

	if minimum := r.MinimumBid(); amount < minimum {
		return BidResult{
			Code:            auctionerrors.CodeBidTooLow,
			Message:         fmt.Sprintf("minimum acceptable bid is %.2f", minimum),
			MinimumRequired: minimum,
		}, outcome{}, fmt.Errorf("engine: %w - current price is %.2f, minimum is %.2f", auctionerrors.ErrBidTooLow, r.Price(), minimum)
	}

	if r.LastBidderID() == userID {
		return BidResult{
			Code:    auctionerrors.CodeInvalidData,
			Message: "cannot outbid yourself",
		}, outcome{}, fmt.Errorf("engine: %w - cannot outbid yourself", auctionerrors.ErrInvalidData)
	}

	balance, err := e.funds.GetAvailableBalance(ctx, userID)
	if err != nil {
		// a wallet failure rejects the bid, never implicitly accepts it
		return BidResult{
			Code:    auctionerrors.CodeSystemError,
			Message: "failed to verify available funds",
		}, outcome{}, fmt.Errorf("engine: balance check for user %s: %w", userID, err)
	}
	if required := amount * fundsMargin; balance < required {
		return BidResult{
			Code:      auctionerrors.CodeInsufficientFunds,
			Message:   fmt.Sprintf("available balance %.2f is below the required %.2f", balance, required),
			Shortfall: required - balance,
		}, outcome{}, fmt.Errorf("engine: %w - short %.2f", auctionerrors.ErrInsufficientFunds, required-balance)
	}

	if e.bans != nil && e.bans.IsBanned(r.AuctionID, userID) {
		return BidResult{
			Code:    auctionerrors.CodeUserBanned,
			Message: "user is banned from this auction",
		}, outcome{}, fmt.Errorf("engine: %w", auctionerrors.ErrUserBanned)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: r.AuctionID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	// persist first; on failure the in-memory state stays untouched
	if err := e.store.AppendBid(ctx, bid); err != nil {
		return BidResult{
			Code:    auctionerrors.CodeSystemError,
			Message: "failed to record bid",
		}, outcome{}, fmt.Errorf("engine: append bid %s: %w", bid.BidID, err)
	}

	out := outcome{bid: bid}
	out.outbidUser = r.ApplyBid(bid, user)
	out.newPrice = r.Price()
	out.extended, out.newEndTime = r.MaybeAutoExtend(time.Now())

	result := BidResult{Success: true, Bid: &bid}
	if out.outbidUser != "" && out.outbidUser != userID {
		result.OutbidUserID = out.outbidUser
	}
	return result, out, nil
}

// announce fans the post-acceptance events out to the room.
func (e *Engine) announce(r *room.Room, out outcome) {
	if e.publisher == nil {
		return
	}

	e.publisher.Publish(r.AuctionID, events.Event{
		Type: events.TypeBidAccepted,
		Payload: events.BidAcceptedPayload{
			Bid:          out.bid,
			CurrentPrice: out.newPrice,
		},
	})
	if out.outbidUser != "" && out.outbidUser != out.bid.UserID {
		e.publisher.Direct(r.AuctionID, out.outbidUser, events.Event{
			Type: events.TypeOutbid,
			Payload: events.OutbidPayload{
				AuctionID: r.AuctionID,
				NewPrice:  out.newPrice,
				ByUserID:  out.bid.UserID,
			},
		})
	}
	if out.extended {
		e.publisher.Publish(r.AuctionID, events.Event{
			Type: events.TypeExtended,
			Payload: events.ExtendedPayload{
				AuctionID:  r.AuctionID,
				NewEndTime: out.newEndTime,
				Reason:     "late bid",
			},
		})
	}
	e.publisher.Publish(r.AuctionID, events.Event{
		Type:    events.TypeStateUpdated,
		Payload: r.StatePayload(),
	})
}

// reject logs and publishes a typed rejection back to the submitting user.
func (e *Engine) reject(auctionID, userID string, res BidResult, err error) (BidResult, error) {
	res.Success = false

	utils.Warn("bid rejected", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
		"code":       res.Code,
		"error":      err.Error(),
	})
	if e.publisher != nil && auctionID != "" && userID != "" {
		e.publisher.Direct(auctionID, userID, events.Event{
			Type: events.TypeBidRejected,
			Payload: events.BidRejectedPayload{
				AuctionID:       auctionID,
				UserID:          userID,
				Code:            res.Code,
				Message:         res.Message,
				MinimumRequired: res.MinimumRequired,
			},
		})
	}
	return res, err
}

// GetRecentBids returns the newest accepted bids for a live room from its
// in-memory ring, without touching the ledger.
func (e *Engine) GetRecentBids(auctionID string, limit int) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("engine: %w - empty auction ID", auctionerrors.ErrInvalidData)
	}
	r := e.rooms.Room(auctionID)
	if r == nil {
		return nil, fmt.Errorf("engine: no live room for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return r.RecentBids(limit), nil
}
