package room

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"auction-rooms/internal/auctionerrors"
	"auction-rooms/internal/events"
	model "auction-rooms/internal/models"
	"auction-rooms/utils"
)

// recentBidCap bounds the in-memory ring of recent bids per room.
const recentBidCap = 100

// Finalizer is the slice of the Ledger Store a room needs to write its
// terminal state.
type Finalizer interface {
	FinalizeAuction(ctx context.Context, auctionID string, status model.RoomStatus, endedAt time.Time) error
}

// Room is the in-memory authoritative state for one live auction.
//
// The embedded mutex is the room's serialization domain: the bidding engine
// holds it across a whole bid (including the ledger and wallet calls) and
// timer-driven transitions take it before touching state, so everything that
// mutates a room runs one-at-a-time. Methods documented as "r must be held"
// are only called under that lock; the remaining exported methods lock
// internally and must not be called while holding it.
type Room struct {
	sync.Mutex

	AuctionID string

	cfg model.RoomConfig

	status       model.RoomStatus
	startPrice   float64
	currentPrice float64
	lastBidder   *model.User
	endTime      time.Time
	endedAt      time.Time
	participants map[string]*model.Participant
	bidders      map[string]struct{}
	stats        model.RoomStats
	extensions   int

	recent     []model.Bid
	recentHead int

	// pending-bid guard; separate mutex so a duplicate submission from the
	// same user is rejected immediately instead of queueing behind the room
	// lock
	pendingMu sync.Mutex
	pending   map[string]struct{}

	// timerGen invalidates timers scheduled against a superseded end time
	timerGen     uint64
	warningTimer *time.Timer
	endTimer     *time.Timer

	finalizer Finalizer
	publisher events.Publisher
}

// New builds a room from a ledger snapshot and schedules its timers.
func New(snap model.AuctionSnapshot, cfg model.RoomConfig, finalizer Finalizer, publisher events.Publisher) *Room {
	r := &Room{
		AuctionID:    snap.AuctionID,
		cfg:          cfg.Normalize(),
		status:       snap.Status,
		startPrice:   snap.StartPrice,
		currentPrice: snap.StartPrice,
		endTime:      snap.EndTime,
		participants: make(map[string]*model.Participant),
		bidders:      make(map[string]struct{}),
		pending:      make(map[string]struct{}),
	}
	r.finalizer = finalizer
	r.publisher = publisher

	if top := snap.TopBid; top != nil {
		r.currentPrice = top.Amount
		r.lastBidder = &model.User{UserID: top.UserID}
	}

	r.Lock()
	r.scheduleTimers()
	r.Unlock()

	return r
}

// Config returns the room tunables. Immutable after construction.
func (r *Room) Config() model.RoomConfig { return r.cfg }

// Status returns the lifecycle state. r must be held.
func (r *Room) Status() model.RoomStatus { return r.status }

// Price returns the authoritative top price. r must be held.
func (r *Room) Price() float64 { return r.currentPrice }

// LastBidderID returns the current top bidder's user ID, or "". r must be held.
func (r *Room) LastBidderID() string {
	if r.lastBidder == nil {
		return ""
	}
	return r.lastBidder.UserID
}

// EndTime returns the scheduled close. r must be held.
func (r *Room) EndTime() time.Time { return r.endTime }

// MinimumBid returns the lowest acceptable next amount: the current price
// plus the larger of the percentage increment and the absolute floor.
// r must be held.
func (r *Room) MinimumBid() float64 {
	increment := r.currentPrice * r.cfg.BidIncrementPercentage / 100
	return r.currentPrice + math.Max(increment, r.cfg.AbsoluteIncrementFloor)
}

// ApplyBid installs an accepted bid as the new top of the room and returns
// the user ID of the bidder it displaced ("" for the first bid). The bid has
// already been persisted; this never fails. r must be held.
func (r *Room) ApplyBid(bid model.Bid, user model.User) (outbidUserID string) {
	prev := r.LastBidderID()
	increment := bid.Amount - r.currentPrice

	r.currentPrice = bid.Amount
	u := user
	r.lastBidder = &u

	if p, ok := r.participants[user.UserID]; ok {
		p.TotalBids++
		p.LastActivity = bid.CreatedAt
	}

	r.bidders[user.UserID] = struct{}{}
	r.stats.TotalBids++
	r.stats.UniqueBidders = len(r.bidders)
	n := float64(r.stats.TotalBids)
	r.stats.AverageBidIncrement = (r.stats.AverageBidIncrement*(n-1) + increment) / n
	if r.startPrice > 0 {
		r.stats.PriceIncreasePercentage = (r.currentPrice - r.startPrice) / r.startPrice * 100
	}

	if len(r.recent) < recentBidCap {
		r.recent = append(r.recent, bid)
	} else {
		r.recent[r.recentHead] = bid
	}
	r.recentHead = (r.recentHead + 1) % recentBidCap

	return prev
}

// MaybeAutoExtend pushes the end time out when a bid lands inside the
// extension window, up to MaxAutoExtensions. Timers are rescheduled against
// the new end time. r must be held.
func (r *Room) MaybeAutoExtend(now time.Time) (extended bool, newEnd time.Time) {
	threshold := time.Duration(r.cfg.AutoExtensionThresholdSec) * time.Second
	if r.endTime.Sub(now) > threshold {
		return false, r.endTime
	}
	if r.extensions >= r.cfg.MaxAutoExtensions {
		utils.Warn("auto-extension cap reached", map[string]any{
			"auction_id": r.AuctionID,
			"extensions": r.extensions,
		})
		return false, r.endTime
	}

	r.extensions++
	r.endTime = r.endTime.Add(time.Duration(r.cfg.AutoExtensionSec) * time.Second)
	if r.status == model.StatusEndingSoon &&
		r.endTime.Sub(now) > time.Duration(r.cfg.EndingSoonThresholdSec)*time.Second {
		r.status = model.StatusLive
	}
	r.scheduleTimers()

	return true, r.endTime
}

// scheduleTimers cancels any outstanding timers and re-arms both against the
// current end time. Bumping the generation makes an already-fired callback
// for the old schedule a no-op. r must be held.
func (r *Room) scheduleTimers() {
	r.timerGen++
	gen := r.timerGen

	if r.warningTimer != nil {
		r.warningTimer.Stop()
		r.warningTimer = nil
	}
	if r.endTimer != nil {
		r.endTimer.Stop()
		r.endTimer = nil
	}
	if r.status.Terminal() {
		return
	}

	now := time.Now()
	warnAt := r.endTime.Add(-time.Duration(r.cfg.EndingSoonThresholdSec) * time.Second)
	if warnAt.After(now) {
		r.warningTimer = time.AfterFunc(warnAt.Sub(now), func() { r.onWarning(gen) })
	}
	r.endTimer = time.AfterFunc(time.Until(r.endTime), func() { r.onEnd(gen) })
}

// CancelTimers stops both timers and invalidates callbacks already in flight.
func (r *Room) CancelTimers() {
	r.Lock()
	defer r.Unlock()
	r.timerGen++
	if r.warningTimer != nil {
		r.warningTimer.Stop()
		r.warningTimer = nil
	}
	if r.endTimer != nil {
		r.endTimer.Stop()
		r.endTimer = nil
	}
}

// onWarning flips a live room into ENDING_SOON.
func (r *Room) onWarning(gen uint64) {
	defer r.recoverTimer("warning")

	r.Lock()
	if gen != r.timerGen || r.status != model.StatusLive {
		r.Unlock()
		return
	}
	r.status = model.StatusEndingSoon
	remaining := int(time.Until(r.endTime).Round(time.Second).Seconds())
	auctionID := r.AuctionID
	r.Unlock()

	utils.Info("auction ending soon", map[string]any{
		"auction_id":        auctionID,
		"remaining_seconds": remaining,
	})
	r.publish(events.Event{Type: events.TypeEndingSoon, Payload: events.EndingSoonPayload{
		AuctionID:        auctionID,
		RemainingSeconds: remaining,
	}})
}

// onEnd finalizes the auction when the end timer fires.
func (r *Room) onEnd(gen uint64) {
	defer r.recoverTimer("end")

	r.Lock()
	if gen != r.timerGen || r.status.Terminal() {
		r.Unlock()
		return
	}
	ended := r.finishLocked(model.StatusEnded)
	r.Unlock()

	r.announceEnd(ended)
}

// endResult carries what the end path needs to report after the lock is gone.
type endResult struct {
	winner     *model.User
	finalPrice float64
	status     model.RoomStatus
	endedAt    time.Time
}

// finishLocked moves the room to a terminal status, clears the recent-bid
// ring and the pending-guard set, and stops the timers. r must be held.
func (r *Room) finishLocked(status model.RoomStatus) endResult {
	r.status = status
	r.endedAt = time.Now()

	r.timerGen++
	if r.warningTimer != nil {
		r.warningTimer.Stop()
		r.warningTimer = nil
	}
	if r.endTimer != nil {
		r.endTimer.Stop()
		r.endTimer = nil
	}

	r.recent = nil
	r.recentHead = 0
	r.pendingMu.Lock()
	r.pending = make(map[string]struct{})
	r.pendingMu.Unlock()

	var winner *model.User
	if r.lastBidder != nil {
		w := *r.lastBidder
		winner = &w
	}
	return endResult{winner: winner, finalPrice: r.currentPrice, status: status, endedAt: r.endedAt}
}

// announceEnd persists the terminal state and notifies the room.
func (r *Room) announceEnd(res endResult) {
	if r.finalizer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.finalizer.FinalizeAuction(ctx, r.AuctionID, res.status, res.endedAt); err != nil {
			utils.Error("failed to finalize auction", map[string]any{
				"auction_id": r.AuctionID,
				"status":     string(res.status),
				"error":      err.Error(),
			})
		}
	}

	fields := map[string]any{
		"auction_id":  r.AuctionID,
		"status":      string(res.status),
		"final_price": res.finalPrice,
	}
	if res.winner != nil {
		fields["winner"] = res.winner.UserID
	}
	utils.Info("auction finished", fields)

	if res.status == model.StatusEnded {
		r.publish(events.Event{Type: events.TypeEnded, Payload: events.EndedPayload{
			AuctionID:  r.AuctionID,
			Winner:     res.winner,
			FinalPrice: res.finalPrice,
		}})
	}
	r.publish(events.Event{Type: events.TypeStateUpdated, Payload: r.statePayload()})
}

// Cancel is the administrator transition LIVE -> CANCELLED.
func (r *Room) Cancel() error { return r.adminFinish(model.StatusCancelled) }

// Suspend is the administrator transition LIVE -> SUSPENDED.
func (r *Room) Suspend() error { return r.adminFinish(model.StatusSuspended) }

func (r *Room) adminFinish(status model.RoomStatus) error {
	r.Lock()
	if r.status.Terminal() {
		cur := r.status
		r.Unlock()
		return fmt.Errorf("auction %s already %s: %w", r.AuctionID, cur, auctionerrors.ErrAuctionEnded)
	}
	res := r.finishLocked(status)
	r.Unlock()

	r.announceEnd(res)
	return nil
}

// Activate moves an UPCOMING room to LIVE.
func (r *Room) Activate() bool {
	r.Lock()
	defer r.Unlock()
	if r.status != model.StatusUpcoming {
		return false
	}
	r.status = model.StatusLive
	r.scheduleTimers()
	return true
}

func (r *Room) recoverTimer(which string) {
	if rec := recover(); rec != nil {
		utils.Error("timer callback panic", map[string]any{
			"auction_id": r.AuctionID,
			"timer":      which,
			"panic":      fmt.Sprint(rec),
		})
	}
}

func (r *Room) publish(evt events.Event) {
	if r.publisher != nil {
		r.publisher.Publish(r.AuctionID, evt)
	}
}

// statePayload snapshots the broadcastable state. Takes the lock itself.
func (r *Room) statePayload() events.StateUpdatedPayload {
	r.Lock()
	defer r.Unlock()
	return events.StateUpdatedPayload{
		AuctionID:    r.AuctionID,
		Status:       r.status,
		CurrentPrice: r.currentPrice,
		LastBidderID: r.LastBidderID(),
		EndTime:      r.endTime,
	}
}

// StatePayload is the broadcast form of the room's authoritative state.
func (r *Room) StatePayload() events.StateUpdatedPayload { return r.statePayload() }
