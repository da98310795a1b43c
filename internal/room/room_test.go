package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-rooms/internal/events"
	model "auction-rooms/internal/models"

	"github.com/stretchr/testify/require"
)

// recorder collects every event delivered to it.
type recorder struct {
	mu     sync.Mutex
	userID string
	events []events.Event
}

func (r *recorder) Notify(evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) UserID() string { return r.userID }

func (r *recorder) byType(t string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// fakeFinalizer records FinalizeAuction calls.
type fakeFinalizer struct {
	mu    sync.Mutex
	calls []model.RoomStatus
	err   error
}

func (f *fakeFinalizer) FinalizeAuction(_ context.Context, _ string, status model.RoomStatus, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, status)
	return f.err
}

func (f *fakeFinalizer) finalized() []model.RoomStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RoomStatus(nil), f.calls...)
}

func testConfig() model.RoomConfig {
	cfg := model.DefaultRoomConfig()
	cfg.AbsoluteIncrementFloor = 500
	cfg.BidIncrementPercentage = 5
	return cfg
}

func newTestRoom(t *testing.T, endIn time.Duration, cfg model.RoomConfig) (*Room, *fakeFinalizer, *recorder) {
	t.Helper()

	fin := &fakeFinalizer{}
	rec := &recorder{userID: "observer"}
	bus := events.NewBus()
	bus.Subscribe("auction1", rec)

	r := New(model.AuctionSnapshot{
		AuctionID:  "auction1",
		StartPrice: 1000,
		EndTime:    time.Now().Add(endIn),
		Status:     model.StatusLive,
	}, cfg, fin, bus)
	t.Cleanup(r.CancelTimers)

	return r, fin, rec
}

func acceptBid(r *Room, userID string, amount float64) model.Bid {
	bid := model.Bid{
		BidID:     fmt.Sprintf("bid-%s-%.0f", userID, amount),
		AuctionID: r.AuctionID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	r.Lock()
	r.ApplyBid(bid, model.User{UserID: userID})
	r.Unlock()
	return bid
}

func TestRoom_MinimumBid(t *testing.T) {
	r, _, _ := newTestRoom(t, time.Hour, testConfig())

	r.Lock()
	defer r.Unlock()

	// floor dominates the percentage increment at low prices
	require.Equal(t, 1500.0, r.MinimumBid())

	r.ApplyBid(model.Bid{BidID: "b1", AuctionID: "auction1", UserID: "u1", Amount: 1500, CreatedAt: time.Now()}, model.User{UserID: "u1"})
	require.Equal(t, 2000.0, r.MinimumBid())

	// percentage wins once five percent exceeds the floor
	r.ApplyBid(model.Bid{BidID: "b2", AuctionID: "auction1", UserID: "u2", Amount: 20000, CreatedAt: time.Now()}, model.User{UserID: "u2"})
	require.Equal(t, 21000.0, r.MinimumBid())
}

func TestRoom_ApplyBid_UpdatesStateAndStats(t *testing.T) {
	r, _, _ := newTestRoom(t, time.Hour, testConfig())

	require.True(t, r.AddParticipant(model.User{UserID: "u1"}, "conn1"))

	r.Lock()
	prev := r.ApplyBid(model.Bid{BidID: "b1", AuctionID: "auction1", UserID: "u1", Amount: 1500, CreatedAt: time.Now()}, model.User{UserID: "u1"})
	require.Empty(t, prev)
	require.Equal(t, 1500.0, r.Price())
	require.Equal(t, "u1", r.LastBidderID())

	prev = r.ApplyBid(model.Bid{BidID: "b2", AuctionID: "auction1", UserID: "u2", Amount: 2000, CreatedAt: time.Now()}, model.User{UserID: "u2"})
	require.Equal(t, "u1", prev)
	r.Unlock()

	snap := r.Snapshot()
	require.Equal(t, 2, snap.Stats.TotalBids)
	require.Equal(t, 2, snap.Stats.UniqueBidders)
	require.Equal(t, 500.0, snap.Stats.AverageBidIncrement)
	require.Equal(t, 100.0, snap.Stats.PriceIncreasePercentage)

	for _, p := range snap.Participants {
		if p.User.UserID == "u1" {
			require.Equal(t, 1, p.TotalBids)
		}
	}
}

func TestRoom_RecentBids_RingEviction(t *testing.T) {
	r, _, _ := newTestRoom(t, time.Hour, testConfig())

	for i := 1; i <= recentBidCap+20; i++ {
		acceptBid(r, fmt.Sprintf("u%d", i%7), float64(1000+i*500))
	}

	bids := r.RecentBids(0)
	require.Len(t, bids, recentBidCap)

	// newest first, oldest evicted
	require.Equal(t, float64(1000+(recentBidCap+20)*500), bids[0].Amount)
	require.Equal(t, float64(1000+21*500), bids[len(bids)-1].Amount)

	limited := r.RecentBids(5)
	require.Len(t, limited, 5)
	require.Equal(t, bids[0].Amount, limited[0].Amount)
}

func TestRoom_Participants_JoinIdempotent(t *testing.T) {
	r, _, _ := newTestRoom(t, time.Hour, testConfig())

	require.True(t, r.AddParticipant(model.User{UserID: "u1"}, "conn1"))
	first := r.Snapshot().Participants[0]

	time.Sleep(10 * time.Millisecond)
	require.True(t, r.AddParticipant(model.User{UserID: "u1"}, "conn2"))

	snap := r.Snapshot()
	require.Len(t, snap.Participants, 1)
	require.Equal(t, first.JoinedAt, snap.Participants[0].JoinedAt)
	require.True(t, snap.Participants[0].LastActivity.After(first.LastActivity))
	require.Equal(t, 1, snap.Stats.PeakParticipants)
}

func TestRoom_Participants_CapacityAndRemoval(t *testing.T) {
	cfg := testConfig()
	cfg.MaxParticipants = 2
	r, _, _ := newTestRoom(t, time.Hour, cfg)

	require.True(t, r.AddParticipant(model.User{UserID: "u1"}, "c1"))
	require.True(t, r.AddParticipant(model.User{UserID: "u2"}, "c2"))
	require.False(t, r.AddParticipant(model.User{UserID: "u3"}, "c3"))

	// re-join of an existing member is not blocked by the cap
	require.True(t, r.AddParticipant(model.User{UserID: "u2"}, "c2b"))

	require.True(t, r.RemoveParticipant("u1"))
	require.False(t, r.RemoveParticipant("u1"))
	require.False(t, r.RemoveParticipant("ghost"))
	require.Equal(t, 1, r.ParticipantCount())

	snap := r.Snapshot()
	require.Equal(t, 2, snap.Stats.PeakParticipants)
}

func TestRoom_PendingGuard(t *testing.T) {
	r, _, _ := newTestRoom(t, time.Hour, testConfig())

	require.True(t, r.TryBeginPending("u1"))
	require.False(t, r.TryBeginPending("u1"))
	require.True(t, r.TryBeginPending("u2"))

	r.EndPending("u1")
	require.True(t, r.TryBeginPending("u1"))
}

func TestRoom_WarningAndEndTimers(t *testing.T) {
	cfg := testConfig()
	cfg.EndingSoonThresholdSec = 1
	r, fin, rec := newTestRoom(t, 2*time.Second, cfg)

	require.Equal(t, model.StatusLive, r.Snapshot().Status)

	time.Sleep(1300 * time.Millisecond)
	require.Equal(t, model.StatusEndingSoon, r.Snapshot().Status)
	require.NotEmpty(t, rec.byType(events.TypeEndingSoon))

	time.Sleep(1 * time.Second)
	require.Equal(t, model.StatusEnded, r.Snapshot().Status)
	require.Equal(t, []model.RoomStatus{model.StatusEnded}, fin.finalized())
	require.NotEmpty(t, rec.byType(events.TypeEnded))
}

func TestRoom_EndedEventCarriesWinner(t *testing.T) {
	cfg := testConfig()
	cfg.EndingSoonThresholdSec = 1
	r, _, rec := newTestRoom(t, 1*time.Second, cfg)

	acceptBid(r, "u1", 1500)

	time.Sleep(1300 * time.Millisecond)

	ended := rec.byType(events.TypeEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(events.EndedPayload)
	require.NotNil(t, payload.Winner)
	require.Equal(t, "u1", payload.Winner.UserID)
	require.Equal(t, 1500.0, payload.FinalPrice)
}

func TestRoom_AutoExtension(t *testing.T) {
	cfg := testConfig()
	cfg.AutoExtensionThresholdSec = 30
	cfg.AutoExtensionSec = 120
	r, _, _ := newTestRoom(t, 20*time.Second, cfg)

	r.Lock()
	before := r.EndTime()
	extended, newEnd := r.MaybeAutoExtend(time.Now())
	r.Unlock()

	require.True(t, extended)
	require.Equal(t, before.Add(120*time.Second), newEnd)

	// outside the window: no extension
	r.Lock()
	extended, _ = r.MaybeAutoExtend(time.Now())
	r.Unlock()
	require.False(t, extended)
}

func TestRoom_AutoExtension_CapEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.AutoExtensionThresholdSec = 3600
	cfg.AutoExtensionSec = 1
	cfg.MaxAutoExtensions = 3
	r, _, _ := newTestRoom(t, 10*time.Second, cfg)

	for i := 0; i < 3; i++ {
		r.Lock()
		extended, _ := r.MaybeAutoExtend(time.Now())
		r.Unlock()
		require.True(t, extended)
	}

	r.Lock()
	extended, end := r.MaybeAutoExtend(time.Now())
	before := r.EndTime()
	r.Unlock()

	require.False(t, extended)
	require.Equal(t, before, end)
}

func TestRoom_ExtensionOutrunsStaleEndTimer(t *testing.T) {
	cfg := testConfig()
	cfg.EndingSoonThresholdSec = 1
	cfg.AutoExtensionThresholdSec = 30
	cfg.AutoExtensionSec = 2
	r, fin, _ := newTestRoom(t, 1*time.Second, cfg)

	r.Lock()
	extended, _ := r.MaybeAutoExtend(time.Now())
	r.Unlock()
	require.True(t, extended)

	// past the original end time the room must still be open
	time.Sleep(1500 * time.Millisecond)
	require.NotEqual(t, model.StatusEnded, r.Snapshot().Status)
	require.Empty(t, fin.finalized())

	// the rescheduled end timer still fires
	time.Sleep(2 * time.Second)
	require.Equal(t, model.StatusEnded, r.Snapshot().Status)
	require.Equal(t, []model.RoomStatus{model.StatusEnded}, fin.finalized())
}

func TestRoom_EndTimeNeverDecreases(t *testing.T) {
	cfg := testConfig()
	cfg.AutoExtensionThresholdSec = 3600
	r, _, _ := newTestRoom(t, time.Minute, cfg)

	var last time.Time
	for i := 0; i < 5; i++ {
		r.Lock()
		_, end := r.MaybeAutoExtend(time.Now())
		r.Unlock()
		require.False(t, end.Before(last))
		last = end
	}
}

func TestRoom_CancelAndSuspend(t *testing.T) {
	r, fin, rec := newTestRoom(t, time.Hour, testConfig())

	require.NoError(t, r.Cancel())
	require.Equal(t, model.StatusCancelled, r.Snapshot().Status)
	require.Equal(t, []model.RoomStatus{model.StatusCancelled}, fin.finalized())
	require.NotEmpty(t, rec.byType(events.TypeStateUpdated))

	// terminal states absorb further admin transitions
	require.Error(t, r.Suspend())

	r2, fin2, _ := newTestRoom(t, time.Hour, testConfig())
	require.NoError(t, r2.Suspend())
	require.Equal(t, model.StatusSuspended, r2.Snapshot().Status)
	require.Equal(t, []model.RoomStatus{model.StatusSuspended}, fin2.finalized())
}

func TestRoom_FinalizationClearsHistoryAndGuards(t *testing.T) {
	r, _, _ := newTestRoom(t, time.Hour, testConfig())

	acceptBid(r, "u1", 1500)
	require.True(t, r.TryBeginPending("u2"))

	require.NoError(t, r.Cancel())

	require.Empty(t, r.RecentBids(0))
	require.True(t, r.TryBeginPending("u2"))
}

func TestRoom_CanSweep(t *testing.T) {
	cfg := testConfig()
	cfg.RemovalGracePeriodSec = 1
	r, _, _ := newTestRoom(t, time.Hour, cfg)
	require.True(t, r.AddParticipant(model.User{UserID: "u1"}, "c1"))

	require.False(t, r.CanSweep(time.Now()))

	require.NoError(t, r.Cancel())
	require.False(t, r.CanSweep(time.Now()), "participants still joined")

	r.RemoveParticipant("u1")
	require.False(t, r.CanSweep(time.Now()), "grace period not elapsed")
	require.True(t, r.CanSweep(time.Now().Add(2*time.Second)))
}

func TestRoom_SnapshotMarksInactiveParticipants(t *testing.T) {
	cfg := testConfig()
	cfg.InactivityTimeoutMs = 50
	r, _, _ := newTestRoom(t, time.Hour, cfg)

	require.True(t, r.AddParticipant(model.User{UserID: "u1"}, "c1"))
	time.Sleep(80 * time.Millisecond)
	require.True(t, r.AddParticipant(model.User{UserID: "u2"}, "c2"))

	byID := map[string]bool{}
	for _, p := range r.Snapshot().Participants {
		byID[p.User.UserID] = p.IsActive
	}
	require.False(t, byID["u1"])
	require.True(t, byID["u2"])

	require.True(t, r.Touch("u1"))
	for _, p := range r.Snapshot().Participants {
		if p.User.UserID == "u1" {
			require.True(t, p.IsActive)
		}
	}
	require.False(t, r.Touch("ghost"))
}

func TestRoom_ActivateFromUpcoming(t *testing.T) {
	fin := &fakeFinalizer{}
	r := New(model.AuctionSnapshot{
		AuctionID:  "auction-upcoming",
		StartPrice: 100,
		EndTime:    time.Now().Add(time.Hour),
		Status:     model.StatusUpcoming,
	}, testConfig(), fin, events.NewBus())
	t.Cleanup(r.CancelTimers)

	require.True(t, r.Activate())
	require.Equal(t, model.StatusLive, r.Snapshot().Status)
	require.False(t, r.Activate())
}

func TestRoom_NewSeedsTopBidFromSnapshot(t *testing.T) {
	top := model.Bid{BidID: "b0", AuctionID: "auction1", UserID: "u9", Amount: 4200, CreatedAt: time.Now()}
	r := New(model.AuctionSnapshot{
		AuctionID:  "auction1",
		StartPrice: 1000,
		EndTime:    time.Now().Add(time.Hour),
		Status:     model.StatusLive,
		TopBid:     &top,
	}, testConfig(), &fakeFinalizer{}, events.NewBus())
	t.Cleanup(r.CancelTimers)

	snap := r.Snapshot()
	require.Equal(t, 4200.0, snap.CurrentPrice)
	require.NotNil(t, snap.LastBidder)
	require.Equal(t, "u9", snap.LastBidder.UserID)
}
