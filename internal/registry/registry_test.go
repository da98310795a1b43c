package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-rooms/internal/auctionerrors"
	"auction-rooms/internal/events"
	"auction-rooms/internal/ledger"
	model "auction-rooms/internal/models"

	"github.com/stretchr/testify/require"
)

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

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) countByType(t string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func testSetup(t *testing.T, cfg model.RoomConfig) (*Registry, *ledger.MemoryLedger, *events.Bus) {
	t.Helper()
	store := ledger.NewMemoryLedger()
	bus := events.NewBus()
	reg := New(store, bus, cfg)
	t.Cleanup(reg.Stop)
	return reg, store, bus
}

func seedAuction(store *ledger.MemoryLedger, id string, endIn time.Duration, status model.RoomStatus) {
	store.AddAuction(model.AuctionSnapshot{
		AuctionID:  id,
		StartPrice: 1000,
		EndTime:    time.Now().Add(endIn),
		Status:     status,
	})
}

func TestRegistry_GetOrCreateRoom(t *testing.T) {
	reg, store, _ := testSetup(t, model.DefaultRoomConfig())
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	r, err := reg.GetOrCreateRoom(context.Background(), "auction1")
	require.NoError(t, err)
	require.Equal(t, "auction1", r.AuctionID)

	// second resolve returns the cached room, not a new one
	again, err := reg.GetOrCreateRoom(context.Background(), "auction1")
	require.NoError(t, err)
	require.Same(t, r, again)
	require.Equal(t, 1, reg.RoomCount())
}

func TestRegistry_GetOrCreateRoom_NotFound(t *testing.T) {
	reg, _, _ := testSetup(t, model.DefaultRoomConfig())

	r, err := reg.GetOrCreateRoom(context.Background(), "ghost")
	require.Nil(t, r)
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
}

func TestRegistry_GetOrCreateRoom_ConcurrentCreation(t *testing.T) {
	reg, store, _ := testSetup(t, model.DefaultRoomConfig())
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := reg.GetOrCreateRoom(context.Background(), "auction1"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, reg.RoomCount())
}

func TestRegistry_AddParticipant(t *testing.T) {
	cfg := model.DefaultRoomConfig()
	cfg.MaxParticipants = 2
	reg, store, bus := testSetup(t, cfg)
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	rec := &recorder{userID: "observer"}
	bus.Subscribe("auction1", rec)

	require.True(t, reg.AddParticipant(context.Background(), "auction1", model.User{UserID: "u1"}, "c1"))
	require.True(t, reg.AddParticipant(context.Background(), "auction1", model.User{UserID: "u2"}, "c2"))
	require.False(t, reg.AddParticipant(context.Background(), "auction1", model.User{UserID: "u3"}, "c3"), "room is full")
	require.False(t, reg.AddParticipant(context.Background(), "ghost", model.User{UserID: "u1"}, "c1"), "unknown auction")

	require.Equal(t, 2, rec.countByType(events.TypeParticipantsUpdated))

	snap := reg.Snapshot("auction1")
	require.NotNil(t, snap)
	require.Len(t, snap.Participants, 2)
}

func TestRegistry_RemoveParticipant_Idempotent(t *testing.T) {
	reg, store, _ := testSetup(t, model.DefaultRoomConfig())
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	require.True(t, reg.AddParticipant(context.Background(), "auction1", model.User{UserID: "u1"}, "c1"))

	require.True(t, reg.RemoveParticipant("auction1", "u1"))
	require.False(t, reg.RemoveParticipant("auction1", "u1"))
	require.False(t, reg.RemoveParticipant("ghost", "u1"))
}

func TestRegistry_Heartbeat(t *testing.T) {
	reg, store, _ := testSetup(t, model.DefaultRoomConfig())
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	require.False(t, reg.Heartbeat("auction1", "u1"), "room not materialized yet")

	require.True(t, reg.AddParticipant(context.Background(), "auction1", model.User{UserID: "u1"}, "c1"))
	require.True(t, reg.Heartbeat("auction1", "u1"))
	require.False(t, reg.Heartbeat("auction1", "stranger"))
}

func TestRegistry_Snapshot_UnknownRoom(t *testing.T) {
	reg, _, _ := testSetup(t, model.DefaultRoomConfig())
	require.Nil(t, reg.Snapshot("ghost"))
}

func TestRegistry_Sweep(t *testing.T) {
	cfg := model.DefaultRoomConfig()
	cfg.RemovalGracePeriodSec = 1
	reg, store, bus := testSetup(t, cfg)
	seedAuction(store, "ended", time.Hour, model.StatusLive)
	seedAuction(store, "live", time.Hour, model.StatusLive)

	endedRoom, err := reg.GetOrCreateRoom(context.Background(), "ended")
	require.NoError(t, err)
	_, err = reg.GetOrCreateRoom(context.Background(), "live")
	require.NoError(t, err)

	require.NoError(t, endedRoom.Cancel())

	// grace period has not elapsed yet
	require.Equal(t, 0, reg.Sweep())
	require.Equal(t, 2, reg.RoomCount())

	rec := &recorder{userID: "observer"}
	bus.Subscribe("ended", rec)

	time.Sleep(1100 * time.Millisecond)
	require.Equal(t, 1, reg.Sweep())
	require.Equal(t, 1, reg.RoomCount())
	require.Nil(t, reg.Room("ended"))

	// no timer callback fires after removal
	quiet := rec.count()
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, quiet, rec.count())
}

func TestRegistry_Sweep_KeepsOccupiedTerminalRooms(t *testing.T) {
	cfg := model.DefaultRoomConfig()
	cfg.RemovalGracePeriodSec = 1
	reg, store, _ := testSetup(t, cfg)
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	require.True(t, reg.AddParticipant(context.Background(), "auction1", model.User{UserID: "u1"}, "c1"))
	r, err := reg.GetOrCreateRoom(context.Background(), "auction1")
	require.NoError(t, err)
	require.NoError(t, r.Cancel())

	time.Sleep(1100 * time.Millisecond)
	require.Equal(t, 0, reg.Sweep(), "room still has a participant")

	require.True(t, reg.RemoveParticipant("auction1", "u1"))
	require.Equal(t, 1, reg.Sweep())
}

func TestRegistry_RunSweepsPeriodically(t *testing.T) {
	cfg := model.DefaultRoomConfig()
	cfg.RemovalGracePeriodSec = 1
	reg, store, _ := testSetup(t, cfg)
	reg.SetSweepInterval(200 * time.Millisecond)
	seedAuction(store, "auction1", time.Hour, model.StatusLive)

	r, err := reg.GetOrCreateRoom(context.Background(), "auction1")
	require.NoError(t, err)
	require.NoError(t, r.Cancel())

	reg.Run()

	require.Eventually(t, func() bool { return reg.RoomCount() == 0 }, 3*time.Second, 100*time.Millisecond)
}
