package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-rooms/internal/events"
	"auction-rooms/internal/ledger"
	model "auction-rooms/internal/models"
	"auction-rooms/internal/room"
	"auction-rooms/utils"
)

// DefaultSweepInterval is how often idle/finished rooms are garbage
// collected unless overridden.
const DefaultSweepInterval = 10 * time.Minute

// Registry lazily materializes and caches one room per auction and sweeps
// rooms that finished and drained.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room

	store     ledger.LedgerStore
	publisher events.Publisher
	defaults  model.RoomConfig

	sweepInterval time.Duration
	runOnce       sync.Once
	stopOnce      sync.Once
	running       bool
	stop          chan struct{}
	done          chan struct{}
}

// New creates a registry. The registry is constructed once at process start
// and passed into the transport layer; there is no package-level instance.
func New(store ledger.LedgerStore, publisher events.Publisher, defaults model.RoomConfig) *Registry {
	return &Registry{
		rooms:         make(map[string]*room.Room),
		store:         store,
		publisher:     publisher,
		defaults:      defaults.Normalize(),
		sweepInterval: DefaultSweepInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// SetSweepInterval overrides the sweep cadence. Call before Run.
func (reg *Registry) SetSweepInterval(d time.Duration) {
	if d > 0 {
		reg.sweepInterval = d
	}
}

// GetOrCreateRoom returns the cached room or materializes one from the
// ledger snapshot. A missing auction is auctionerrors.ErrAuctionNotFound,
// never a nil to infer.
func (reg *Registry) GetOrCreateRoom(ctx context.Context, auctionID string) (*room.Room, error) {
	reg.mu.RLock()
	r, ok := reg.rooms[auctionID]
	reg.mu.RUnlock()
	if ok {
		return r, nil
	}

	snap, err := reg.store.LoadAuctionSnapshot(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("registry: load auction %s: %w", auctionID, err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.rooms[auctionID]; ok {
		// lost the race to another creator
		return r, nil
	}

	r = room.New(snap, reg.defaults, reg.store, reg.publisher)
	reg.rooms[auctionID] = r

	utils.Info("room created", map[string]any{
		"auction_id": auctionID,
		"status":     string(snap.Status),
		"end_time":   snap.EndTime.UTC().Format(time.RFC3339),
	})
	return r, nil
}

// Room returns an already-materialized room, or nil.
func (reg *Registry) Room(auctionID string) *room.Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[auctionID]
}

// AddParticipant joins a user to the auction's room, creating the room on
// demand. Returns false when the auction does not exist, the room is no
// longer active, or the room is full.
func (reg *Registry) AddParticipant(ctx context.Context, auctionID string, user model.User, connectionID string) bool {
	r, err := reg.GetOrCreateRoom(ctx, auctionID)
	if err != nil {
		return false
	}
	if !r.AddParticipant(user, connectionID) {
		return false
	}

	reg.publisher.Publish(auctionID, events.Event{
		Type: events.TypeParticipantsUpdated,
		Payload: events.ParticipantsUpdatedPayload{
			AuctionID: auctionID,
			Count:     r.ParticipantCount(),
		},
	})
	return true
}

// RemoveParticipant drops a user from the auction's room. Idempotent;
// removing a non-member or targeting an unknown room returns false.
func (reg *Registry) RemoveParticipant(auctionID, userID string) bool {
	r := reg.Room(auctionID)
	if r == nil {
		return false
	}
	if !r.RemoveParticipant(userID) {
		return false
	}

	reg.publisher.Publish(auctionID, events.Event{
		Type: events.TypeParticipantsUpdated,
		Payload: events.ParticipantsUpdatedPayload{
			AuctionID: auctionID,
			Count:     r.ParticipantCount(),
		},
	})
	return true
}

// Heartbeat refreshes a participant's activity marker.
func (reg *Registry) Heartbeat(auctionID, userID string) bool {
	r := reg.Room(auctionID)
	if r == nil {
		return false
	}
	return r.Touch(userID)
}

// Snapshot returns the room's current state, or nil when no room is live
// for the auction.
func (reg *Registry) Snapshot(auctionID string) *model.RoomSnapshot {
	r := reg.Room(auctionID)
	if r == nil {
		return nil
	}
	snap := r.Snapshot()
	return &snap
}

// Sweep removes every room that is finished, empty, and past its grace
// period. Timers are cancelled before the room is dropped. Returns the
// number of rooms removed.
func (reg *Registry) Sweep() int {
	now := time.Now()

	reg.mu.Lock()
	var doomed []*room.Room
	for id, r := range reg.rooms {
		if r.CanSweep(now) {
			doomed = append(doomed, r)
			delete(reg.rooms, id)
		}
	}
	reg.mu.Unlock()

	for _, r := range doomed {
		r.CancelTimers()
		utils.Info("room swept", map[string]any{"auction_id": r.AuctionID})
	}
	return len(doomed)
}

// Run starts the sweeper goroutine. It ticks until Stop is called.
func (reg *Registry) Run() {
	reg.runOnce.Do(func() {
		reg.mu.Lock()
		reg.running = true
		reg.mu.Unlock()

		go func() {
			defer close(reg.done)
			ticker := time.NewTicker(reg.sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					reg.Sweep()
				case <-reg.stop:
					return
				}
			}
		}()
	})
}

// Stop halts the sweeper and cancels the timers of every remaining room.
func (reg *Registry) Stop() {
	reg.stopOnce.Do(func() {
		close(reg.stop)
		reg.mu.RLock()
		running := reg.running
		reg.mu.RUnlock()
		if running {
			<-reg.done
		}

		reg.mu.Lock()
		rooms := make([]*room.Room, 0, len(reg.rooms))
		for _, r := range reg.rooms {
			rooms = append(rooms, r)
		}
		reg.mu.Unlock()

		for _, r := range rooms {
			r.CancelTimers()
		}
	})
}

// RoomCount returns the number of cached rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
