package events

import (
	"sync"
)

// Subscriber receives events for one auction. The wire transport implements
// this; delivery is best-effort and must not block.
type Subscriber interface {
	Notify(evt Event) error
	UserID() string
}

// Publisher is the outbound side exposed to the engine and rooms.
type Publisher interface {
	Publish(auctionID string, evt Event)
	Direct(auctionID, userID string, evt Event)
}

// Bus fans events out to the subscribers of each auction.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[Subscriber]struct{} // auctionID -> set of subscribers
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[Subscriber]struct{})}
}

func (b *Bus) Subscribe(auctionID string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[auctionID]
	if !ok {
		set = make(map[Subscriber]struct{})
		b.subs[auctionID] = set
	}
	set[s] = struct{}{}
}

func (b *Bus) Unsubscribe(auctionID string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[auctionID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, auctionID)
		}
	}
}

// Publish delivers an event to every subscriber of the auction.
func (b *Bus) Publish(auctionID string, evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if set, ok := b.subs[auctionID]; ok {
		for s := range set {
			_ = s.Notify(evt) // best-effort
		}
	}
}

// Direct delivers an event only to the given user's subscribers.
func (b *Bus) Direct(auctionID, userID string, evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if set, ok := b.subs[auctionID]; ok {
		for s := range set {
			if s.UserID() == userID {
				_ = s.Notify(evt)
			}
		}
	}
}
