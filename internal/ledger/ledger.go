package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-rooms/internal/auctionerrors"
	model "auction-rooms/internal/models"
)

// LedgerStore defines the persistence contract for auctions and bids
type LedgerStore interface {
	LoadAuctionSnapshot(ctx context.Context, auctionID string) (model.AuctionSnapshot, error)
	AppendBid(ctx context.Context, bid model.Bid) error
	FinalizeAuction(ctx context.Context, auctionID string, status model.RoomStatus, endedAt time.Time) error
}

// finalRecord is the terminal state written by FinalizeAuction.
type finalRecord struct {
	Status  model.RoomStatus
	EndedAt time.Time
}

// MemoryLedger is a concurrency-safe in-memory implementation of LedgerStore
type MemoryLedger struct {
	mu        sync.RWMutex
	auctions  map[string]model.AuctionSnapshot // key: auctionID -> value: auction seed
	bids      map[string][]model.Bid           // key: auctionID -> value: accepted bids in order
	finalized map[string]finalRecord           // key: auctionID -> value: terminal record
}

// NewMemoryLedger creates a new in-memory ledger instance
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		auctions:  make(map[string]model.AuctionSnapshot),
		bids:      make(map[string][]model.Bid),
		finalized: make(map[string]finalRecord),
	}
}

// LoadAuctionSnapshot returns the stored auction seed with the current top bid
func (l *MemoryLedger) LoadAuctionSnapshot(_ context.Context, auctionID string) (model.AuctionSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap, ok := l.auctions[auctionID]
	if !ok {
		return model.AuctionSnapshot{}, fmt.Errorf("load snapshot for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	if fin, done := l.finalized[auctionID]; done {
		snap.Status = fin.Status
	}

	if bids := l.bids[auctionID]; len(bids) > 0 {
		top := bids[len(bids)-1]
		snap.TopBid = &top
	}
	return snap, nil
}

// AppendBid records an accepted bid for an auction
func (l *MemoryLedger) AppendBid(_ context.Context, bid model.Bid) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("append bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if _, done := l.finalized[bid.AuctionID]; done {
		return fmt.Errorf("append bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionEnded)
	}

	l.bids[bid.AuctionID] = append(l.bids[bid.AuctionID], bid)
	return nil
}

// FinalizeAuction writes the terminal status for an auction
func (l *MemoryLedger) FinalizeAuction(_ context.Context, auctionID string, status model.RoomStatus, endedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.auctions[auctionID]; !ok {
		return fmt.Errorf("finalize auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if !status.Terminal() {
		return fmt.Errorf("finalize auction %s with non-terminal status %s: %w", auctionID, status, auctionerrors.ErrSystem)
	}

	l.finalized[auctionID] = finalRecord{Status: status, EndedAt: endedAt}
	return nil
}

// BidsForAuction returns a copy of all recorded bids for an auction.
func (l *MemoryLedger) BidsForAuction(auctionID string) []model.Bid {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Bid(nil), l.bids[auctionID]...)
}

// FinalStatus returns the terminal status written for an auction, if any.
func (l *MemoryLedger) FinalStatus(auctionID string) (model.RoomStatus, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fin, ok := l.finalized[auctionID]
	return fin.Status, ok
}

// AddAuction seeds an auction into the ledger. This method is intended for tests and bootstrap only.
func (l *MemoryLedger) AddAuction(snap model.AuctionSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.auctions[snap.AuctionID] = snap
}
