package room

import (
	"time"

	model "auction-rooms/internal/models"
)

// TryBeginPending registers the per-user in-flight bid marker. It returns
// false when a bid from the same user is already being processed.
func (r *Room) TryBeginPending(userID string) bool {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	if _, inFlight := r.pending[userID]; inFlight {
		return false
	}
	r.pending[userID] = struct{}{}
	return true
}

// EndPending releases the in-flight marker. Safe to call after the room was
// finalized (finalization replaces the whole set).
func (r *Room) EndPending(userID string) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	delete(r.pending, userID)
}

// AddParticipant inserts the user or, on re-join, refreshes their activity.
// Returns false with no side effects when the room is no longer active or
// already at capacity.
func (r *Room) AddParticipant(user model.User, connectionID string) bool {
	r.Lock()
	defer r.Unlock()

	if r.status.Terminal() {
		return false
	}

	now := time.Now()
	if p, ok := r.participants[user.UserID]; ok {
		p.LastActivity = now
		p.ConnectionID = connectionID
		p.IsActive = true
		return true
	}

	if len(r.participants) >= r.cfg.MaxParticipants {
		return false
	}

	r.participants[user.UserID] = &model.Participant{
		User:         user,
		ConnectionID: connectionID,
		JoinedAt:     now,
		LastActivity: now,
		IsActive:     true,
	}
	if len(r.participants) > r.stats.PeakParticipants {
		r.stats.PeakParticipants = len(r.participants)
	}
	return true
}

// RemoveParticipant drops the user from the room. Removing a non-member is a
// no-op returning false.
func (r *Room) RemoveParticipant(userID string) bool {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.participants[userID]; !ok {
		return false
	}
	delete(r.participants, userID)
	return true
}

// Touch refreshes the user's heartbeat. Returns false for non-members.
func (r *Room) Touch(userID string) bool {
	r.Lock()
	defer r.Unlock()

	p, ok := r.participants[userID]
	if !ok {
		return false
	}
	p.LastActivity = time.Now()
	p.IsActive = true
	return true
}

// ParticipantCount returns the number of joined users.
func (r *Room) ParticipantCount() int {
	r.Lock()
	defer r.Unlock()
	return len(r.participants)
}

// Snapshot returns a copy of the room state for transport-layer reads.
// Participants quiet for longer than the inactivity timeout are reported
// inactive.
func (r *Room) Snapshot() model.RoomSnapshot {
	r.Lock()
	defer r.Unlock()

	cutoff := time.Now().Add(-time.Duration(r.cfg.InactivityTimeoutMs) * time.Millisecond)
	participants := make([]model.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		cp := *p
		cp.IsActive = cp.LastActivity.After(cutoff)
		participants = append(participants, cp)
	}

	var lastBidder *model.User
	if r.lastBidder != nil {
		u := *r.lastBidder
		lastBidder = &u
	}

	return model.RoomSnapshot{
		AuctionID:    r.AuctionID,
		Status:       r.status,
		CurrentPrice: r.currentPrice,
		LastBidder:   lastBidder,
		EndTime:      r.endTime,
		Participants: participants,
		Stats:        r.stats,
	}
}

// RecentBids returns up to limit recent accepted bids, newest first, from
// the in-memory ring.
func (r *Room) RecentBids(limit int) []model.Bid {
	r.Lock()
	defer r.Unlock()

	n := len(r.recent)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.Bid, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.recentHead - 1 - i + recentBidCap*2) % recentBidCap
		if idx >= n {
			break
		}
		out = append(out, r.recent[idx])
	}
	return out
}

// CanSweep reports whether the registry may delete this room: terminal
// status, nobody joined, and the grace period elapsed.
func (r *Room) CanSweep(now time.Time) bool {
	r.Lock()
	defer r.Unlock()

	if !r.status.Terminal() || len(r.participants) > 0 || r.endedAt.IsZero() {
		return false
	}
	grace := time.Duration(r.cfg.RemovalGracePeriodSec) * time.Second
	return now.Sub(r.endedAt) >= grace
}
