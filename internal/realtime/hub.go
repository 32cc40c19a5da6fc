package realtime

import (
    "log"
    "sync"
)

// Member is one connected viewer session.  Deliver must not block: it
// reports false when the member cannot take the message (full buffer, gone),
// upon which the hub evicts it.  The evicted session reconnects and
// re-snapshots; that is the at-most-once delivery contract.
type Member interface {
    ID() string
    Deliver(msg []byte) bool
    Close()
}

// Hub groups viewer sessions by showtime and broadcasts seat-hold events
// within a group.  Groups are created on first join and removed when their
// last member leaves; no explicit lifecycle object exists.  All calls are
// safe for concurrent use.  Events originating from the same seat pass
// through the coordinator sequentially, so per-seat broadcast order follows
// issue order.
type Hub struct {
    mu     sync.RWMutex
    groups map[uint64]map[string]Member
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
    return &Hub{groups: make(map[uint64]map[string]Member)}
}

// Join adds a member to a showtime's group, creating the group lazily.
func (h *Hub) Join(showtimeID uint64, m Member) {
    h.mu.Lock()
    defer h.mu.Unlock()
    group, ok := h.groups[showtimeID]
    if !ok {
        group = make(map[string]Member)
        h.groups[showtimeID] = group
    }
    group[m.ID()] = m
}

// Leave removes a member from a showtime's group and drops the group when
// it becomes empty.  Leaving a group one is not in is a no-op.
func (h *Hub) Leave(showtimeID uint64, m Member) {
    h.mu.Lock()
    defer h.mu.Unlock()
    group, ok := h.groups[showtimeID]
    if !ok {
        return
    }
    delete(group, m.ID())
    if len(group) == 0 {
        delete(h.groups, showtimeID)
    }
}

// SendTo delivers an event to a single member of a group, typically the
// snapshot push for a fresh joiner or a conflict answer.
func (h *Hub) SendTo(showtimeID uint64, memberID, event string, payload interface{}) {
    msg := encode(event, payload)
    if msg == nil {
        return
    }
    h.mu.RLock()
    m := h.groups[showtimeID][memberID]
    h.mu.RUnlock()
    if m == nil {
        return
    }
    if !m.Deliver(msg) {
        h.evict(showtimeID, m)
    }
}

// broadcast sends an event to every member of a group except the origin
// session.  An empty origin reaches all members.  Members that cannot take
// the message are evicted.
func (h *Hub) broadcast(showtimeID uint64, originID, event string, payload interface{}) {
    msg := encode(event, payload)
    if msg == nil {
        return
    }
    h.mu.RLock()
    members := make([]Member, 0, len(h.groups[showtimeID]))
    for id, m := range h.groups[showtimeID] {
        if id == originID {
            continue
        }
        members = append(members, m)
    }
    h.mu.RUnlock()
    for _, m := range members {
        if !m.Deliver(msg) {
            h.evict(showtimeID, m)
        }
    }
}

func (h *Hub) evict(showtimeID uint64, m Member) {
    log.Printf("realtime: evicting slow session %s from showtime %d", m.ID(), showtimeID)
    h.Leave(showtimeID, m)
    m.Close()
}

// SeatSelected, SeatDeselected and SeatsCleared make Hub the event sink of
// the hold coordinator: the holder's siblings learn about the change while
// the originating session is skipped to avoid echo.  SeatsCleared reaches
// every member because the clear is also issued server-side after payment,
// where no originating session exists.

// SeatSelected broadcasts a new hold to the showtime group.
func (h *Hub) SeatSelected(showtimeID uint64, seatCode string, userID uint64, originID string) {
    h.broadcast(showtimeID, originID, EventSeatSelected, SeatPayload{SeatCode: seatCode, UserID: userID})
}

// SeatDeselected broadcasts a released hold to the showtime group.
func (h *Hub) SeatDeselected(showtimeID uint64, seatCode string, userID uint64, originID string) {
    h.broadcast(showtimeID, originID, EventSeatDeselected, SeatPayload{SeatCode: seatCode, UserID: userID})
}

// SeatsCleared broadcasts a bulk clear of the user's seats.
func (h *Hub) SeatsCleared(showtimeID uint64, seatCodes []string, userID uint64, originID string) {
    h.broadcast(showtimeID, originID, EventClearHeldSeats, ClearPayload{SeatCodes: seatCodes, UserID: userID})
}
