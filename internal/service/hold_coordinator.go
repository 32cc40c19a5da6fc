// Package service holds the business logic between the HTTP/websocket edge
// and the repositories: the seat-hold coordinator and the payment service.
package service

import (
    "context"
    "errors"

    "github.com/cinevn/backend/internal/repository"
)

// SeatLockStore is the ephemeral hold store the coordinator drives.  It is
// implemented by repository.SeatLockRepo; tests substitute an in-memory
// version.  All operations are atomic per (showtime, seat) key.
type SeatLockStore interface {
    Claim(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) (uint64, error)
    Release(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) error
    Clear(ctx context.Context, showtimeID uint64, seatCodes []string) error
    Snapshot(ctx context.Context, showtimeID uint64) (map[string]uint64, error)
    RefreshTTL(ctx context.Context, showtimeID uint64) error
}

// HoldEventSink receives the broadcasts the coordinator emits on successful
// state changes.  originID names the session that caused the change so the
// fan-out can skip it; it is empty for server-initiated changes.
type HoldEventSink interface {
    SeatSelected(showtimeID uint64, seatCode string, userID uint64, originID string)
    SeatDeselected(showtimeID uint64, seatCode string, userID uint64, originID string)
    SeatsCleared(showtimeID uint64, seatCodes []string, userID uint64, originID string)
}

// HoldCoordinator owns the seat-hold state machine: FREE -> HELD(holder) ->
// FREE on release or TTL expiry, or HELD -> COMMITTED when a payment lands.
// It is the only writer of the lock store.  Conflicts are reported to the
// caller and never broadcast; successful changes are broadcast to the rest
// of the showtime's viewers.
type HoldCoordinator struct {
    store SeatLockStore
    sink  HoldEventSink
}

// NewHoldCoordinator wires the coordinator to its store and event sink.
func NewHoldCoordinator(store SeatLockStore, sink HoldEventSink) *HoldCoordinator {
    return &HoldCoordinator{store: store, sink: sink}
}

// SelectSeat claims a seat for a user.  On success the hold is broadcast to
// the showtime group (minus the originator) and the user's id is returned.
// On conflict the existing holder is returned with repository.ErrSeatTaken
// and nothing is broadcast.
func (c *HoldCoordinator) SelectSeat(ctx context.Context, showtimeID uint64, seatCode string, userID uint64, originID string) (uint64, error) {
    holder, err := c.store.Claim(ctx, showtimeID, seatCode, userID)
    if err != nil {
        return holder, err
    }
    c.sink.SeatSelected(showtimeID, seatCode, userID, originID)
    return holder, nil
}

// DeselectSeat releases the caller's hold.  Only the recorded holder may
// release; the release is broadcast on success.
func (c *HoldCoordinator) DeselectSeat(ctx context.Context, showtimeID uint64, seatCode string, userID uint64, originID string) error {
    if err := c.store.Release(ctx, showtimeID, seatCode, userID); err != nil {
        return err
    }
    c.sink.SeatDeselected(showtimeID, seatCode, userID, originID)
    return nil
}

// ClearUserSeats releases every listed seat the user still holds and emits
// one bulk-clear broadcast for those actually released.  Seats that expired
// or belong to someone else are skipped silently; this is the
// client-initiated "give up my selection" path.
func (c *HoldCoordinator) ClearUserSeats(ctx context.Context, showtimeID uint64, userID uint64, seatCodes []string, originID string) error {
    released := make([]string, 0, len(seatCodes))
    for _, seat := range seatCodes {
        err := c.store.Release(ctx, showtimeID, seat, userID)
        if errors.Is(err, repository.ErrNotHolder) || errors.Is(err, repository.ErrHoldAbsent) {
            continue
        }
        if err != nil {
            return err
        }
        released = append(released, seat)
    }
    if len(released) > 0 {
        c.sink.SeatsCleared(showtimeID, released, userID, originID)
    }
    return nil
}

// CommitSeats finalizes a paid order's seats: the ephemeral holds are
// dropped unconditionally (an expired hold must not block a commit, the
// payment outcome is authoritative) and a bulk clear reaches every viewer
// so the seats render as permanently taken.  Called only by the payment
// reconciliation; the durable booked-seat write happens there.
func (c *HoldCoordinator) CommitSeats(ctx context.Context, showtimeID uint64, userID uint64, seatCodes []string) error {
    err := c.store.Clear(ctx, showtimeID, seatCodes)
    // Broadcast even when the clear failed: the durable commit already
    // happened and viewers must not keep buying these seats. Leftover hold
    // entries fall out via TTL.
    c.sink.SeatsCleared(showtimeID, seatCodes, userID, "")
    return err
}

// Snapshot returns the current holds of a showtime for viewer bootstrap.
func (c *HoldCoordinator) Snapshot(ctx context.Context, showtimeID uint64) (map[string]uint64, error) {
    return c.store.Snapshot(ctx, showtimeID)
}
