// Package realtime fans seat-hold events out to every browser session
// watching the same showtime.  Each showtime maps to one group; members join
// lazily, receive a snapshot of current holds, and from then on get
// best-effort, at-most-once event pushes.  A session that misses events
// self-corrects on its next join via a fresh snapshot.
package realtime

import "encoding/json"

// Wire event names.  The inbound and outbound vocabularies overlap:
// seat-selected arrives from the acting viewer and is re-broadcast under the
// same name to its siblings.
const (
    EventJoinShowtime    = "join-showtime"    // inbound: enter a showtime group
    EventInitHeldSeats   = "init-held-seats"  // outbound: snapshot for the joiner only
    EventSeatSelected    = "seat-selected"    // inbound claim / outbound broadcast
    EventSeatDeselected  = "seat-deselected"  // inbound release / outbound broadcast
    EventClearHeldSeats  = "clear-held-seats" // inbound bulk release / outbound bulk clear
    EventSeatUnavailable = "seat-unavailable" // outbound: conflict, requester only
    EventError           = "error"            // outbound: operation failed, requester only
)

// Envelope is the frame every websocket message uses in both directions.
type Envelope struct {
    Event string          `json:"event"`
    Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload enters a viewer session into a showtime's group.
type JoinPayload struct {
    ShowtimeID uint64 `json:"showtimeId"`
    UserID     uint64 `json:"userId"`
}

// SeatPayload is shared by seat-selected, seat-deselected and
// seat-unavailable.  On broadcasts UserID identifies the holder.
type SeatPayload struct {
    ShowtimeID uint64 `json:"showtimeId,omitempty"`
    SeatCode   string `json:"seatCode"`
    UserID     uint64 `json:"userId"`
}

// ClearPayload lists seats dropped in bulk, either by the holder giving
// them up or by a completed payment making them permanently unavailable.
type ClearPayload struct {
    ShowtimeID uint64   `json:"showtimeId,omitempty"`
    UserID     uint64   `json:"userId"`
    SeatCodes  []string `json:"seatCodes"`
}

// ErrorPayload reports a failed inbound operation to its sender.
type ErrorPayload struct {
    Message string `json:"message"`
}

// encode marshals an envelope for delivery.  Payload marshalling of the
// types above cannot fail, so errors collapse to a nil frame the hub skips.
func encode(event string, payload interface{}) []byte {
    data, err := json.Marshal(payload)
    if err != nil {
        return nil
    }
    raw, err := json.Marshal(Envelope{Event: event, Data: data})
    if err != nil {
        return nil
    }
    return raw
}
