package realtime

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"

    "github.com/cinevn/backend/internal/repository"
    "github.com/cinevn/backend/internal/service"
)

const (
    writeWait      = 10 * time.Second // deadline for a single websocket write
    pongWait       = 60 * time.Second // read deadline, refreshed by pongs
    pingPeriod     = 54 * time.Second // must be below pongWait
    maxMessageSize = 4096
    sendBufferSize = 64
    opTimeout      = 5 * time.Second // budget for one lock-store operation
)

// Session is a single websocket connection of one viewer.  It decodes
// inbound events, drives the hold coordinator and writes outbound frames
// from its send buffer.  A session belongs to at most one showtime group at
// a time; disconnecting performs no hold cleanup because TTL expiry covers
// abandoned holds.
type Session struct {
    id         string
    hub        *Hub
    holds      *service.HoldCoordinator
    conn       *websocket.Conn
    send       chan []byte
    userID     uint64
    showtimeID uint64 // current group, 0 before the first join

    mu     sync.Mutex // guards closed and the send channel's liveness
    closed bool
}

// NewSession wraps an upgraded websocket connection.
func NewSession(hub *Hub, holds *service.HoldCoordinator, conn *websocket.Conn) *Session {
    return &Session{
        id:    uuid.NewString(),
        hub:   hub,
        holds: holds,
        conn:  conn,
        send:  make(chan []byte, sendBufferSize),
    }
}

// ID returns the session identifier used to suppress broadcast echo.
func (s *Session) ID() string { return s.id }

// Deliver enqueues a frame without blocking.  A closed session or a full
// buffer reports false and the hub evicts the session.  The hub calls this
// outside its own lock, so a disconnect can race a broadcast; the mutex
// makes the closed check and the send atomic against Close.
func (s *Session) Deliver(msg []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return false
    }
    select {
    case s.send <- msg:
        return true
    default:
        return false
    }
}

// Close marks the session closed and shuts the outbound channel; the write
// pump then closes the underlying connection.  Safe to call more than once
// and concurrently with Deliver.
func (s *Session) Close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return
    }
    s.closed = true
    close(s.send)
}

// Run starts the write pump and blocks on the read pump until the
// connection drops.
func (s *Session) Run() {
    go s.writePump()
    s.readPump()
}

func (s *Session) readPump() {
    defer func() {
        if s.showtimeID != 0 {
            s.hub.Leave(s.showtimeID, s)
        }
        s.Close()
        _ = s.conn.Close()
    }()
    s.conn.SetReadLimit(maxMessageSize)
    _ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
    s.conn.SetPongHandler(func(string) error {
        return s.conn.SetReadDeadline(time.Now().Add(pongWait))
    })
    for {
        _, raw, err := s.conn.ReadMessage()
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                log.Printf("realtime: session %s read error: %v", s.id, err)
            }
            return
        }
        var env Envelope
        if err := json.Unmarshal(raw, &env); err != nil {
            s.sendError("malformed event")
            continue
        }
        s.handleEvent(env)
    }
}

func (s *Session) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        _ = s.conn.Close()
    }()
    for {
        select {
        case msg, ok := <-s.send:
            _ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
                return
            }
        case <-ticker.C:
            _ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}

func (s *Session) handleEvent(env Envelope) {
    ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
    defer cancel()
    switch env.Event {
    case EventJoinShowtime:
        var p JoinPayload
        if err := json.Unmarshal(env.Data, &p); err != nil || p.ShowtimeID == 0 {
            s.sendError("invalid join payload")
            return
        }
        s.join(ctx, p)
    case EventSeatSelected:
        p, ok := s.seatPayload(env.Data)
        if !ok {
            return
        }
        holder, err := s.holds.SelectSeat(ctx, p.ShowtimeID, p.SeatCode, p.UserID, s.id)
        switch {
        case errors.Is(err, repository.ErrSeatTaken):
            // Conflict goes to the requester only; siblings see nothing.
            s.deliverEvent(EventSeatUnavailable, SeatPayload{SeatCode: p.SeatCode, UserID: holder})
        case err != nil:
            s.sendError("seat hold failed")
        }
    case EventSeatDeselected:
        p, ok := s.seatPayload(env.Data)
        if !ok {
            return
        }
        if err := s.holds.DeselectSeat(ctx, p.ShowtimeID, p.SeatCode, p.UserID, s.id); err != nil {
            s.sendError("seat release failed")
        }
    case EventClearHeldSeats:
        var p ClearPayload
        if err := json.Unmarshal(env.Data, &p); err != nil {
            s.sendError("invalid clear payload")
            return
        }
        if p.ShowtimeID == 0 {
            p.ShowtimeID = s.showtimeID
        }
        if p.UserID == 0 {
            p.UserID = s.userID
        }
        if err := s.holds.ClearUserSeats(ctx, p.ShowtimeID, p.UserID, p.SeatCodes, s.id); err != nil {
            s.sendError("seat clear failed")
        }
    default:
        s.sendError("unknown event")
    }
}

// join moves the session into a showtime group and bootstraps it with the
// current hold snapshot before any live event can reach it.
func (s *Session) join(ctx context.Context, p JoinPayload) {
    if s.showtimeID != 0 {
        s.hub.Leave(s.showtimeID, s)
    }
    s.showtimeID = p.ShowtimeID
    s.userID = p.UserID
    s.hub.Join(p.ShowtimeID, s)
    held, err := s.holds.Snapshot(ctx, p.ShowtimeID)
    if err != nil {
        s.sendError("held seats unavailable")
        return
    }
    s.deliverEvent(EventInitHeldSeats, held)
}

// seatPayload decodes a seat event and fills showtime/user from the session
// state when the client omitted them.
func (s *Session) seatPayload(data json.RawMessage) (SeatPayload, bool) {
    var p SeatPayload
    if err := json.Unmarshal(data, &p); err != nil || p.SeatCode == "" {
        s.sendError("invalid seat payload")
        return SeatPayload{}, false
    }
    if p.ShowtimeID == 0 {
        p.ShowtimeID = s.showtimeID
    }
    if p.UserID == 0 {
        p.UserID = s.userID
    }
    if p.ShowtimeID == 0 {
        s.sendError("join a showtime first")
        return SeatPayload{}, false
    }
    return p, true
}

func (s *Session) deliverEvent(event string, payload interface{}) {
    if msg := encode(event, payload); msg != nil {
        s.Deliver(msg)
    }
}

func (s *Session) sendError(message string) {
    s.deliverEvent(EventError, ErrorPayload{Message: message})
}
