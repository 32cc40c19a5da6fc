package handler

import (
    "log"
    "net/http"

    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/cinevn/backend/internal/realtime"
    "github.com/cinevn/backend/internal/service"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    // Seat maps are embedded in mobile apps and the web storefront, so
    // the origin check is open; auth happens on the join event.
    CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades seat-map clients onto the realtime hub.
type WSHandler struct {
    Hub   *realtime.Hub
    Holds *service.HoldCoordinator
}

// NewWSHandler constructs a WSHandler.
func NewWSHandler(hub *realtime.Hub, holds *service.HoldCoordinator) *WSHandler {
    if hub == nil || holds == nil {
        panic("nil dependency passed to NewWSHandler")
    }
    return &WSHandler{Hub: hub, Holds: holds}
}

// Serve handles GET /ws.  Each connection gets its own session which runs
// until the peer disconnects or is evicted for falling behind.
func (h *WSHandler) Serve(c echo.Context) error {
    conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        log.Printf("ws: upgrade failed: %v", err)
        return err
    }
    sess := realtime.NewSession(h.Hub, h.Holds, conn)
    sess.Run()
    return nil
}
