package router // router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/cinevn/backend/internal/handler"    // HTTP handlers
    "github.com/cinevn/backend/internal/middleware" // JWT middleware
)

// Handlers bundles every handler the API mounts.  Wiring them through one
// struct keeps main small and makes the route table readable in one place.
type Handlers struct {
    Auth     *handler.AuthHandler
    Payment  *handler.PaymentHandler
    Ticket   *handler.TicketHandler
    Showtime *handler.ShowtimeHandler
    WS       *handler.WSHandler
}

// Register mounts all routes on e.
//
// Public routes cover health, auth, the VNPay gateway round trip and the
// seat views a client needs before it opens the realtime channel.  The
// gateway callbacks must stay unauthenticated: VNPay redirects the
// customer's browser there without any of our tokens.  Ticket history is
// the only JWT-protected group.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
    e.GET("/healthz", handler.Health)

    // ---- Auth ----
    e.POST("/auth/register", h.Auth.Register)
    e.POST("/auth/login", h.Auth.Login)

    // ---- Payment (app + web shells) ----
    e.POST("/payment/vnpay", h.Payment.CreateVNPayPayment)
    e.POST("/payment/vnpay-web", h.Payment.CreateVNPayPaymentWeb)
    e.GET("/payment/vnpay/callback", h.Payment.VNPayCallback)
    e.GET("/payment/vnpay/callback-web", h.Payment.VNPayCallbackWeb)

    // ---- Showtime seat views ----
    e.GET("/showtime/:id/booked-seats", h.Showtime.GetBookedSeats)
    e.GET("/showtime/:id/held-seats", h.Showtime.GetHeldSeats)

    // ---- Realtime seat channel ----
    e.GET("/ws", h.WS.Serve)

    // ---- Authenticated ----
    g := e.Group("", middleware.JWTAuth(jwtSecret))
    g.GET("/ticket/all", h.Ticket.ListTickets)
}
