package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cinevn/backend/internal/service"
)

// TicketHandler serves the authenticated ticket history.
type TicketHandler struct {
    Payments *service.PaymentService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(payments *service.PaymentService) *TicketHandler {
    if payments == nil {
        panic("nil PaymentService passed to NewTicketHandler")
    }
    return &TicketHandler{Payments: payments}
}

// ListTickets handles GET /ticket/all.  The user is taken from the JWT
// set by the auth middleware; only COMPLETED orders are returned, newest
// first.
func (h *TicketHandler) ListTickets(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    orders, err := h.Payments.Tickets(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"tickets": orders})
}
