package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/cinevn/backend/internal/repository"
    "github.com/cinevn/backend/internal/service"
)

// ShowtimeHandler serves the two seat views a booking client needs before
// connecting to the realtime channel: seats already sold (durable) and
// seats currently held by other viewers (ephemeral).
type ShowtimeHandler struct {
    Showtimes *repository.ShowtimeRepo
    Holds     *service.HoldCoordinator
}

// NewShowtimeHandler constructs a ShowtimeHandler.
func NewShowtimeHandler(showtimes *repository.ShowtimeRepo, holds *service.HoldCoordinator) *ShowtimeHandler {
    if showtimes == nil || holds == nil {
        panic("nil dependency passed to NewShowtimeHandler")
    }
    return &ShowtimeHandler{Showtimes: showtimes, Holds: holds}
}

// GetBookedSeats handles GET /showtime/:id/booked-seats.  An unknown
// showtime returns an empty list, matching what seat-map clients expect.
func (h *ShowtimeHandler) GetBookedSeats(c echo.Context) error {
    id, err := parseShowtimeID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
    }
    seats, err := h.Showtimes.GetBookedSeats(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrShowtimeNotFound {
            return c.JSON(http.StatusOK, echo.Map{"bookedSeats": []string{}})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookedSeats": seats})
}

// GetHeldSeats handles GET /showtime/:id/held-seats.  It returns the lock
// store snapshot; a lock-store outage is reported rather than masked so
// clients treat the seats as unavailable.
func (h *ShowtimeHandler) GetHeldSeats(c echo.Context) error {
    id, err := parseShowtimeID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
    }
    held, err := h.Holds.Snapshot(c.Request().Context(), id)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "held seats unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"heldSeats": held})
}

func parseShowtimeID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.ErrBadRequest
    }
    return id, nil
}
