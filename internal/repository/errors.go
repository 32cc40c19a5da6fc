// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. For example, ErrSeatTaken signals that a seat claim lost
// the race to an earlier holder, while ErrStoreUnavailable marks a
// lock-store outage during which seats must be treated as unavailable
// rather than silently claimable.
package repository

import "errors"

// ErrSeatTaken is returned when a seat claim is rejected because a
// different user already holds the seat. The existing hold is never
// overwritten.
var ErrSeatTaken = errors.New("seat already held")

// ErrNotHolder is returned when a release is attempted by a user other
// than the recorded holder. The existing hold stays in place.
var ErrNotHolder = errors.New("not the holder of this seat")

// ErrHoldAbsent is returned when a release targets a seat that has no
// active hold, typically because it already expired.
var ErrHoldAbsent = errors.New("no active hold for this seat")

// ErrStoreUnavailable wraps lock-store transport failures. Hold
// operations fail closed on it: the seat is reported unavailable so a
// Redis outage can never produce a double booking.
var ErrStoreUnavailable = errors.New("seat lock store unavailable")

// ErrOrderNotFound is returned when a payment callback references an
// order id that does not exist. Handlers treat this as fatal for the
// callback: nothing is mutated.
var ErrOrderNotFound = errors.New("order not found")

// ErrShowtimeNotFound is returned when a showtime id cannot be resolved.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrEmailExists is returned when registering with an email that is
// already taken. Handlers should translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrAccountNotFound is returned when an account lookup by email or id
// matches no row.
var ErrAccountNotFound = errors.New("account not found")
