package model

// Showtime carries the one column of the showtimes table this service
// writes: the durable list of seats already sold.  A seat code appears at
// most once across all completed orders of a showtime; the reconciliation
// appends to this list only on a COMPLETED transition, and the hold
// coordinator never touches it.
//
// Catalog fields (movie, room, schedule) belong to the CRUD surface and are
// not modelled here.
type Showtime struct {
    ID          uint64   // showtimes.id
    BookedSeats []string // showtimes.booked_seats (JSON array)
}
