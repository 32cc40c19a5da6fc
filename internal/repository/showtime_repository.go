package repository

import (
    "context"
    "database/sql"
    "encoding/json"
)

// ShowtimeRepo provides access to the durable booked-seat list of a
// showtime.  Only the payment reconciliation writes here, and only on a
// COMPLETED transition; seat holds live in the Redis lock store instead.
type ShowtimeRepo struct {
    db *sql.DB
}

// NewShowtimeRepo returns a new ShowtimeRepo bound to the provided database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// GetBookedSeats returns the committed seat codes for a showtime.  A NULL
// column is treated as an empty list.  Returns ErrShowtimeNotFound when the
// showtime does not exist.
func (r *ShowtimeRepo) GetBookedSeats(ctx context.Context, showtimeID uint64) ([]string, error) {
    var raw sql.NullString
    err := r.db.QueryRowContext(ctx,
        `SELECT booked_seats FROM showtimes WHERE id = ?`, showtimeID,
    ).Scan(&raw)
    if err == sql.ErrNoRows {
        return nil, ErrShowtimeNotFound
    }
    if err != nil {
        return nil, err
    }
    return decodeSeats(raw)
}

// MergeBookedSeatsTx appends newly sold seats to the showtime's durable
// list inside the supplied transaction.  The row is locked so concurrent
// reconciliations for different orders of the same showtime serialize their
// read-merge-write.  Holds have already guaranteed no overlap between the
// merged sets, so a plain union is sufficient.
func (r *ShowtimeRepo) MergeBookedSeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seats []string) error {
    if len(seats) == 0 {
        return nil
    }
    var raw sql.NullString
    err := tx.QueryRowContext(ctx,
        `SELECT booked_seats FROM showtimes WHERE id = ? FOR UPDATE`, showtimeID,
    ).Scan(&raw)
    if err == sql.ErrNoRows {
        return ErrShowtimeNotFound
    }
    if err != nil {
        return err
    }
    current, err := decodeSeats(raw)
    if err != nil {
        // A corrupt column should not block a paid order; start over from
        // the seats being committed.
        current = nil
    }
    merged, err := json.Marshal(append(current, seats...))
    if err != nil {
        return err
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE showtimes SET booked_seats = ? WHERE id = ?`, string(merged), showtimeID)
    return err
}

func decodeSeats(raw sql.NullString) ([]string, error) {
    if !raw.Valid || raw.String == "" {
        return []string{}, nil
    }
    var seats []string
    if err := json.Unmarshal([]byte(raw.String), &seats); err != nil {
        return nil, err
    }
    if seats == nil {
        seats = []string{}
    }
    return seats, nil
}
