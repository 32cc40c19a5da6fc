package repository

import (
    "context"
    "database/sql"
    "encoding/json"

    "github.com/cinevn/backend/internal/model"
)

// OrderRepo provides data access to the orders table.  Orders are inserted
// PENDING at checkout and moved to a terminal status exactly once by the
// payment reconciliation; MarkTerminalTx enforces that transition at the
// SQL level so replayed callbacks become observable no-ops.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so services can open transactions that
// span orders, accounts and showtimes.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// Create inserts a new PENDING order.  Seats and combos are stored as JSON;
// the seats listed exist only as ephemeral holds at this point.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
    seats, err := json.Marshal(o.Seats)
    if err != nil {
        return err
    }
    combos := o.Combos
    if len(combos) == 0 {
        combos = json.RawMessage("[]")
    }
    _, err = r.db.ExecContext(ctx,
        `INSERT INTO orders
            (order_id, movie_id, cinema_id, showtime_id, room_id,
             seats, combos, total_amount, original_amount, points_used,
             payment_method, status, user_id)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        o.OrderID, o.MovieID, o.CinemaID, o.ShowtimeID, o.RoomID,
        string(seats), string(combos), o.TotalAmount, o.OriginalAmount, o.PointsUsed,
        o.PaymentMethod, model.OrderStatusPending, o.UserID,
    )
    return err
}

// GetByOrderID loads one order by its provider-facing reference.  Returns
// ErrOrderNotFound when no row matches.
func (r *OrderRepo) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT order_id, movie_id, cinema_id, showtime_id, room_id,
                seats, combos, total_amount, original_amount, points_used,
                payment_method, status, user_id, payment_info, created_at
         FROM orders WHERE order_id = ?`, orderID)
    return scanOrder(row)
}

// MarkTerminalTx transitions a PENDING order to the given terminal status
// and persists the provider metadata, inside the supplied transaction.  The
// WHERE clause on the current status is the idempotency guard: the first
// delivery of a callback affects one row, every replay affects zero and the
// caller must skip all side effects.
func (r *OrderRepo) MarkTerminalTx(ctx context.Context, tx *sql.Tx, orderID, status string, info model.PaymentInfo) (bool, error) {
    raw, err := json.Marshal(info)
    if err != nil {
        return false, err
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE orders SET status = ?, payment_info = ? WHERE order_id = ? AND status = ?`,
        status, string(raw), orderID, model.OrderStatusPending,
    )
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// ListCompletedByUser returns a user's COMPLETED orders, newest first.
func (r *OrderRepo) ListCompletedByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT order_id, movie_id, cinema_id, showtime_id, room_id,
                seats, combos, total_amount, original_amount, points_used,
                payment_method, status, user_id, payment_info, created_at
         FROM orders WHERE user_id = ? AND status = ? ORDER BY created_at DESC`,
        userID, model.OrderStatusCompleted)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var orders []model.Order
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        orders = append(orders, *o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return orders, nil
}

// rowScanner lets scanOrder serve both QueryRow and Rows results.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
    var (
        o           model.Order
        seatsRaw    string
        combosRaw   string
        paymentInfo sql.NullString
    )
    err := row.Scan(
        &o.OrderID, &o.MovieID, &o.CinemaID, &o.ShowtimeID, &o.RoomID,
        &seatsRaw, &combosRaw, &o.TotalAmount, &o.OriginalAmount, &o.PointsUsed,
        &o.PaymentMethod, &o.Status, &o.UserID, &paymentInfo, &o.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrOrderNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := json.Unmarshal([]byte(seatsRaw), &o.Seats); err != nil {
        return nil, err
    }
    o.Combos = json.RawMessage(combosRaw)
    if paymentInfo.Valid && paymentInfo.String != "" {
        var info model.PaymentInfo
        if err := json.Unmarshal([]byte(paymentInfo.String), &info); err != nil {
            return nil, err
        }
        o.PaymentInfo = &info
    }
    return &o, nil
}
