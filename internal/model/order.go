package model

import (
    "encoding/json"
    "time"
)

// Order statuses.  An order is created PENDING when checkout starts and is
// moved to exactly one terminal status by the payment reconciliation when
// the provider callback arrives.  Terminal statuses never change again.
const (
    OrderStatusPending   = "PENDING"
    OrderStatusCompleted = "COMPLETED"
    OrderStatusFailed    = "FAILED"
)

// Order records a user's checkout for a specific showtime.  The seats listed
// here are only tentative holds until the order reaches COMPLETED; at that
// point they are merged into the showtime's durable booked-seat list.
//
// Fields:
//  OrderID        – provider-facing order reference (ORDER_<ts>_<n>).
//  MovieID        – movie being watched.
//  CinemaID       – cinema of the screening.
//  ShowtimeID     – showtime the seats belong to.
//  RoomID         – room of the screening.
//  Seats          – seat codes included in this order.
//  Combos         – snack combos as opaque JSON, stored verbatim.
//  TotalAmount    – amount charged, in VND.
//  OriginalAmount – amount before loyalty points were applied.
//  PointsUsed     – loyalty points spent on this order.
//  PaymentMethod  – payment channel, currently always "VNPay".
//  Status         – PENDING, COMPLETED or FAILED.
//  UserID         – account that placed the order.
//  PaymentInfo    – provider metadata, populated on the terminal transition.
//  CreatedAt      – creation timestamp.
type Order struct {
    OrderID        string          // orders.order_id
    MovieID        uint64          // orders.movie_id
    CinemaID       uint64          // orders.cinema_id
    ShowtimeID     uint64          // orders.showtime_id
    RoomID         uint64          // orders.room_id
    Seats          []string        // orders.seats (JSON array)
    Combos         json.RawMessage // orders.combos (JSON, passed through)
    TotalAmount    int64           // orders.total_amount
    OriginalAmount int64           // orders.original_amount
    PointsUsed     float64         // orders.points_used
    PaymentMethod  string          // orders.payment_method
    Status         string          // orders.status
    UserID         uint64          // orders.user_id
    PaymentInfo    *PaymentInfo    // orders.payment_info (JSON, nullable)
    CreatedAt      time.Time       // orders.created_at
}

// PaymentInfo is the provider metadata persisted alongside a terminal order.
// Amount is in major units; the provider reports minor units (x100).
type PaymentInfo struct {
    BankCode      string  `json:"bankCode"`
    PayDate       string  `json:"payDate"`
    TransactionNo string  `json:"transactionNo"`
    Amount        float64 `json:"amount"`
}
