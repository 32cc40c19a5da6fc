// Package queue defines message payloads exchanged over the message broker,
// the publisher used by the payment service and the background consumer
// that turns completed orders into audit log lines.
package queue

// OrderCompletedEvent is published when a payment callback completes an
// order. It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type OrderCompletedEvent struct {
    OrderID     string   `json:"order_id"`
    UserID      uint64   `json:"user_id"`
    ShowtimeID  uint64   `json:"showtime_id"`
    Seats       []string `json:"seats"`
    TotalAmount int64    `json:"total_amount"`
    PointsUsed  float64  `json:"points_used"`
    Reward      float64  `json:"reward"`
    BankCode    string   `json:"bank_code"`
    CompletedAt string   `json:"completed_at"`
}
