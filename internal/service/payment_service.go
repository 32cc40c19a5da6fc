package service

import (
    "context"
    "crypto/rand"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "math"
    "net/url"
    "time"

    "github.com/cinevn/backend/internal/config"
    "github.com/cinevn/backend/internal/model"
    "github.com/cinevn/backend/internal/payment"
    "github.com/cinevn/backend/internal/queue"
    "github.com/cinevn/backend/internal/repository"
)

// Shell identifies which client started a checkout; the provider calls a
// shell-specific callback endpoint and the final redirect differs (deep
// link vs web page) while carrying the same status value.
type Shell int

const (
    ShellApp Shell = iota // native app, redirected via deep link
    ShellWeb              // browser, redirected to the web result page
)

// Reward policy: 10% of the amount spent, scaled down by 1000 to express
// the reward in loyalty-point units.
const (
    rewardRate  = 0.10
    rewardScale = 1000
)

// ErrMissingFields is returned when a checkout request lacks required
// booking fields.  Nothing is written in that case.
var ErrMissingFields = errors.New("missing required booking fields")

// OrderEventPublisher publishes the post-completion audit event.  May be
// nil when no broker is configured.
type OrderEventPublisher interface {
    PublishOrderCompleted(ctx context.Context, event queue.OrderCompletedEvent) error
}

// PaymentService owns the two halves of the payment flow: creating a
// PENDING order with a signed checkout URL, and reconciling the provider's
// callback into a terminal order exactly once.
type PaymentService struct {
    vnpay     *payment.Client
    cfg       config.VNPayConfig
    orders    *repository.OrderRepo
    accounts  *repository.AccountRepo
    showtimes *repository.ShowtimeRepo
    holds     *HoldCoordinator
    publisher OrderEventPublisher
}

// NewPaymentService wires the payment service.  publisher may be nil.
func NewPaymentService(cfg config.VNPayConfig, orders *repository.OrderRepo, accounts *repository.AccountRepo, showtimes *repository.ShowtimeRepo, holds *HoldCoordinator, publisher OrderEventPublisher) *PaymentService {
    return &PaymentService{
        vnpay:     payment.NewClient(cfg),
        cfg:       cfg,
        orders:    orders,
        accounts:  accounts,
        showtimes: showtimes,
        holds:     holds,
        publisher: publisher,
    }
}

// CheckoutInput is the booking a client submits before being sent to the
// hosted checkout.  The seats listed must already be held by the user; they
// are not booked durably until the payment callback completes the order.
type CheckoutInput struct {
    MovieID        uint64          `json:"movieId"`
    CinemaID       uint64          `json:"cinemaId"`
    ShowtimeID     uint64          `json:"showtimeId"`
    RoomID         uint64          `json:"roomId"`
    Seats          []string        `json:"seats"`
    Combos         json.RawMessage `json:"combos"`
    TotalAmount    int64           `json:"totalAmount"`
    OriginalAmount int64           `json:"originalAmount"`
    PointsUsed     float64         `json:"pointsUsed"`
    UserID         uint64          `json:"userId"`
}

// Checkout validates the booking, stores a PENDING order and returns the
// signed provider URL the client should redirect to.
func (s *PaymentService) Checkout(ctx context.Context, in CheckoutInput, shell Shell, clientIP string) (string, string, error) {
    if in.MovieID == 0 || in.CinemaID == 0 || in.ShowtimeID == 0 || in.RoomID == 0 ||
        len(in.Seats) == 0 || len(in.Combos) == 0 || in.TotalAmount <= 0 || in.UserID == 0 {
        // Combos must be present; a booking without snacks sends [].
        return "", "", ErrMissingFields
    }
    if in.OriginalAmount == 0 {
        in.OriginalAmount = in.TotalAmount
    }
    orderID, err := generateOrderID(time.Now().UTC())
    if err != nil {
        return "", "", err
    }
    order := &model.Order{
        OrderID:        orderID,
        MovieID:        in.MovieID,
        CinemaID:       in.CinemaID,
        ShowtimeID:     in.ShowtimeID,
        RoomID:         in.RoomID,
        Seats:          in.Seats,
        Combos:         in.Combos,
        TotalAmount:    in.TotalAmount,
        OriginalAmount: in.OriginalAmount,
        PointsUsed:     in.PointsUsed,
        PaymentMethod:  "VNPay",
        UserID:         in.UserID,
    }
    if err := s.orders.Create(ctx, order); err != nil {
        return "", "", err
    }
    payURL := s.vnpay.BuildPaymentURL(payment.CheckoutRequest{
        Amount:    in.TotalAmount,
        OrderID:   orderID,
        OrderInfo: "Thanh toan don hang " + orderID,
        ReturnURL: s.callbackURL(shell),
        Locale:    "vn",
        CreatedAt: time.Now().UTC(),
        ClientIP:  clientIP,
    })
    return payURL, orderID, nil
}

// HandleCallback reconciles one provider callback.  It always returns a
// redirect URL for the caller's shell carrying status=COMPLETED|FAILED; the
// error reports what went wrong for logging without changing the redirect
// contract.  State is mutated at most once per order regardless of how many
// times the provider re-delivers the callback.
func (s *PaymentService) HandleCallback(ctx context.Context, query url.Values, shell Shell) (string, error) {
    if err := s.vnpay.VerifyCallback(query); err != nil {
        // Authentication failure: order untouched, generic failure redirect.
        return s.resultURL(shell, model.OrderStatusFailed), err
    }
    cb := payment.ParseCallback(query)
    order, err := s.orders.GetByOrderID(ctx, cb.TxnRef)
    if err != nil {
        return s.resultURL(shell, model.OrderStatusFailed), err
    }
    if order.Status != model.OrderStatusPending {
        // Duplicate delivery: success-no-op with the original outcome.
        return s.resultURL(shell, order.Status), nil
    }

    status := model.OrderStatusFailed
    if cb.ResponseCode == payment.ResponseCodeSuccess {
        status = model.OrderStatusCompleted
    }
    reward := math.Floor(float64(order.TotalAmount)*rewardRate) / rewardScale

    applied, err := s.finalize(ctx, order, status, cb, reward)
    if err != nil {
        return s.resultURL(shell, model.OrderStatusFailed), err
    }
    if !applied {
        // Lost the race against a concurrent delivery of the same callback;
        // report whatever outcome that delivery produced.
        if current, err := s.orders.GetByOrderID(ctx, cb.TxnRef); err == nil {
            return s.resultURL(shell, current.Status), nil
        }
        return s.resultURL(shell, status), nil
    }

    if status == model.OrderStatusCompleted {
        s.afterCompletion(ctx, order, cb, reward)
    }
    return s.resultURL(shell, status), nil
}

// finalize performs the terminal transition and, for COMPLETED, the point
// settlement and booked-seat merge in one transaction, so a crash cannot
// leave points adjusted without seats committed or vice versa.  The status
// UPDATE's affected-row count reports whether this delivery was first.
func (s *PaymentService) finalize(ctx context.Context, order *model.Order, status string, cb payment.CallbackParams, reward float64) (bool, error) {
    tx, err := s.orders.DB().BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    info := model.PaymentInfo{
        BankCode:      cb.BankCode,
        PayDate:       cb.PayDate,
        TransactionNo: cb.TransactionNo,
        Amount:        cb.Amount,
    }
    applied, err := s.orders.MarkTerminalTx(ctx, tx, order.OrderID, status, info)
    if err != nil {
        return false, err
    }
    if !applied {
        return false, nil
    }
    if status == model.OrderStatusCompleted {
        if err := s.accounts.SettlePointsTx(ctx, tx, order.UserID, order.PointsUsed, reward); err != nil {
            return false, err
        }
        if err := s.showtimes.MergeBookedSeatsTx(ctx, tx, order.ShowtimeID, order.Seats); err != nil {
            return false, err
        }
    }
    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return true, nil
}

// afterCompletion runs the post-commit side effects that need no
// transactional coupling: dropping the ephemeral holds with a bulk-clear
// broadcast and publishing the audit event.  Failures are logged only; the
// order is already durably completed.
func (s *PaymentService) afterCompletion(ctx context.Context, order *model.Order, cb payment.CallbackParams, reward float64) {
    if err := s.holds.CommitSeats(ctx, order.ShowtimeID, order.UserID, order.Seats); err != nil {
        log.Printf("payment: commit seats for order %s: %v", order.OrderID, err)
    }
    if s.publisher == nil {
        return
    }
    ev := queue.OrderCompletedEvent{
        OrderID:     order.OrderID,
        UserID:      order.UserID,
        ShowtimeID:  order.ShowtimeID,
        Seats:       order.Seats,
        TotalAmount: order.TotalAmount,
        PointsUsed:  order.PointsUsed,
        Reward:      reward,
        BankCode:    cb.BankCode,
        CompletedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := s.publisher.PublishOrderCompleted(ctx, ev); err != nil {
        log.Printf("payment: publish order completed %s: %v", order.OrderID, err)
    }
}

// Tickets lists a user's completed orders, newest first.
func (s *PaymentService) Tickets(ctx context.Context, userID uint64) ([]model.Order, error) {
    return s.orders.ListCompletedByUser(ctx, userID)
}

func (s *PaymentService) callbackURL(shell Shell) string {
    if shell == ShellWeb {
        return s.cfg.ReturnURL + "/payment/vnpay/callback-web"
    }
    return s.cfg.ReturnURL + "/payment/vnpay/callback"
}

func (s *PaymentService) resultURL(shell Shell, status string) string {
    base := s.cfg.AppResultURL
    if shell == ShellWeb {
        base = s.cfg.WebResultURL
    }
    return base + "?status=" + status
}

// generateOrderID builds the provider-facing order reference:
// ORDER_<yyyyMMddHHmmss>_<n> with a random 0-999 suffix to keep references
// created in the same second distinct.
func generateOrderID(now time.Time) (string, error) {
    var buf [2]byte
    if _, err := rand.Read(buf[:]); err != nil {
        return "", err
    }
    n := binary.BigEndian.Uint16(buf[:]) % 1000
    return fmt.Sprintf("ORDER_%s_%d", now.Format("20060102150405"), n), nil
}
