package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cinevn/backend/internal/model"
)

var orderColumns = []string{
    "order_id", "movie_id", "cinema_id", "showtime_id", "room_id",
    "seats", "combos", "total_amount", "original_amount", "points_used",
    "payment_method", "status", "user_id", "payment_info", "created_at",
}

func newMockDB(t *testing.T) (*OrderRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return NewOrderRepo(db), mock
}

func TestOrderCreateDefaultsCombos(t *testing.T) {
    repo, mock := newMockDB(t)
    mock.ExpectExec("INSERT INTO orders").
        WithArgs("ORDER_20260831120000_7", 1, 2, 7, 3,
            `["A1"]`, `[]`, 90000, 90000, 0.0,
            "VNPay", model.OrderStatusPending, 42).
        WillReturnResult(sqlmock.NewResult(1, 1))

    err := repo.Create(context.Background(), &model.Order{
        OrderID: "ORDER_20260831120000_7",
        MovieID: 1, CinemaID: 2, ShowtimeID: 7, RoomID: 3,
        Seats:       []string{"A1"},
        TotalAmount: 90000, OriginalAmount: 90000,
        PaymentMethod: "VNPay", UserID: 42,
    })
    require.NoError(t, err)
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByOrderID(t *testing.T) {
    repo, mock := newMockDB(t)
    created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
    mock.ExpectQuery("SELECT (.+) FROM orders WHERE order_id").
        WithArgs("ORDER_20260831120000_7").
        WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(
            "ORDER_20260831120000_7", 1, 2, 7, 3,
            `["A1","A2"]`, `[{"comboId":4,"qty":1}]`, 100000, 110000, 5.0,
            "VNPay", model.OrderStatusCompleted, 42,
            `{"bankCode":"NCB","payDate":"20260831120500","transactionNo":"14226112","amount":100000}`,
            created,
        ))

    o, err := repo.GetByOrderID(context.Background(), "ORDER_20260831120000_7")
    require.NoError(t, err)
    assert.Equal(t, []string{"A1", "A2"}, o.Seats)
    assert.Equal(t, model.OrderStatusCompleted, o.Status)
    require.NotNil(t, o.PaymentInfo)
    assert.Equal(t, "NCB", o.PaymentInfo.BankCode)
    assert.Equal(t, float64(100000), o.PaymentInfo.Amount)
    assert.Equal(t, created, o.CreatedAt)
}

func TestGetByOrderIDNotFound(t *testing.T) {
    repo, mock := newMockDB(t)
    mock.ExpectQuery("SELECT (.+) FROM orders WHERE order_id").
        WithArgs("ORDER_missing").
        WillReturnRows(sqlmock.NewRows(orderColumns))

    _, err := repo.GetByOrderID(context.Background(), "ORDER_missing")
    require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMarkTerminalTxGuardsOnPending(t *testing.T) {
    repo, mock := newMockDB(t)
    info := model.PaymentInfo{BankCode: "NCB", PayDate: "20260831120500", TransactionNo: "14226112", Amount: 100000}

    t.Run("first delivery applies", func(t *testing.T) {
        mock.ExpectBegin()
        mock.ExpectExec("UPDATE orders SET status").
            WithArgs(model.OrderStatusCompleted, sqlmock.AnyArg(), "ORDER_1", model.OrderStatusPending).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        tx, err := repo.DB().Begin()
        require.NoError(t, err)
        applied, err := repo.MarkTerminalTx(context.Background(), tx, "ORDER_1", model.OrderStatusCompleted, info)
        require.NoError(t, err)
        assert.True(t, applied)
        require.NoError(t, tx.Commit())
    })

    t.Run("replay affects zero rows", func(t *testing.T) {
        mock.ExpectBegin()
        mock.ExpectExec("UPDATE orders SET status").
            WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectRollback()

        tx, err := repo.DB().Begin()
        require.NoError(t, err)
        applied, err := repo.MarkTerminalTx(context.Background(), tx, "ORDER_1", model.OrderStatusCompleted, info)
        require.NoError(t, err)
        assert.False(t, applied)
        require.NoError(t, tx.Rollback())
    })

    require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompletedByUser(t *testing.T) {
    repo, mock := newMockDB(t)
    mock.ExpectQuery("SELECT (.+) FROM orders WHERE user_id = \\? AND status = \\? ORDER BY created_at DESC").
        WithArgs(42, model.OrderStatusCompleted).
        WillReturnRows(sqlmock.NewRows(orderColumns).
            AddRow("ORDER_2", 1, 2, 7, 3, `["B1"]`, `[]`, 90000, 90000, 0.0,
                "VNPay", model.OrderStatusCompleted, 42, nil, time.Now()).
            AddRow("ORDER_1", 1, 2, 7, 3, `["A1"]`, `[]`, 90000, 90000, 0.0,
                "VNPay", model.OrderStatusCompleted, 42, nil, time.Now().Add(-time.Hour)))

    orders, err := repo.ListCompletedByUser(context.Background(), 42)
    require.NoError(t, err)
    require.Len(t, orders, 2)
    assert.Equal(t, "ORDER_2", orders[0].OrderID)
    assert.Nil(t, orders[0].PaymentInfo)
}
