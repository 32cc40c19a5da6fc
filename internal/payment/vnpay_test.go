package payment

import (
    "net/url"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cinevn/backend/internal/config"
)

func testClient() *Client {
    return NewClient(config.VNPayConfig{
        TmnCode:    "CINEVN01",
        HashSecret: "vnpaysecret",
        PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
    })
}

// callbackQuery returns a validly signed callback as VNPay would send it.
// The signature was computed independently of sign() so the test would
// catch a canonicalization drift, not mirror it.
func callbackQuery() url.Values {
    q := url.Values{}
    q.Set("vnp_Amount", "10000000")
    q.Set("vnp_BankCode", "NCB")
    q.Set("vnp_CardType", "ATM")
    q.Set("vnp_OrderInfo", "Thanh toan don hang ORDER_20260831120000_042")
    q.Set("vnp_PayDate", "20260831120500")
    q.Set("vnp_ResponseCode", "00")
    q.Set("vnp_TmnCode", "CINEVN01")
    q.Set("vnp_TransactionNo", "14226112")
    q.Set("vnp_TransactionStatus", "00")
    q.Set("vnp_TxnRef", "ORDER_20260831120000_042")
    q.Set("vnp_SecureHash", "ec3fb8f1527f105b3fd4af582196ea28fbff1c90bec8f3366b0cda0b92cc2039f0f7b0a7d1dcb94972423e731f0fd8a9d596bc01a5c07845123aefdf63930961")
    return q
}

func TestCanonicalize(t *testing.T) {
    got := canonicalize(map[string]string{
        "vnp_TxnRef":    "ORDER_20260831120000_042",
        "vnp_Amount":    "10000000",
        "vnp_OrderInfo": "Thanh toan don hang ORDER_20260831120000_042",
        "vnp_BankCode":  "", // empty values are dropped before signing
    })
    want := "vnp_Amount=10000000&vnp_OrderInfo=Thanh+toan+don+hang+ORDER_20260831120000_042&vnp_TxnRef=ORDER_20260831120000_042"
    assert.Equal(t, want, got)
}

func TestVerifyCallback(t *testing.T) {
    c := testClient()

    t.Run("valid signature", func(t *testing.T) {
        require.NoError(t, c.VerifyCallback(callbackQuery()))
    })

    t.Run("uppercase hex accepted", func(t *testing.T) {
        q := callbackQuery()
        q.Set("vnp_SecureHash", strings.ToUpper(q.Get("vnp_SecureHash")))
        require.NoError(t, c.VerifyCallback(q))
    })

    t.Run("secure hash type excluded from canonical form", func(t *testing.T) {
        q := callbackQuery()
        q.Set("vnp_SecureHashType", "HmacSHA512")
        require.NoError(t, c.VerifyCallback(q))
    })

    t.Run("tampered amount rejected", func(t *testing.T) {
        q := callbackQuery()
        q.Set("vnp_Amount", "100")
        require.ErrorIs(t, c.VerifyCallback(q), ErrInvalidSignature)
    })

    t.Run("tampered response code rejected", func(t *testing.T) {
        q := callbackQuery()
        q.Set("vnp_ResponseCode", "07")
        require.ErrorIs(t, c.VerifyCallback(q), ErrInvalidSignature)
    })

    t.Run("missing signature rejected", func(t *testing.T) {
        q := callbackQuery()
        q.Del("vnp_SecureHash")
        require.ErrorIs(t, c.VerifyCallback(q), ErrInvalidSignature)
    })

    t.Run("wrong secret rejected", func(t *testing.T) {
        other := NewClient(config.VNPayConfig{TmnCode: "CINEVN01", HashSecret: "othersecret"})
        require.ErrorIs(t, other.VerifyCallback(callbackQuery()), ErrInvalidSignature)
    })
}

func TestBuildPaymentURL(t *testing.T) {
    c := testClient()
    created := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
    raw := c.BuildPaymentURL(CheckoutRequest{
        Amount:    100000,
        OrderID:   "ORDER_20260831120000_042",
        OrderInfo: "Thanh toan don hang ORDER_20260831120000_042",
        ReturnURL: "https://api.cinevn.example",
        CreatedAt: created,
        ClientIP:  "203.0.113.9",
    })

    require.True(t, strings.HasPrefix(raw, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?"))

    u, err := url.Parse(raw)
    require.NoError(t, err)
    q := u.Query()
    assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
    assert.Equal(t, "pay", q.Get("vnp_Command"))
    assert.Equal(t, "10000000", q.Get("vnp_Amount"), "amount must be in minor units")
    assert.Equal(t, "VND", q.Get("vnp_CurrCode"))
    assert.Equal(t, "vn", q.Get("vnp_Locale"), "locale defaults to vn")
    assert.Equal(t, "20260831120000", q.Get("vnp_CreateDate"))
    assert.Equal(t,
        "8e6f47c661f2d2625acc263ee661e339cebfb9c95e6be72dd7dc8b76e62c69e5752a273188b281a79cd0176723d481262704ed15772c78d2c8d3172647814980",
        q.Get("vnp_SecureHash"))

    // The URL must verify under the same rules as an inbound callback.
    require.NoError(t, c.VerifyCallback(q))
}

func TestParseCallback(t *testing.T) {
    p := ParseCallback(callbackQuery())
    assert.Equal(t, "ORDER_20260831120000_042", p.TxnRef)
    assert.Equal(t, "00", p.ResponseCode)
    assert.Equal(t, float64(100000), p.Amount, "minor units convert to major")
    assert.Equal(t, "NCB", p.BankCode)
    assert.Equal(t, "20260831120500", p.PayDate)
    assert.Equal(t, "14226112", p.TransactionNo)
}
