// Package payment implements the VNPay integration: building signed hosted
// checkout URLs and verifying the detached signature on inbound callbacks.
// Both directions share one canonical form — keys sorted lexicographically,
// empty values dropped, values percent-encoded, pairs joined with '&' — and
// an HMAC-SHA512 over it with the merchant secret.
package payment

import (
    "crypto/hmac"
    "crypto/sha512"
    "encoding/hex"
    "errors"
    "fmt"
    "net/url"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/cinevn/backend/internal/config"
)

// ResponseCodeSuccess is the provider code that marks a successful payment.
// Every other code fails the order.
const ResponseCodeSuccess = "00"

// Signature and protocol parameter names.
const (
    paramSecureHash     = "vnp_SecureHash"
    paramSecureHashType = "vnp_SecureHashType"

    createDateLayout = "20060102150405" // provider timestamps: yyyyMMddHHmmss
)

// ErrInvalidSignature is returned when a callback's recomputed HMAC does not
// match the provided one. The associated order must be left untouched.
var ErrInvalidSignature = errors.New("vnpay signature mismatch")

// Client signs outbound checkout URLs and verifies inbound callbacks for
// one merchant account.
type Client struct {
    tmnCode string
    secret  string
    payURL  string
}

// NewClient builds a Client from the loaded provider configuration.
func NewClient(cfg config.VNPayConfig) *Client {
    return &Client{tmnCode: cfg.TmnCode, secret: cfg.HashSecret, payURL: cfg.PayURL}
}

// CheckoutRequest carries the per-order inputs of a hosted checkout URL.
// Amount is in major units (VND); the wire format uses minor units.
type CheckoutRequest struct {
    Amount    int64
    OrderID   string
    OrderInfo string
    ReturnURL string
    Locale    string
    CreatedAt time.Time
    ClientIP  string
}

// BuildPaymentURL assembles the signed redirect URL the client follows to
// the provider's hosted checkout.
func (c *Client) BuildPaymentURL(req CheckoutRequest) string {
    locale := req.Locale
    if locale == "" {
        locale = "vn"
    }
    params := map[string]string{
        "vnp_Version":    "2.1.0",
        "vnp_Command":    "pay",
        "vnp_TmnCode":    c.tmnCode,
        "vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
        "vnp_CurrCode":   "VND",
        "vnp_TxnRef":     req.OrderID,
        "vnp_OrderInfo":  req.OrderInfo,
        "vnp_OrderType":  "billpayment",
        "vnp_Locale":     locale,
        "vnp_ReturnUrl":  req.ReturnURL,
        "vnp_IpAddr":     req.ClientIP,
        "vnp_CreateDate": req.CreatedAt.Format(createDateLayout),
    }
    canonical := canonicalize(params)
    sig := c.sign(canonical)
    return fmt.Sprintf("%s?%s&%s=%s", c.payURL, canonical, paramSecureHash, sig)
}

// VerifyCallback recomputes the signature over the callback parameters and
// compares it constant-time against the detached one.  The signature fields
// themselves are excluded from the canonical form.
func (c *Client) VerifyCallback(query url.Values) error {
    provided := query.Get(paramSecureHash)
    if provided == "" {
        return ErrInvalidSignature
    }
    params := make(map[string]string, len(query))
    for key := range query {
        if key == paramSecureHash || key == paramSecureHashType {
            continue
        }
        params[key] = query.Get(key)
    }
    expected := c.sign(canonicalize(params))
    if !hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected)) {
        return ErrInvalidSignature
    }
    return nil
}

// CallbackParams are the provider fields the reconciliation consumes.
// Amount is converted from the wire's minor units to major units.
type CallbackParams struct {
    TxnRef        string
    ResponseCode  string
    Amount        float64
    BankCode      string
    PayDate       string
    TransactionNo string
}

// ParseCallback extracts the reconciliation-relevant fields from a verified
// callback query.
func ParseCallback(query url.Values) CallbackParams {
    minor, _ := strconv.ParseFloat(query.Get("vnp_Amount"), 64)
    return CallbackParams{
        TxnRef:        query.Get("vnp_TxnRef"),
        ResponseCode:  query.Get("vnp_ResponseCode"),
        Amount:        minor / 100,
        BankCode:      query.Get("vnp_BankCode"),
        PayDate:       query.Get("vnp_PayDate"),
        TransactionNo: query.Get("vnp_TransactionNo"),
    }
}

// canonicalize produces the string both sides sign: keys sorted by raw
// string comparison, entries with empty values dropped, values
// percent-encoded (space as '+', matching the original request encoding),
// joined as key=value with '&'.
func canonicalize(params map[string]string) string {
    keys := make([]string, 0, len(params))
    for key, value := range params {
        if value == "" {
            continue
        }
        keys = append(keys, key)
    }
    sort.Strings(keys)
    pairs := make([]string, 0, len(keys))
    for _, key := range keys {
        pairs = append(pairs, key+"="+url.QueryEscape(params[key]))
    }
    return strings.Join(pairs, "&")
}

func (c *Client) sign(canonical string) string {
    mac := hmac.New(sha512.New, []byte(c.secret))
    mac.Write([]byte(canonical))
    return hex.EncodeToString(mac.Sum(nil))
}
