package handler

import (
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/cinevn/backend/internal/service"
)

// PaymentHandler exposes the checkout endpoints and the provider callback
// endpoints, one pair per client shell.  All business decisions live in the
// payment service; the handlers only translate HTTP.
type PaymentHandler struct {
    Payments *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
    if payments == nil {
        panic("nil service passed to NewPaymentHandler")
    }
    return &PaymentHandler{Payments: payments}
}

// CreateVNPayPayment handles POST /payment/vnpay for the native app shell.
// It validates the booking, stores a PENDING order and responds with the
// signed hosted-checkout URL.
func (h *PaymentHandler) CreateVNPayPayment(c echo.Context) error {
    return h.checkout(c, service.ShellApp)
}

// CreateVNPayPaymentWeb handles POST /payment/vnpay-web for the web shell.
func (h *PaymentHandler) CreateVNPayPaymentWeb(c echo.Context) error {
    return h.checkout(c, service.ShellWeb)
}

func (h *PaymentHandler) checkout(c echo.Context, shell service.Shell) error {
    var in service.CheckoutInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    payURL, orderID, err := h.Payments.Checkout(c.Request().Context(), in, shell, c.RealIP())
    if err != nil {
        if err == service.ErrMissingFields {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order information"})
        }
        log.Printf("payment: checkout failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create payment"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "paymentUrl": payURL,
        "orderId":    orderID,
    })
}

// VNPayCallback handles GET /payment/vnpay/callback, the provider redirect
// for the native shell.  Whatever happens the user ends up on a result
// page; reconciliation errors are logged for audit, never surfaced raw.
func (h *PaymentHandler) VNPayCallback(c echo.Context) error {
    return h.callback(c, service.ShellApp)
}

// VNPayCallbackWeb handles GET /payment/vnpay/callback-web for the web shell.
func (h *PaymentHandler) VNPayCallbackWeb(c echo.Context) error {
    return h.callback(c, service.ShellWeb)
}

func (h *PaymentHandler) callback(c echo.Context, shell service.Shell) error {
    redirect, err := h.Payments.HandleCallback(c.Request().Context(), c.QueryParams(), shell)
    if err != nil {
        log.Printf("payment: callback rejected: %v", err)
    }
    return c.Redirect(http.StatusFound, redirect)
}
