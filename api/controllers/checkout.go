package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/capshop-backend/api/responses"
	"github.com/angelmondragon/capshop-backend/api/validators"
	"github.com/angelmondragon/capshop-backend/internal/cart"
	"github.com/angelmondragon/capshop-backend/internal/checkout"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, c *cart.Cart, cartSessionID string, customer checkout.Customer) (*checkout.SessionResult, error)
	Confirm(ctx context.Context, sessionID string, c *cart.Cart) (*checkout.Confirmation, error)
}

type createCheckoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"max=200"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

type checkoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type confirmationResponse struct {
	SessionID     string              `json:"session_id"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Currency      enums.Currency      `json:"currency"`
	AmountTotal   string              `json:"amount_total"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CustomerEmail string              `json:"customer_email,omitempty"`
	Shipping      *orders.Address     `json:"shipping,omitempty"`
	Order         *orderResponse      `json:"order,omitempty"`
}

// CheckoutCreateSession opens a hosted payment session for the shopper's cart.
// The body is optional; customer details only prefill the payment page.
func CheckoutCreateSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createCheckoutRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.CreateSession(r.Context(), sess.Cart, sess.ID, checkout.Customer{
			Name:  strings.TrimSpace(payload.CustomerName),
			Email: strings.TrimSpace(payload.CustomerEmail),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutSessionResponse{SessionID: result.ID, URL: result.URL})
	}
}

// CheckoutConfirm backs the order confirmation page. A paid session is
// recorded as an order and the shopper's cart is emptied.
func CheckoutConfirm(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmation, err := svc.Confirm(r.Context(), r.URL.Query().Get("session_id"), sess.Cart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := confirmationResponse{
			SessionID:     confirmation.SessionID,
			PaymentStatus: confirmation.PaymentStatus,
			Currency:      confirmation.Currency,
			AmountTotal:   money(confirmation.AmountTotal),
			CustomerName:  confirmation.CustomerName,
			CustomerEmail: confirmation.CustomerEmail,
			Shipping:      confirmation.Shipping,
		}
		if confirmation.Order != nil {
			order := newOrderResponse(*confirmation.Order)
			out.Order = &order
		}
		responses.WriteSuccess(w, out)
	}
}
