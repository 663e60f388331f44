package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/capshop-backend/api/middleware"
	"github.com/angelmondragon/capshop-backend/api/responses"
	"github.com/angelmondragon/capshop-backend/api/validators"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/session"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
)

const maxPromoCodeLength = 64

type productLookup interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

// CartGet returns the shopper's cart.
func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.ID, sess.Cart.Snapshot()))
	}
}

// CartAddItem adds one unit of a catalog product. Out-of-stock products and
// lines already at their stock ceiling are rejected with OUT_OF_STOCK.
func CartAddItem(products productLookup, m *metrics.Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c := sess.Cart
		if !c.IsInStock(*product) {
			m.CartMutation("add", false)
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeOutOfStock, "This product is out of stock").
				WithDetails(map[string]any{"product_id": product.ID}))
			return
		}
		changed := c.Add(*product)
		m.CartMutation("add", changed)
		if !changed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeOutOfStock,
				fmt.Sprintf("Only %d available, all of them are already in your cart", product.AvailableQuantity)).
				WithDetails(map[string]any{"product_id": product.ID, "in_cart": c.CartQuantity(product.ID)}))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(sess.ID, c.Snapshot()))
	}
}

// CartUpdateItem sets a line quantity, clamped to stock. A quantity of zero
// keeps the line but leaves it out of checkout.
func CartUpdateItem(m *metrics.Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		changed := sess.Cart.UpdateQuantity(productID, *payload.Quantity)
		m.CartMutation("update_quantity", changed)
		if !changed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart").
				WithDetails(map[string]any{"product_id": productID}))
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.ID, sess.Cart.Snapshot()))
	}
}

// CartRemoveItem deletes a line. Removing a missing product is a no-op.
func CartRemoveItem(m *metrics.Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.CartMutation("remove", sess.Cart.Remove(chi.URLParam(r, "productId")))
		responses.WriteSuccess(w, newCartResponse(sess.ID, sess.Cart.Snapshot()))
	}
}

// CartClear empties the cart and resets the promo state.
func CartClear(m *metrics.Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.Cart.Clear()
		m.CartMutation("clear", true)
		responses.WriteSuccess(w, newCartResponse(sess.ID, sess.Cart.Snapshot()))
	}
}

// CartApplyPromo stores the code and validates it against the current
// subtotal. A rejected code is not an HTTP error: the cart comes back with
// promo_error set. An empty code removes the promo.
func CartApplyPromo(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c := sess.Cart
		code := validators.SanitizeString(payload.Code, maxPromoCodeLength)
		c.SetPromoCode(code)
		c.SetPromoError("")
		if code == "" {
			c.SetDiscount(decimal.Zero)
			responses.WriteSuccess(w, newCartResponse(sess.ID, c.Snapshot()))
			return
		}

		if _, err := c.ValidatePromoCode(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sess.ID, c.Snapshot()))
	}
}

func requireSession(r *http.Request) (*session.Session, error) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil || sess.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing")
	}
	return sess, nil
}
