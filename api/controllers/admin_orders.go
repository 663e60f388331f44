package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/capshop-backend/api/responses"
	"github.com/angelmondragon/capshop-backend/api/validators"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/pagination"
)

type orderReader interface {
	GetBySessionID(ctx context.Context, sessionID string) (*orders.Order, error)
	List(ctx context.Context, params pagination.Params) (*orders.ListResult, error)
}

// AdminOrderList returns recorded orders, newest first, cursor paginated.
func AdminOrderList(svc orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.List(r.Context(), pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(result.Orders))
		for _, o := range result.Orders {
			out = append(out, newOrderResponse(o))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      out,
			"next_cursor": result.NextCursor,
		})
	}
}

// AdminOrderBySession returns the order recorded for a checkout session.
func AdminOrderBySession(svc orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id is required"))
			return
		}

		order, err := svc.GetBySessionID(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFulfillmentOrderResponse(*order))
	}
}
