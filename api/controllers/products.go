package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/capshop-backend/api/responses"
	"github.com/angelmondragon/capshop-backend/api/validators"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

type productReader interface {
	ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*catalog.Product, error)
}

// ProductList serves the shop grid. type may repeat or be comma separated;
// the price range defaults to the shop's 0 to 1000 slider.
func ProductList(svc productReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, newProductResponse(p))
		}
		responses.WriteSuccess(w, map[string]any{"products": out})
	}
}

// ProductDetail returns one product by slug.
func ProductDetail(svc productReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		product, err := svc.GetProductBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

func parseProductFilter(r *http.Request) (catalog.ProductFilter, error) {
	var filter catalog.ProductFilter

	for _, raw := range r.URL.Query()["type"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			productType, err := enums.ParseProductType(part)
			if err != nil {
				return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product type").
					WithDetails(map[string]any{"type": part})
			}
			filter.Types = append(filter.Types, productType)
		}
	}

	var err error
	if filter.MinPrice, err = optionalDecimal(r, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = optionalDecimal(r, "max_price"); err != nil {
		return filter, err
	}
	if filter.Limit, err = validators.ParseQueryInt(r, "limit", catalog.DefaultPageSize, 1, catalog.MaxPageSize); err != nil {
		return filter, err
	}
	return filter, nil
}

func optionalDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	if strings.TrimSpace(r.URL.Query().Get(key)) == "" {
		return nil, nil
	}
	value, err := validators.ParseQueryDecimal(r, key, decimal.Zero)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
