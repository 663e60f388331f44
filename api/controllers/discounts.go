package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/capshop-backend/api/responses"
	"github.com/angelmondragon/capshop-backend/api/validators"
	"github.com/angelmondragon/capshop-backend/internal/discounts"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

type discountValidator interface {
	Validate(ctx context.Context, code string, purchaseAmount decimal.Decimal) (discounts.Validation, error)
}

type discountAdmin interface {
	Create(ctx context.Context, input discounts.CreateInput) (*discounts.DiscountCode, error)
	List(ctx context.Context) ([]discounts.DiscountCode, error)
}

// DiscountValidate answers GET /discounts/validate?code=&purchaseAmount=.
// Rejected codes come back as 400 with the shopper-facing message.
func DiscountValidate(svc discountValidator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		purchaseAmount, err := validators.ParseQueryDecimal(r, "purchaseAmount", decimal.Zero)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code := validators.SanitizeString(r.URL.Query().Get("code"), maxPromoCodeLength)

		result, err := svc.Validate(r.Context(), code, purchaseAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discountValidationResponse{
			Valid:          result.Valid,
			DiscountType:   result.DiscountType,
			DiscountAmount: money(result.DiscountAmount),
		})
	}
}

type createDiscountRequest struct {
	Code            string           `json:"code" validate:"required,max=64"`
	DiscountType    string           `json:"discount_type" validate:"required"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	ValidFrom       time.Time        `json:"valid_from"`
	ValidTo         time.Time        `json:"valid_to"`
	MinimumPurchase *decimal.Decimal `json:"minimum_purchase"`
}

// AdminDiscountCreate creates a promo code.
func AdminDiscountCreate(svc discountAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload createDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		discountType, err := enums.ParseDiscountType(payload.DiscountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type").
				WithDetails(map[string]any{"discount_type": payload.DiscountType}))
			return
		}

		record, err := svc.Create(r.Context(), discounts.CreateInput{
			Code:            payload.Code,
			DiscountType:    discountType,
			DiscountAmount:  payload.DiscountAmount,
			ValidFrom:       payload.ValidFrom,
			ValidTo:         payload.ValidTo,
			MinimumPurchase: payload.MinimumPurchase,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newDiscountCodeResponse(*record))
	}
}

// AdminDiscountList lists every promo code.
func AdminDiscountList(svc discountAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		codes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]discountCodeResponse, 0, len(codes))
		for _, c := range codes {
			out = append(out, newDiscountCodeResponse(c))
		}
		responses.WriteSuccess(w, map[string]any{"discount_codes": out})
	}
}
