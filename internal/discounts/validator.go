package discounts

import (
	"context"

	"github.com/angelmondragon/capshop-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// LocalValidator answers cart promo validations in-process. Rejections
// become a PromoResult carrying the message; anything else is an error.
type LocalValidator struct {
	svc     Service
	metrics *metrics.Storefront
}

// NewLocalValidator adapts svc to cart.PromoValidator.
func NewLocalValidator(svc Service, m *metrics.Storefront) *LocalValidator {
	return &LocalValidator{svc: svc, metrics: m}
}

func (v *LocalValidator) ValidatePromo(ctx context.Context, code string, purchaseAmount decimal.Decimal) (cart.PromoResult, error) {
	result, err := v.svc.Validate(ctx, code, purchaseAmount)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			v.metrics.PromoValidation("rejected")
			return cart.PromoResult{Valid: false, DiscountAmount: decimal.Zero, Message: typed.Message()}, nil
		}
		v.metrics.PromoValidation("error")
		return cart.PromoResult{}, err
	}

	v.metrics.PromoValidation("valid")
	return cart.PromoResult{
		Valid:          true,
		DiscountType:   result.DiscountType,
		DiscountAmount: result.DiscountAmount,
	}, nil
}
