package cart

import (
	"context"

	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PromoResult is the answer of a promo validation round trip. A rejected code
// is a normal result (Valid false plus Message), not an error.
type PromoResult struct {
	Valid          bool               `json:"valid"`
	DiscountType   enums.DiscountType `json:"discount_type,omitempty"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Message        string             `json:"message,omitempty"`
}

// PromoValidator resolves a promo code against a purchase amount. Returned
// errors mean the validation could not be performed at all.
type PromoValidator interface {
	ValidatePromo(ctx context.Context, code string, purchaseAmount decimal.Decimal) (PromoResult, error)
}

// PromoValidatorFunc adapts a function to PromoValidator.
type PromoValidatorFunc func(ctx context.Context, code string, purchaseAmount decimal.Decimal) (PromoResult, error)

func (fn PromoValidatorFunc) ValidatePromo(ctx context.Context, code string, purchaseAmount decimal.Decimal) (PromoResult, error) {
	return fn(ctx, code, purchaseAmount)
}
