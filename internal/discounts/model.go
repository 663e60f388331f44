package discounts

import (
	"strings"
	"time"

	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCode is a promo code shoppers can apply at checkout.
type DiscountCode struct {
	ID              uuid.UUID           `gorm:"column:id;primaryKey" json:"id"`
	Code            string              `gorm:"column:code" json:"code"`
	DiscountType    enums.DiscountType  `gorm:"column:discount_type" json:"discount_type"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2)" json:"discount_amount"`
	ValidFrom       time.Time           `gorm:"column:valid_from" json:"valid_from"`
	ValidTo         time.Time           `gorm:"column:valid_to" json:"valid_to"`
	MinimumPurchase decimal.NullDecimal `gorm:"column:minimum_purchase;type:numeric(10,2)" json:"minimum_purchase"`
	CreatedAt       time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

func (DiscountCode) TableName() string { return "discount_codes" }

// Amount is the discount this code grants on purchaseAmount, rounded to
// cents and never more than the purchase itself.
func (d DiscountCode) Amount(purchaseAmount decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.DiscountType {
	case enums.DiscountTypePercentage:
		amount = purchaseAmount.Mul(d.DiscountAmount).Div(decimal.NewFromInt(100)).Round(2)
	default:
		amount = d.DiscountAmount
	}
	if amount.GreaterThan(purchaseAmount) {
		amount = purchaseAmount
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// NormalizeCode canonicalizes a shopper-entered code for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
