package catalog

import (
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

var (
	DefaultMinPrice = decimal.Zero
	DefaultMaxPrice = decimal.NewFromInt(1000)
)

// ProductFilter narrows the shop listing by product type and price range.
// Unset bounds fall back to the shop's default 0 to 1000 range.
type ProductFilter struct {
	Types    []enums.ProductType
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
}

func (f ProductFilter) normalize() (ProductFilter, error) {
	out := ProductFilter{Types: f.Types, Limit: f.Limit}
	for _, t := range f.Types {
		if !t.IsValid() {
			return out, pkgerrors.New(pkgerrors.CodeValidation, "invalid product type").WithDetails(map[string]any{"type": t})
		}
	}

	minPrice, maxPrice := DefaultMinPrice, DefaultMaxPrice
	if f.MinPrice != nil {
		minPrice = *f.MinPrice
	}
	if f.MaxPrice != nil {
		maxPrice = *f.MaxPrice
	}
	if minPrice.IsNegative() {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "min price must be >= 0")
	}
	if minPrice.GreaterThan(maxPrice) {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "min price must not exceed max price")
	}
	out.MinPrice, out.MaxPrice = &minPrice, &maxPrice

	switch {
	case out.Limit <= 0:
		out.Limit = DefaultPageSize
	case out.Limit > MaxPageSize:
		out.Limit = MaxPageSize
	}
	return out, nil
}
