package customize

import (
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Selection is the in-progress configuration of one customization.
type Selection struct {
	Mode        enums.CustomizationMode
	Option      *catalog.PredefinedOption
	OptionColor string
	OptionSize  string
}

// CustomizationPrice prices one customization: the category base price plus
// the option, option color and option size surcharges in predefined mode, or
// the freeform surcharge in freeform mode. Lookups are by name, first match wins.
func CustomizationPrice(category catalog.CustomizationCategory, sel Selection) decimal.Decimal {
	price := category.BasePrice

	switch {
	case sel.Mode == enums.CustomizationModePredefined && sel.Option != nil:
		price = price.Add(sel.Option.AdditionalCost)
		if sel.OptionColor != "" {
			if color, ok := sel.Option.Color(sel.OptionColor); ok {
				price = price.Add(color.AdditionalCost)
			}
		}
		if sel.OptionSize != "" {
			if size, ok := sel.Option.Size(sel.OptionSize); ok {
				price = price.Add(size.AdditionalCost)
			}
		}
	case sel.Mode == enums.CustomizationModeFreeform && category.FreeformSettings != nil:
		price = price.Add(category.FreeformSettings.AdditionalCost)
	}

	return price
}

// AggregateTotal is the base hat price, plus the selected size surcharge,
// plus every committed customization.
func AggregateTotal(hat catalog.BaseHat, size string, committed []SelectedCustomization) decimal.Decimal {
	total := hat.BasePrice
	if size != "" {
		if option, ok := hat.Size(size); ok {
			total = total.Add(option.AdditionalCost)
		}
	}
	for _, c := range committed {
		total = total.Add(c.Price)
	}
	return total
}
