package catalog

import (
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func testProduct(id string, productType enums.ProductType, price string, available int) Product {
	return Product{
		ID:                id,
		Title:             "Hat " + id,
		Slug:              "hat-" + id,
		ProductType:       productType,
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: available,
		Images:            []string{"/media/" + id + ".jpg"},
	}
}

func testBaseHat() BaseHat {
	return BaseHat{
		ID:        "hat-bucket",
		Title:     "Classic Bucket",
		Slug:      "classic-bucket",
		HatType:   enums.HatTypeBucketHat,
		BasePrice: decimal.NewFromInt(20),
		Images:    []string{"/media/bucket.jpg"},
		AvailableColors: []HatColor{
			{Name: "Sand", Value: "#d8c7a0", InStock: false},
			{Name: "Olive", Value: "#556b2f", InStock: true},
		},
		SizeOptions: []SizeOption{
			{Size: "S/M", AdditionalCost: decimal.Zero},
			{Size: "L/XL", AdditionalCost: decimal.RequireFromString("2.50")},
		},
	}
}

func testCategory(id string, active bool, hatTypes ...enums.HatType) CustomizationCategory {
	return CustomizationCategory{
		ID:                 id,
		Title:              "Category " + id,
		Slug:               "category-" + id,
		Description:        "stitched",
		Mode:               enums.CustomizationModeBoth,
		BasePrice:          decimal.NewFromInt(10),
		PlacementOptions:   []enums.Placement{enums.PlacementFront, enums.PlacementBack},
		CompatibleHatTypes: hatTypes,
		IsActive:           active,
		AllowsMultiple:     true,
		MaxQuantityPerHat:  5,
		PredefinedOptions: []PredefinedOption{
			{
				ID:             "opt-star",
				Name:           "Star",
				AdditionalCost: decimal.NewFromInt(5),
				ColorOptions:   []OptionColor{{Name: "Gold", AdditionalCost: decimal.NewFromInt(1)}},
				IsActive:       true,
			},
		},
		FreeformSettings: &FreeformSettings{
			AllowText:        true,
			AllowImageUpload: true,
			AdditionalCost:   decimal.NewFromInt(3),
			MaxTextLength:    20,
		},
	}
}
