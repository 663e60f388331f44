package customize

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func pngBytes(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(onePixelPNG)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return data
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func bucketHat() catalog.BaseHat {
	return catalog.BaseHat{
		ID:        "hat-bucket",
		Title:     "Classic Bucket",
		Slug:      "classic-bucket",
		HatType:   enums.HatTypeBucketHat,
		BasePrice: dec("20"),
		Images:    []string{"/media/bucket.jpg"},
		AvailableColors: []catalog.HatColor{
			{Name: "Sand", InStock: false},
			{Name: "Olive", InStock: true},
		},
		SizeOptions: []catalog.SizeOption{
			{Size: "S/M", AdditionalCost: decimal.Zero},
			{Size: "L/XL", AdditionalCost: dec("3")},
		},
	}
}

func beanie() catalog.BaseHat {
	return catalog.BaseHat{
		ID:              "hat-beanie",
		Title:           "Rib Beanie",
		HatType:         enums.HatTypeBeanie,
		BasePrice:       dec("25"),
		Images:          []string{"/media/beanie.jpg"},
		AvailableColors: []catalog.HatColor{{Name: "Black", InStock: true}},
		SizeOptions:     []catalog.SizeOption{{Size: "One Size", AdditionalCost: dec("3")}},
	}
}

func embroidery() catalog.CustomizationCategory {
	return catalog.CustomizationCategory{
		ID:                 "cat-embroidery",
		Title:              "Embroidery",
		Mode:               enums.CustomizationModeBoth,
		BasePrice:          dec("10"),
		PlacementOptions:   []enums.Placement{enums.PlacementFront, enums.PlacementBack},
		CompatibleHatTypes: []enums.HatType{enums.HatTypeBucketHat, enums.HatTypeBeanie},
		IsActive:           true,
		AllowsMultiple:     true,
		MaxQuantityPerHat:  2,
		PredefinedOptions: []catalog.PredefinedOption{
			{ID: "opt-retired", Name: "Retired", AdditionalCost: dec("99"), IsActive: false},
			{
				ID:             "opt-star",
				Name:           "Star",
				AdditionalCost: dec("5"),
				ColorOptions: []catalog.OptionColor{
					{Name: "White", AdditionalCost: decimal.Zero},
					{Name: "Gold", AdditionalCost: dec("1.50")},
				},
				SizeOptions: []catalog.SizeOption{
					{Size: "Small", AdditionalCost: decimal.Zero},
					{Size: "Large", AdditionalCost: dec("2")},
				},
				IsActive: true,
			},
		},
		FreeformSettings: &catalog.FreeformSettings{
			AllowText:        true,
			AllowImageUpload: true,
			AdditionalCost:   dec("2"),
			MaxTextLength:    10,
		},
	}
}

func patch() catalog.CustomizationCategory {
	return catalog.CustomizationCategory{
		ID:                 "cat-patch",
		Title:              "Patch",
		Mode:               enums.CustomizationModeFreeform,
		BasePrice:          dec("9"),
		PlacementOptions:   []enums.Placement{enums.PlacementFront},
		CompatibleHatTypes: []enums.HatType{enums.HatTypeBeanie},
		IsActive:           true,
		FreeformSettings: &catalog.FreeformSettings{
			AllowText:        false,
			AllowImageUpload: true,
			AdditionalCost:   dec("3"),
		},
	}
}

func newTestConfigurator(t *testing.T) *Configurator {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewConfigurator(
		[]catalog.BaseHat{bucketHat(), beanie()},
		[]catalog.CustomizationCategory{embroidery(), patch()},
		Options{Now: func() time.Time { return now }},
	)
	if err != nil {
		t.Fatalf("new configurator: %v", err)
	}
	return c
}
