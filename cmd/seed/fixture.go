package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/discounts"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
)

//go:embed catalog.json
var defaultFixture []byte

type discountSeed struct {
	Code            string              `json:"code"`
	DiscountType    enums.DiscountType  `json:"discount_type"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	ValidFrom       time.Time           `json:"valid_from"`
	ValidTo         time.Time           `json:"valid_to"`
	MinimumPurchase decimal.NullDecimal `json:"minimum_purchase"`
}

type fixture struct {
	catalog.Seed
	DiscountCodes []discountSeed `json:"discount_codes"`
}

func parseFixture(raw []byte) (*fixture, error) {
	var f fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

func (d discountSeed) input() discounts.CreateInput {
	in := discounts.CreateInput{
		Code:           d.Code,
		DiscountType:   d.DiscountType,
		DiscountAmount: d.DiscountAmount,
		ValidFrom:      d.ValidFrom,
		ValidTo:        d.ValidTo,
	}
	if d.MinimumPurchase.Valid {
		minimum := d.MinimumPurchase.Decimal
		in.MinimumPurchase = &minimum
	}
	return in
}
