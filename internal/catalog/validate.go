package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Validate reports every problem with the product record at once.
func (p Product) Validate() error {
	var err error
	if strings.TrimSpace(p.ID) == "" {
		err = multierr.Append(err, fmt.Errorf("id is required"))
	}
	if strings.TrimSpace(p.Title) == "" {
		err = multierr.Append(err, fmt.Errorf("title is required"))
	}
	if strings.TrimSpace(p.Slug) == "" {
		err = multierr.Append(err, fmt.Errorf("slug is required"))
	}
	if !p.ProductType.IsValid() {
		err = multierr.Append(err, fmt.Errorf("invalid product type %q", p.ProductType))
	}
	err = multierr.Append(err, nonNegative("price", p.Price))
	if p.AvailableQuantity < 0 {
		err = multierr.Append(err, fmt.Errorf("available quantity must be >= 0"))
	}
	return err
}

// Validate reports every problem with the base hat record at once.
func (h BaseHat) Validate() error {
	var err error
	if strings.TrimSpace(h.ID) == "" {
		err = multierr.Append(err, fmt.Errorf("id is required"))
	}
	if strings.TrimSpace(h.Title) == "" {
		err = multierr.Append(err, fmt.Errorf("title is required"))
	}
	if !h.HatType.IsValid() {
		err = multierr.Append(err, fmt.Errorf("invalid hat type %q", h.HatType))
	}
	err = multierr.Append(err, nonNegative("base price", h.BasePrice))
	if len(h.AvailableColors) == 0 {
		err = multierr.Append(err, fmt.Errorf("at least one color is required"))
	}
	for _, c := range h.AvailableColors {
		if strings.TrimSpace(c.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("color name is required"))
		}
	}
	for _, s := range h.SizeOptions {
		err = multierr.Append(err, nonNegative(fmt.Sprintf("size %q additional cost", s.Size), s.AdditionalCost))
	}
	return err
}

// Validate reports every problem with the customization category record at once.
func (c CustomizationCategory) Validate() error {
	var err error
	if strings.TrimSpace(c.ID) == "" {
		err = multierr.Append(err, fmt.Errorf("id is required"))
	}
	if strings.TrimSpace(c.Title) == "" {
		err = multierr.Append(err, fmt.Errorf("title is required"))
	}
	if !c.Mode.IsValid() {
		err = multierr.Append(err, fmt.Errorf("invalid customization mode %q", c.Mode))
	}
	err = multierr.Append(err, nonNegative("base price", c.BasePrice))
	if len(c.PlacementOptions) == 0 {
		err = multierr.Append(err, fmt.Errorf("at least one placement is required"))
	}
	for _, p := range c.PlacementOptions {
		if !p.IsValid() {
			err = multierr.Append(err, fmt.Errorf("invalid placement %q", p))
		}
	}
	if len(c.CompatibleHatTypes) == 0 {
		err = multierr.Append(err, fmt.Errorf("at least one compatible hat type is required"))
	}
	for _, t := range c.CompatibleHatTypes {
		if !t.IsValid() {
			err = multierr.Append(err, fmt.Errorf("invalid hat type %q", t))
		}
	}
	if c.AllowsMultiple && c.MaxQuantityPerHat < 1 {
		err = multierr.Append(err, fmt.Errorf("max quantity per hat must be >= 1"))
	}
	for _, o := range c.PredefinedOptions {
		if strings.TrimSpace(o.ID) == "" || strings.TrimSpace(o.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("predefined options need an id and a name"))
		}
		err = multierr.Append(err, nonNegative(fmt.Sprintf("option %q additional cost", o.Name), o.AdditionalCost))
	}
	if c.FreeformSettings != nil {
		err = multierr.Append(err, nonNegative("freeform additional cost", c.FreeformSettings.AdditionalCost))
		if c.FreeformSettings.MaxTextLength < 0 {
			err = multierr.Append(err, fmt.Errorf("max text length must be >= 0"))
		}
	}
	return err
}

func nonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%s must be >= 0", field)
	}
	return nil
}
