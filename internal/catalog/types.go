package catalog

import (
	"time"

	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a purchasable storefront item. AvailableQuantity is the stock
// ceiling; the quantity a shopper holds lives on the cart line.
type Product struct {
	ID                string               `gorm:"column:id;primaryKey" json:"id"`
	Title             string               `gorm:"column:title" json:"title"`
	Slug              string               `gorm:"column:slug" json:"slug"`
	ProductType       enums.ProductType    `gorm:"column:product_type" json:"product_type"`
	Price             decimal.Decimal      `gorm:"column:price;type:numeric(10,2)" json:"price"`
	AvailableQuantity int                  `gorm:"column:available_quantity" json:"available_quantity"`
	Images            []string             `gorm:"column:images;serializer:json" json:"images"`
	Description       string               `gorm:"column:description" json:"description,omitempty"`
	Custom            *CustomConfiguration `gorm:"-" json:"custom_product,omitempty"`
	CreatedAt         time.Time            `gorm:"column:created_at" json:"-"`
	UpdatedAt         time.Time            `gorm:"column:updated_at" json:"-"`
}

func (Product) TableName() string { return "products" }

// IsCustom reports whether the product was synthesized by the configurator.
func (p Product) IsCustom() bool {
	return p.Custom != nil
}

// HatColor is a colorway of a base hat.
type HatColor struct {
	Name    string `json:"color_name"`
	Value   string `json:"color_value,omitempty"`
	Image   string `json:"color_image,omitempty"`
	InStock bool   `json:"color_in_stock"`
}

// SizeOption is a selectable size with its surcharge.
type SizeOption struct {
	Size           string          `json:"size"`
	AdditionalCost decimal.Decimal `json:"additional_cost"`
}

// BaseHat is the blank hat a custom product starts from.
type BaseHat struct {
	ID              string          `gorm:"column:id;primaryKey" json:"id"`
	Title           string          `gorm:"column:title" json:"title"`
	Slug            string          `gorm:"column:slug" json:"slug"`
	HatType         enums.HatType   `gorm:"column:hat_type" json:"hat_type"`
	BasePrice       decimal.Decimal `gorm:"column:base_price;type:numeric(10,2)" json:"base_price"`
	Images          []string        `gorm:"column:images;serializer:json" json:"images"`
	Description     string          `gorm:"column:description" json:"description,omitempty"`
	AvailableColors []HatColor      `gorm:"column:available_colors;serializer:json" json:"available_colors"`
	SizeOptions     []SizeOption    `gorm:"column:size_options;serializer:json" json:"size_options"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"-"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"-"`
}

func (BaseHat) TableName() string { return "base_hats" }

// Color looks a colorway up by name.
func (h BaseHat) Color(name string) (HatColor, bool) {
	for _, c := range h.AvailableColors {
		if c.Name == name {
			return c, true
		}
	}
	return HatColor{}, false
}

// Size looks a size option up by label.
func (h BaseHat) Size(label string) (SizeOption, bool) {
	for _, s := range h.SizeOptions {
		if s.Size == label {
			return s, true
		}
	}
	return SizeOption{}, false
}

// DefaultColor is the first in-stock color, falling back to the first color.
func (h BaseHat) DefaultColor() (HatColor, bool) {
	for _, c := range h.AvailableColors {
		if c.InStock {
			return c, true
		}
	}
	if len(h.AvailableColors) > 0 {
		return h.AvailableColors[0], true
	}
	return HatColor{}, false
}

// OptionColor is a colorway of a predefined customization option.
type OptionColor struct {
	Name           string          `json:"color_name"`
	Value          string          `json:"color_value,omitempty"`
	Image          string          `json:"color_image,omitempty"`
	AdditionalCost decimal.Decimal `json:"additional_cost"`
}

// PredefinedOption is a ready-made design within a customization category.
type PredefinedOption struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Images         []string        `json:"images,omitempty"`
	AdditionalCost decimal.Decimal `json:"additional_cost"`
	ColorOptions   []OptionColor   `json:"color_options,omitempty"`
	SizeOptions    []SizeOption    `json:"size_options,omitempty"`
	IsActive       bool            `json:"is_active"`
}

func (o PredefinedOption) Color(name string) (OptionColor, bool) {
	for _, c := range o.ColorOptions {
		if c.Name == name {
			return c, true
		}
	}
	return OptionColor{}, false
}

func (o PredefinedOption) Size(label string) (SizeOption, bool) {
	for _, s := range o.SizeOptions {
		if s.Size == label {
			return s, true
		}
	}
	return SizeOption{}, false
}

// FreeformSettings configures shopper-supplied text and artwork.
type FreeformSettings struct {
	AllowText        bool            `json:"allow_text"`
	AllowImageUpload bool            `json:"allow_image_upload"`
	AdditionalCost   decimal.Decimal `json:"additional_cost"`
	MaxTextLength    int             `json:"max_text_length"`
}

// DefaultMaxTextLength applies when a category does not set a limit.
const DefaultMaxTextLength = 100

// TextLimit returns the effective maximum freeform text length.
func (f *FreeformSettings) TextLimit() int {
	if f == nil || f.MaxTextLength <= 0 {
		return DefaultMaxTextLength
	}
	return f.MaxTextLength
}

// CustomizationCategory is a family of customizations (embroidery, patches, ...).
type CustomizationCategory struct {
	ID                 string                  `gorm:"column:id;primaryKey" json:"id"`
	Title              string                  `gorm:"column:title" json:"title"`
	Slug               string                  `gorm:"column:slug" json:"slug"`
	Description        string                  `gorm:"column:description" json:"description"`
	Mode               enums.CustomizationMode `gorm:"column:customization_mode" json:"customization_mode"`
	BasePrice          decimal.Decimal         `gorm:"column:base_price;type:numeric(10,2)" json:"base_price"`
	CategoryImage      string                  `gorm:"column:category_image" json:"category_image,omitempty"`
	PlacementOptions   []enums.Placement       `gorm:"column:placement_options;serializer:json" json:"placement_options"`
	CompatibleHatTypes []enums.HatType         `gorm:"column:compatible_hat_types;serializer:json" json:"compatible_hat_types"`
	IsActive           bool                    `gorm:"column:is_active" json:"is_active"`
	AllowsMultiple     bool                    `gorm:"column:allows_multiple" json:"allows_multiple"`
	MaxQuantityPerHat  int                     `gorm:"column:max_quantity_per_hat" json:"max_quantity_per_hat"`
	PredefinedOptions  []PredefinedOption      `gorm:"column:predefined_options;serializer:json" json:"predefined_options"`
	FreeformSettings   *FreeformSettings       `gorm:"column:freeform_settings;serializer:json" json:"freeform_settings,omitempty"`
	CreatedAt          time.Time               `gorm:"column:created_at" json:"-"`
	UpdatedAt          time.Time               `gorm:"column:updated_at" json:"-"`
}

func (CustomizationCategory) TableName() string { return "customization_categories" }

// CompatibleWith reports whether the category can be applied to the hat type.
func (c CustomizationCategory) CompatibleWith(hatType enums.HatType) bool {
	for _, t := range c.CompatibleHatTypes {
		if t == hatType {
			return true
		}
	}
	return false
}

// HasPlacement reports whether p is one of the category's placements.
func (c CustomizationCategory) HasPlacement(p enums.Placement) bool {
	for _, candidate := range c.PlacementOptions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ActiveOptions returns the predefined options that are switched on.
func (c CustomizationCategory) ActiveOptions() []PredefinedOption {
	out := make([]PredefinedOption, 0, len(c.PredefinedOptions))
	for _, o := range c.PredefinedOptions {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out
}

// Option looks up an active predefined option by id.
func (c CustomizationCategory) Option(id string) (PredefinedOption, bool) {
	for _, o := range c.PredefinedOptions {
		if o.ID == id && o.IsActive {
			return o, true
		}
	}
	return PredefinedOption{}, false
}

// QuantityLimit is the number of times this category may be applied to one hat.
func (c CustomizationCategory) QuantityLimit() int {
	if !c.AllowsMultiple {
		return 1
	}
	if c.MaxQuantityPerHat <= 0 {
		return 5
	}
	return c.MaxQuantityPerHat
}

// CustomConfiguration is the payload attached to a configurator-built product.
// It carries everything needed to produce the hat, uploaded artwork included.
type CustomConfiguration struct {
	BaseHat        BaseHatRef             `json:"base_hat"`
	SelectedColor  string                 `json:"selected_color"`
	SelectedSize   string                 `json:"selected_size,omitempty"`
	Customizations []CustomizationSummary `json:"customizations"`
	TotalPrice     decimal.Decimal        `json:"total_price"`
}

// WithoutArtwork returns a copy with the uploaded image data dropped; HasImage
// is kept so storefront responses stay small.
func (c CustomConfiguration) WithoutArtwork() CustomConfiguration {
	out := c
	out.Customizations = make([]CustomizationSummary, len(c.Customizations))
	for i, s := range c.Customizations {
		s.CustomImage = ""
		out.Customizations[i] = s
	}
	return out
}

// BaseHatRef identifies the base hat of a custom product.
type BaseHatRef struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	HatType enums.HatType `json:"hat_type"`
}

// CategoryRef identifies a customization category.
type CategoryRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CustomizationSummary describes one committed customization on a custom product.
type CustomizationSummary struct {
	Category    CategoryRef             `json:"category"`
	Type        enums.CustomizationMode `json:"type"`
	Placement   enums.Placement         `json:"placement,omitempty"`
	OptionName  string                  `json:"option_name,omitempty"`
	OptionColor string                  `json:"option_color,omitempty"`
	OptionSize  string                  `json:"option_size,omitempty"`
	CustomText  string                  `json:"custom_text,omitempty"`
	HasImage    bool                    `json:"has_image,omitempty"`
	CustomImage string                  `json:"custom_image,omitempty"`
	Notes       string                  `json:"notes,omitempty"`
	Price       decimal.Decimal         `json:"price"`
}
