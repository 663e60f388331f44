package customize

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Stage is where a configuration session currently rests.
type Stage string

const (
	StageSelectingBaseHat     Stage = "selecting_base_hat"
	StageSelectingCategory    Stage = "selecting_category"
	StageConfiguringSelection Stage = "configuring_selection"
)

const maxNotesLength = 500

// Options tunes a Configurator.
type Options struct {
	MaxImageBytes int64
	Now           func() time.Time
}

// SelectedCustomization is one committed customization with its computed price.
type SelectedCustomization struct {
	CategoryID    string                  `json:"category_id"`
	CategoryTitle string                  `json:"category_title"`
	Mode          enums.CustomizationMode `json:"mode"`
	OptionID      string                  `json:"option_id,omitempty"`
	OptionName    string                  `json:"option_name,omitempty"`
	OptionColor   string                  `json:"option_color,omitempty"`
	OptionSize    string                  `json:"option_size,omitempty"`
	Placement     enums.Placement         `json:"placement,omitempty"`
	Text          string                  `json:"text,omitempty"`
	Image         string                  `json:"image,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
	Price         decimal.Decimal         `json:"price"`
}

// Configurator is the per-session custom hat builder. It is safe for concurrent use.
type Configurator struct {
	mu sync.Mutex

	hats       []catalog.BaseHat
	categories []catalog.CustomizationCategory
	opts       Options

	hat   *catalog.BaseHat
	color string
	size  string

	compatible []catalog.CustomizationCategory
	category   *catalog.CustomizationCategory

	mode        enums.CustomizationMode
	option      *catalog.PredefinedOption
	optionColor string
	optionSize  string
	placement   enums.Placement
	text        string
	image       string
	notes       string

	committed []SelectedCustomization
}

// NewConfigurator starts a session on the first base hat.
func NewConfigurator(hats []catalog.BaseHat, categories []catalog.CustomizationCategory, opts Options) (*Configurator, error) {
	if len(hats) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no base hats available for customization")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}

	c := &Configurator{
		hats:       append([]catalog.BaseHat(nil), hats...),
		categories: append([]catalog.CustomizationCategory(nil), categories...),
		opts:       opts,
	}
	c.selectHatLocked(&c.hats[0])
	return c, nil
}

// SelectBaseHat switches the base hat, resetting color, size and the category
// selection. Committed customizations that do not fit the new hat are dropped.
func (c *Configurator) SelectBaseHat(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.hats {
		if c.hats[i].ID == id {
			c.selectHatLocked(&c.hats[i])
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown base hat").WithDetails(map[string]any{"base_hat_id": id})
}

func (c *Configurator) SelectColor(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.hat.Color(name); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "color not offered for this hat").WithDetails(map[string]any{"color": name})
	}
	c.color = name
	return nil
}

func (c *Configurator) SelectSize(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.hat.Size(label); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "size not offered for this hat").WithDetails(map[string]any{"size": label})
	}
	c.size = label
	return nil
}

// SelectCategory picks a compatible category and resets mode, option,
// placement and the freeform inputs. Committed customizations are kept.
func (c *Configurator) SelectCategory(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.compatible {
		if c.compatible[i].ID == id {
			c.selectCategoryLocked(&c.compatible[i])
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "customization not available for this hat").WithDetails(map[string]any{"category_id": id})
}

// SetMode switches between predefined and freeform when the category allows it.
func (c *Configurator) SetMode(mode enums.CustomizationMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	category, err := c.requireCategoryLocked()
	if err != nil {
		return err
	}
	if !category.Mode.Allows(mode) {
		return pkgerrors.New(pkgerrors.CodeValidation, "mode not supported by this customization").WithDetails(map[string]any{"mode": mode})
	}
	c.mode = mode
	c.clearInputsLocked()
	return nil
}

// SelectOption picks a predefined option and defaults its color and size.
func (c *Configurator) SelectOption(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	category, err := c.requireCategoryLocked()
	if err != nil {
		return err
	}
	option, ok := category.Option(id)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown customization option").WithDetails(map[string]any{"option_id": id})
	}
	c.selectOptionLocked(&option)
	return nil
}

func (c *Configurator) SelectOptionColor(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.option == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "select an option first")
	}
	if _, ok := c.option.Color(name); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "color not offered for this option").WithDetails(map[string]any{"color": name})
	}
	c.optionColor = name
	return nil
}

func (c *Configurator) SelectOptionSize(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.option == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "select an option first")
	}
	if _, ok := c.option.Size(label); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "size not offered for this option").WithDetails(map[string]any{"size": label})
	}
	c.optionSize = label
	return nil
}

func (c *Configurator) SelectPlacement(p enums.Placement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	category, err := c.requireCategoryLocked()
	if err != nil {
		return err
	}
	if !category.HasPlacement(p) {
		return pkgerrors.New(pkgerrors.CodeValidation, "placement not offered for this customization").WithDetails(map[string]any{"placement": p})
	}
	c.placement = p
	return nil
}

// SetText stores freeform text, enforcing the category's allow flag and length limit.
func (c *Configurator) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings, err := c.requireFreeformLocked()
	if err != nil {
		return err
	}
	if !settings.AllowText {
		return pkgerrors.New(pkgerrors.CodeValidation, "custom text is not allowed for this customization")
	}
	if limit := settings.TextLimit(); utf8.RuneCountInString(text) > limit {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("custom text must be at most %d characters", limit))
	}
	c.text = text
	return nil
}

func (c *Configurator) SetNotes(notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if utf8.RuneCountInString(notes) > maxNotesLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("notes must be at most %d characters", maxNotesLength))
	}
	c.notes = notes
	return nil
}

// UploadImage stores artwork for a freeform customization. Unreadable or
// unsupported uploads return a validation error and keep the previous image.
func (c *Configurator) UploadImage(r io.Reader) error {
	c.mu.Lock()
	settings, err := c.requireFreeformLocked()
	if err == nil && !settings.AllowImageUpload {
		err = pkgerrors.New(pkgerrors.CodeValidation, "image upload is not allowed for this customization")
	}
	limit := c.opts.MaxImageBytes
	c.mu.Unlock()
	if err != nil {
		return err
	}

	encoded, err := encodeImage(r, limit)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.image = encoded
	return nil
}

// Commit prices the current selection and appends it to the working list.
func (c *Configurator) Commit() (SelectedCustomization, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	category, err := c.requireCategoryLocked()
	if err != nil {
		return SelectedCustomization{}, err
	}

	used := 0
	for _, sc := range c.committed {
		if sc.CategoryID == category.ID {
			used++
		}
	}
	if limit := category.QuantityLimit(); used >= limit {
		return SelectedCustomization{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s can be added at most %d time(s) per hat", category.Title, limit))
	}

	sel := Selection{Mode: c.mode}
	sc := SelectedCustomization{
		CategoryID:    category.ID,
		CategoryTitle: category.Title,
		Mode:          c.mode,
		Placement:     c.placement,
		Notes:         c.notes,
	}
	if c.mode == enums.CustomizationModePredefined && c.option != nil {
		sel.Option = c.option
		sel.OptionColor = c.optionColor
		sel.OptionSize = c.optionSize
		sc.OptionID = c.option.ID
		sc.OptionName = c.option.Name
		sc.OptionColor = c.optionColor
		sc.OptionSize = c.optionSize
	}
	if c.mode == enums.CustomizationModeFreeform {
		sc.Text = c.text
		sc.Image = c.image
	}
	sc.Price = CustomizationPrice(*category, sel)

	c.committed = append(c.committed, sc)
	c.clearInputsLocked()
	return sc, nil
}

// RemoveCustomization drops the committed customization at index.
func (c *Configurator) RemoveCustomization(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.committed) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customization not found").WithDetails(map[string]any{"index": index})
	}
	c.committed = append(c.committed[:index], c.committed[index+1:]...)
	return nil
}

// Total is the running price of the whole configuration.
func (c *Configurator) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return AggregateTotal(*c.hat, c.size, c.committed)
}

// Committed returns a copy of the committed customizations.
func (c *Configurator) Committed() []SelectedCustomization {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SelectedCustomization(nil), c.committed...)
}

// Stage reports where the session rests.
func (c *Configurator) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stageLocked()
}

func (c *Configurator) stageLocked() Stage {
	switch {
	case c.hat == nil:
		return StageSelectingBaseHat
	case c.category == nil:
		return StageSelectingCategory
	default:
		return StageConfiguringSelection
	}
}

func (c *Configurator) selectHatLocked(hat *catalog.BaseHat) {
	c.hat = hat
	c.color = ""
	if color, ok := hat.DefaultColor(); ok {
		c.color = color.Name
	}
	c.size = ""
	if len(hat.SizeOptions) > 0 {
		c.size = hat.SizeOptions[0].Size
	}

	c.compatible = catalog.FilterCompatible(c.categories, hat.HatType)

	kept := c.committed[:0]
	for _, sc := range c.committed {
		if c.isCompatibleLocked(sc.CategoryID) {
			kept = append(kept, sc)
		}
	}
	c.committed = kept

	c.category = nil
	c.mode = ""
	c.selectOptionLocked(nil)
	c.placement = ""
	c.clearInputsLocked()
	if len(c.compatible) > 0 {
		c.selectCategoryLocked(&c.compatible[0])
	}
}

func (c *Configurator) selectCategoryLocked(category *catalog.CustomizationCategory) {
	c.category = category
	switch category.Mode {
	case enums.CustomizationModeFreeform:
		c.mode = enums.CustomizationModeFreeform
	default:
		c.mode = enums.CustomizationModePredefined
	}

	c.selectOptionLocked(nil)
	if options := category.ActiveOptions(); len(options) > 0 {
		c.selectOptionLocked(&options[0])
	}

	c.placement = ""
	if len(category.PlacementOptions) > 0 {
		c.placement = category.PlacementOptions[0]
	}
	c.clearInputsLocked()
}

func (c *Configurator) selectOptionLocked(option *catalog.PredefinedOption) {
	c.option = option
	c.optionColor = ""
	c.optionSize = ""
	if option == nil {
		return
	}
	if len(option.ColorOptions) > 0 {
		c.optionColor = option.ColorOptions[0].Name
	}
	if len(option.SizeOptions) > 0 {
		c.optionSize = option.SizeOptions[0].Size
	}
}

func (c *Configurator) clearInputsLocked() {
	c.text = ""
	c.image = ""
	c.notes = ""
}

func (c *Configurator) isCompatibleLocked(categoryID string) bool {
	for _, cat := range c.compatible {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

func (c *Configurator) requireCategoryLocked() (*catalog.CustomizationCategory, error) {
	if c.category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select a customization first")
	}
	return c.category, nil
}

func (c *Configurator) requireFreeformLocked() (*catalog.FreeformSettings, error) {
	category, err := c.requireCategoryLocked()
	if err != nil {
		return nil, err
	}
	if c.mode != enums.CustomizationModeFreeform {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "switch to freeform mode first")
	}
	if category.FreeformSettings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this customization has no freeform settings")
	}
	return category.FreeformSettings, nil
}

// Finalize turns the configuration into a one-off product priced at the
// running total and discards the committed list. The hat, color, size and
// category selection are kept so the shopper can build another.
func (c *Configurator) Finalize() (catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.committed) == 0 {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "Please add at least one customization before adding to cart")
	}

	now := c.opts.Now()
	total := AggregateTotal(*c.hat, c.size, c.committed).Round(2)

	summaries := make([]catalog.CustomizationSummary, 0, len(c.committed))
	for _, sc := range c.committed {
		summaries = append(summaries, catalog.CustomizationSummary{
			Category:    catalog.CategoryRef{ID: sc.CategoryID, Title: sc.CategoryTitle},
			Type:        sc.Mode,
			Placement:   sc.Placement,
			OptionName:  sc.OptionName,
			OptionColor: sc.OptionColor,
			OptionSize:  sc.OptionSize,
			CustomText:  sc.Text,
			HasImage:    sc.Image != "",
			CustomImage: sc.Image,
			Notes:       sc.Notes,
			Price:       sc.Price,
		})
	}

	product := catalog.Product{
		ID:                fmt.Sprintf("custom-%d", now.UnixNano()),
		Title:             "Custom " + c.hat.Title,
		Slug:              fmt.Sprintf("custom-%s-%d", slugOrDefault(c.hat.Slug), now.UnixMilli()),
		ProductType:       enums.ProductTypeCustom,
		Price:             total,
		AvailableQuantity: 1,
		Images:            append([]string(nil), c.hat.Images...),
		Description:       c.hat.Description,
		Custom: &catalog.CustomConfiguration{
			BaseHat: catalog.BaseHatRef{
				ID:      c.hat.ID,
				Title:   c.hat.Title,
				HatType: c.hat.HatType,
			},
			SelectedColor:  c.color,
			SelectedSize:   c.size,
			Customizations: summaries,
			TotalPrice:     total,
		},
	}

	c.committed = nil
	c.clearInputsLocked()
	return product, nil
}

// State is a point-in-time view of the configurator.
type State struct {
	Stage                Stage                           `json:"stage"`
	BaseHat              catalog.BaseHat                 `json:"base_hat"`
	SelectedColor        string                          `json:"selected_color"`
	SelectedSize         string                          `json:"selected_size"`
	CompatibleCategories []catalog.CustomizationCategory `json:"compatible_categories"`
	Category             *catalog.CustomizationCategory  `json:"category,omitempty"`
	Mode                 enums.CustomizationMode         `json:"mode,omitempty"`
	Option               *catalog.PredefinedOption       `json:"option,omitempty"`
	OptionColor          string                          `json:"option_color,omitempty"`
	OptionSize           string                          `json:"option_size,omitempty"`
	Placement            enums.Placement                 `json:"placement,omitempty"`
	Text                 string                          `json:"text,omitempty"`
	HasImage             bool                            `json:"has_image"`
	Notes                string                          `json:"notes,omitempty"`
	PendingPrice         decimal.Decimal                 `json:"pending_price"`
	Customizations       []SelectedCustomization         `json:"customizations"`
	Total                decimal.Decimal                 `json:"total"`
}

// State captures the whole configurator under one lock.
func (c *Configurator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Stage:                c.stageLocked(),
		BaseHat:              *c.hat,
		SelectedColor:        c.color,
		SelectedSize:         c.size,
		CompatibleCategories: append([]catalog.CustomizationCategory(nil), c.compatible...),
		Mode:                 c.mode,
		OptionColor:          c.optionColor,
		OptionSize:           c.optionSize,
		Placement:            c.placement,
		Text:                 c.text,
		HasImage:             c.image != "",
		Notes:                c.notes,
		Customizations:       append([]SelectedCustomization(nil), c.committed...),
		Total:                AggregateTotal(*c.hat, c.size, c.committed),
	}
	if c.category != nil {
		category := *c.category
		st.Category = &category
		st.PendingPrice = CustomizationPrice(category, Selection{
			Mode:        c.mode,
			Option:      c.option,
			OptionColor: c.optionColor,
			OptionSize:  c.optionSize,
		})
	}
	if c.option != nil {
		option := *c.option
		st.Option = &option
	}
	return st
}

func slugOrDefault(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "cap"
	}
	return slug
}
