package cart

import (
	"context"
	"sync"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Line is one product held in the cart.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Total is price × quantity for the line.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the in-memory cart of one shopper session. It is safe for
// concurrent use; subtotal and total are derived on every read.
type Cart struct {
	mu         sync.Mutex
	lines      []Line
	promoCode  string
	discount   decimal.Decimal
	promoError string
	validator  PromoValidator
}

// New returns an empty cart that validates promo codes with validator.
func New(validator PromoValidator) *Cart {
	return &Cart{validator: validator}
}

// IsInStock reports whether the product has any stock at all.
func (c *Cart) IsInStock(p catalog.Product) bool {
	return p.AvailableQuantity > 0
}

// CartQuantity returns the quantity held for productID, 0 when absent.
func (c *Cart) CartQuantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantityLocked(productID)
}

// CanAddMore reports whether another unit of p fits under its stock ceiling.
func (c *Cart) CanAddMore(p catalog.Product) bool {
	return c.CartQuantity(p.ID) < p.AvailableQuantity
}

// AvailableQuantity is the stock of p not yet held in the cart.
func (c *Cart) AvailableQuantity(p catalog.Product) int {
	remaining := p.AvailableQuantity - c.CartQuantity(p.ID)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Add puts one unit of p in the cart. Out-of-stock products and lines already
// at their stock ceiling are left alone. An existing line takes p as its
// current product, so the ceiling is the one CanAddMore reports.
// The result reports whether the cart changed.
func (c *Cart) Add(p catalog.Product) bool {
	if !c.IsInStock(p) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(p.ID); i >= 0 {
		line := &c.lines[i]
		line.Product = p
		if line.Quantity >= p.AvailableQuantity {
			return false
		}
		line.Quantity++
		return true
	}

	c.lines = append(c.lines, Line{Product: p, Quantity: 1})
	return true
}

// Remove deletes the line for productID; missing ids are ignored.
func (c *Cart) Remove(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// UpdateQuantity sets the line quantity, clamped to the product's stock.
// The line is kept even when the quantity drops to zero or below; callers
// remove it explicitly and CheckoutLines skips it meanwhile.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(productID)
	if i < 0 {
		return false
	}
	line := &c.lines[i]
	if quantity > line.Product.AvailableQuantity {
		quantity = line.Product.AvailableQuantity
	}
	line.Quantity = quantity
	return true
}

// Clear empties the cart and resets the promo state.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.promoCode = ""
	c.discount = decimal.Zero
	c.promoError = ""
}

func (c *Cart) SetPromoCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promoCode = code
}

func (c *Cart) SetPromoError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promoError = message
}

func (c *Cart) SetDiscount(amount decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discount = amount
}

func (c *Cart) PromoCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promoCode
}

func (c *Cart) PromoError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promoError
}

func (c *Cart) Discount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount
}

// ValidatePromoCode checks the current code against the subtotal of the
// payable lines.
// The lock is released during the round trip, so cart mutations made
// meanwhile are not re-validated and the last response to land wins.
// A valid code sets the discount and clears the error; a rejected code zeroes
// the discount and records the message. Transport failures return an error
// and leave the promo state untouched.
func (c *Cart) ValidatePromoCode(ctx context.Context) (PromoResult, error) {
	c.mu.Lock()
	code := c.promoCode
	subtotal := c.checkoutSubtotalLocked()
	validator := c.validator
	c.mu.Unlock()

	if validator == nil {
		return PromoResult{}, pkgerrors.New(pkgerrors.CodeDependency, "promo validation unavailable")
	}

	result, err := validator.ValidatePromo(ctx, code, subtotal)
	if err != nil {
		return PromoResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to validate promo code, please try again")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if result.Valid {
		c.discount = result.DiscountAmount
		c.promoError = ""
	} else {
		c.discount = decimal.Zero
		c.promoError = result.Message
	}
	return result, nil
}

// Subtotal is Σ price × quantity over the current lines.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

// Total is subtotal minus discount, floored at zero.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.subtotalLocked(), c.discount)
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// CheckoutLines returns the lines that can be paid for (quantity > 0).
func (c *Cart) CheckoutLines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkoutLinesLocked()
}

func (c *Cart) checkoutLinesLocked() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}

// CheckoutSubtotal is Σ price × quantity over the payable lines only.
func (c *Cart) CheckoutSubtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkoutSubtotalLocked()
}

// CheckoutView is the cart as it is charged: payable lines, their subtotal,
// the discount capped at that subtotal and the resulting total.
type CheckoutView struct {
	Lines     []Line
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	PromoCode string
}

// Checkout returns a consistent CheckoutView.
func (c *Cart) Checkout() CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.checkoutLinesLocked()
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	discount := c.discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discount = decimal.Min(discount, subtotal)
	return CheckoutView{
		Lines:     lines,
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     subtotal.Sub(discount),
		PromoCode: c.promoCode,
	}
}

// Snapshot is a consistent read of the whole cart.
type Snapshot struct {
	Lines      []Line          `json:"lines"`
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	PromoCode  string          `json:"promo_code"`
	PromoError string          `json:"promo_error,omitempty"`
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, l := range c.lines {
		if l.Quantity > 0 {
			count += l.Quantity
		}
	}
	subtotal := c.subtotalLocked()
	lines := append(make([]Line, 0, len(c.lines)), c.lines...)
	return Snapshot{
		Lines:      lines,
		ItemCount:  count,
		Subtotal:   subtotal,
		Discount:   c.discount,
		Total:      totalOf(subtotal, c.discount),
		PromoCode:  c.promoCode,
		PromoError: c.promoError,
	}
}

func (c *Cart) indexLocked(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) quantityLocked(productID string) int {
	if i := c.indexLocked(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) subtotalLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c *Cart) checkoutSubtotalLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		if l.Quantity > 0 {
			sum = sum.Add(l.Total())
		}
	}
	return sum
}

func totalOf(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
