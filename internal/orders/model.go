package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one purchased product on an order.
type Item struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Custom    bool            `json:"custom,omitempty"`
}

// Address is the shipping destination collected by the payment page.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order is a settled checkout.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;primaryKey" json:"id"`
	OrderNumber     string              `gorm:"column:order_number" json:"order_number"`
	SessionID       string              `gorm:"column:session_id" json:"session_id"`
	Status          enums.OrderStatus   `gorm:"column:status" json:"status"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status" json:"payment_status"`
	Currency        enums.Currency      `gorm:"column:currency" json:"currency"`
	DiscountCode    string              `gorm:"column:discount_code" json:"discount_code,omitempty"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2)" json:"subtotal"`
	Discount        decimal.Decimal     `gorm:"column:discount;type:numeric(10,2)" json:"discount"`
	AmountTotal     decimal.Decimal     `gorm:"column:amount_total;type:numeric(10,2)" json:"amount_total"`
	CustomerName    string              `gorm:"column:customer_name" json:"customer_name,omitempty"`
	CustomerEmail   string              `gorm:"column:customer_email" json:"customer_email,omitempty"`
	ShippingAddress *Address            `gorm:"column:shipping_address;serializer:json" json:"shipping_address,omitempty"`
	Items           []Item              `gorm:"column:items;serializer:json" json:"items"`
	CreatedAt       time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at" json:"updated_at"`

	// CustomProducts are the configurator builds paid for on this order.
	CustomProducts []CustomProduct `gorm:"-" json:"custom_products,omitempty"`
}

func (Order) TableName() string { return "orders" }

// CustomProduct is the production record of one configurator-built hat. It is
// staged as a draft when the checkout session opens and stamped with the order
// number once the session is paid.
type CustomProduct struct {
	ID                uuid.UUID                   `gorm:"column:id;primaryKey" json:"id"`
	ProductID         string                      `gorm:"column:product_id" json:"product_id"`
	CheckoutSessionID string                      `gorm:"column:checkout_session_id" json:"checkout_session_id"`
	OrderNumber       *string                     `gorm:"column:order_number" json:"order_number,omitempty"`
	Title             string                      `gorm:"column:title" json:"title"`
	TotalPrice        decimal.Decimal             `gorm:"column:total_price;type:numeric(10,2)" json:"total_price"`
	Quantity          int                         `gorm:"column:quantity" json:"quantity"`
	Configuration     catalog.CustomConfiguration `gorm:"column:configuration;serializer:json" json:"configuration"`
	Status            enums.CustomProductStatus   `gorm:"column:status" json:"status"`
	CreatedAt         time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"column:updated_at" json:"updated_at"`
}

func (CustomProduct) TableName() string { return "custom_products" }

// ItemCount is the number of units across all items.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// NewOrderNumber builds a human-facing order number such as CAP-20250301-1A2B3C4D.
func NewOrderNumber(now time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("CAP-%s-%s", now.UTC().Format("20060102"), suffix)
}
