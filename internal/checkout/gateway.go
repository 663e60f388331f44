package checkout

import (
	"context"

	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// LineItem is one product line sent to the hosted payment page.
type LineItem struct {
	ProductID   string
	Name        string
	Description string
	Image       string
	UnitAmount  int64
	Quantity    int64
}

// SessionRequest describes a hosted checkout session.
type SessionRequest struct {
	ClientReferenceID string
	CustomerEmail     string
	Currency          enums.Currency
	Items             []LineItem
	DiscountAmount    int64
	PromoCode         string
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
	AllowedCountries  []string
}

// SessionResult identifies a created checkout session.
type SessionResult struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// PurchasedItem is a line item as settled by the payment processor.
type PurchasedItem struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// SessionDetails is the processor's view of a checkout session.
type SessionDetails struct {
	ID                string
	ClientReferenceID string
	PaymentStatus     enums.PaymentStatus
	Currency          enums.Currency
	AmountSubtotal    decimal.Decimal
	AmountTotal       decimal.Decimal
	CustomerName      string
	CustomerEmail     string
	Shipping          *orders.Address
	Metadata          map[string]string
	Items             []PurchasedItem
}

// Gateway is the payment processor behind checkout.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*SessionResult, error)
	GetSession(ctx context.Context, id string) (*SessionDetails, error)
}
