package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/capshop-backend/internal/cart"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	successPath = "/order-confirmation?session_id={CHECKOUT_SESSION_ID}"
	cancelPath  = "/cart"

	maxDescriptionLength = 500
	guestCustomer        = "guest"
)

var defaultAllowedCountries = []string{"US", "CA", "GB", "AU"}

// Customer is the optional contact information entered before payment.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Confirmation is what the order confirmation page shows.
type Confirmation struct {
	SessionID     string              `json:"session_id"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Currency      enums.Currency      `json:"currency"`
	AmountTotal   decimal.Decimal     `json:"amount_total"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CustomerEmail string              `json:"customer_email,omitempty"`
	Shipping      *orders.Address     `json:"shipping,omitempty"`
	Order         *orders.Order       `json:"order,omitempty"`
}

// ServiceParams configure the checkout service.
type ServiceParams struct {
	Gateway          Gateway
	Orders           orders.Service
	Logger           *logger.Logger
	Metrics          *metrics.Storefront
	PublicURL        string
	Currency         enums.Currency
	AllowedCountries []string
}

// Service turns carts into hosted payment sessions and settled sessions into orders.
type Service struct {
	gateway   Gateway
	orders    orders.Service
	logg      *logger.Logger
	metrics   *metrics.Storefront
	publicURL string
	currency  enums.Currency
	countries []string
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	publicURL := strings.TrimRight(strings.TrimSpace(params.PublicURL), "/")
	if _, err := url.ParseRequestURI(publicURL); err != nil {
		return nil, fmt.Errorf("invalid public url %q: %w", params.PublicURL, err)
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("unsupported currency %q", currency)
	}
	countries := params.AllowedCountries
	if len(countries) == 0 {
		countries = defaultAllowedCountries
	}
	return &Service{
		gateway:   params.Gateway,
		orders:    params.Orders,
		logg:      params.Logger,
		metrics:   params.Metrics,
		publicURL: publicURL,
		currency:  currency,
		countries: countries,
	}, nil
}

// CreateSession opens a hosted payment session for the cart's positive lines.
// The cart is never modified here.
func (s *Service) CreateSession(ctx context.Context, c *cart.Cart, cartSessionID string, customer Customer) (*SessionResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart required")
	}
	view := c.Checkout()
	lines := view.Lines
	if len(lines) == 0 {
		s.metrics.CheckoutSession("empty")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid request: Cart is empty or invalid")
	}

	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, LineItem{
			ProductID:   line.Product.ID,
			Name:        line.Product.Title,
			Description: describe(line.Product),
			Image:       s.absoluteImage(line.Product.Images),
			UnitAmount:  toCents(line.Product.Price),
			Quantity:    int64(line.Quantity),
		})
	}

	email := strings.TrimSpace(customer.Email)
	customerID := email
	if customerID == "" {
		customerID = guestCustomer
	}

	req := SessionRequest{
		ClientReferenceID: cartSessionID,
		CustomerEmail:     email,
		Currency:          s.currency,
		Items:             items,
		DiscountAmount:    toCents(view.Discount),
		PromoCode:         view.PromoCode,
		SuccessURL:        s.publicURL + successPath,
		CancelURL:         s.publicURL + cancelPath,
		AllowedCountries:  s.countries,
		Metadata: map[string]string{
			"customerId": customerID,
			"subtotal":   view.Subtotal.StringFixed(2),
			"discount":   view.Discount.StringFixed(2),
			"total":      view.Total.StringFixed(2),
		},
	}
	if view.PromoCode != "" && view.Discount.IsPositive() {
		req.Metadata["promoCode"] = view.PromoCode
	}
	if name := strings.TrimSpace(customer.Name); name != "" {
		req.Metadata["customerName"] = name
	}

	ctx = s.logg.WithField(ctx, "cart_session_id", cartSessionID)
	result, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		s.metrics.CheckoutSession("error")
		s.logg.Error(ctx, "checkout session creation failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "An error occurred while creating the checkout session")
	}

	if builds := customBuilds(lines); len(builds) > 0 {
		if err := s.orders.StageCustomProducts(ctx, result.ID, builds); err != nil {
			s.metrics.CheckoutSession("error")
			s.logg.Error(s.logg.WithField(ctx, "checkout_session_id", result.ID), "custom products could not be staged", err)
			return nil, err
		}
	}

	s.metrics.CheckoutSession("created")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"checkout_session_id": result.ID,
		"lines":               len(items),
		"total":               view.Total.StringFixed(2),
	}), "checkout session created")
	return result, nil
}

// Confirm looks a session up for the confirmation page. A settled session is
// recorded as an order (once per session) and the shopper's cart is cleared.
func (s *Service) Confirm(ctx context.Context, sessionID string, c *cart.Cart) (*Confirmation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing session_id parameter")
	}

	details, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	confirmation := &Confirmation{
		SessionID:     details.ID,
		PaymentStatus: details.PaymentStatus,
		Currency:      details.Currency,
		AmountTotal:   details.AmountTotal,
		CustomerName:  details.CustomerName,
		CustomerEmail: details.CustomerEmail,
		Shipping:      details.Shipping,
	}
	if !details.PaymentStatus.Settled() {
		return confirmation, nil
	}

	order, err := s.record(ctx, details)
	if err != nil {
		return nil, err
	}
	confirmation.Order = order
	if c != nil {
		c.Clear()
	}
	return confirmation, nil
}

// Complete records the order for a settled session, as reported by the
// payment processor's completion webhook.
func (s *Service) Complete(ctx context.Context, sessionID string) (*orders.Order, error) {
	details, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !details.PaymentStatus.Settled() {
		s.logg.Warn(s.logg.WithField(ctx, "checkout_session_id", sessionID), "checkout completed without settled payment")
		return nil, nil
	}
	return s.record(ctx, details)
}

func (s *Service) lookup(ctx context.Context, sessionID string) (*SessionDetails, error) {
	details, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "checkout_session_id", sessionID), "checkout session lookup failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "An error occurred while retrieving the checkout session")
	}
	if details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return details, nil
}

func (s *Service) record(ctx context.Context, details *SessionDetails) (*orders.Order, error) {
	order := orders.Order{
		SessionID:       details.ID,
		Status:          enums.OrderStatusPaid,
		PaymentStatus:   details.PaymentStatus,
		Currency:        details.Currency,
		DiscountCode:    details.Metadata["promoCode"],
		Subtotal:        metadataAmount(details.Metadata, "subtotal", details.AmountSubtotal),
		Discount:        metadataAmount(details.Metadata, "discount", decimal.Zero),
		AmountTotal:     details.AmountTotal,
		CustomerName:    details.CustomerName,
		CustomerEmail:   details.CustomerEmail,
		ShippingAddress: details.Shipping,
	}
	if order.Currency == "" {
		order.Currency = s.currency
	}
	for _, item := range details.Items {
		order.Items = append(order.Items, orders.Item{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Custom:    strings.HasPrefix(item.ProductID, "custom-"),
		})
	}

	recorded, _, err := s.orders.Record(ctx, order)
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// customBuilds collects the configurator-built products of the paid lines.
func customBuilds(lines []cart.Line) []orders.CustomProduct {
	var out []orders.CustomProduct
	for _, line := range lines {
		if line.Product.Custom == nil {
			continue
		}
		out = append(out, orders.CustomProduct{
			ProductID:     line.Product.ID,
			Title:         line.Product.Title,
			TotalPrice:    line.Product.Price,
			Quantity:      line.Quantity,
			Configuration: *line.Product.Custom,
		})
	}
	return out
}

func (s *Service) absoluteImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	img := strings.TrimSpace(images[0])
	switch {
	case img == "", strings.HasPrefix(img, "data:"):
		return ""
	case strings.HasPrefix(img, "http://"), strings.HasPrefix(img, "https://"):
		return img
	default:
		return s.publicURL + "/" + strings.TrimLeft(img, "/")
	}
}

// describe renders a plain-text product description, summarizing the
// customizations of configurator-built products.
func describe(p catalog.Product) string {
	text := strings.TrimSpace(p.Description)
	if p.Custom != nil {
		parts := []string{fmt.Sprintf("Base: %s", p.Custom.BaseHat.Title)}
		if p.Custom.SelectedColor != "" {
			parts = append(parts, "Color: "+p.Custom.SelectedColor)
		}
		if p.Custom.SelectedSize != "" {
			parts = append(parts, "Size: "+p.Custom.SelectedSize)
		}
		for _, c := range p.Custom.Customizations {
			label := c.Category.Title
			switch {
			case c.OptionName != "":
				label += " - " + c.OptionName
			case c.CustomText != "":
				label += fmt.Sprintf(" - %q", c.CustomText)
			case c.HasImage:
				label += " - custom artwork"
			}
			if c.Placement != "" {
				label += " (" + c.Placement.String() + ")"
			}
			parts = append(parts, label)
		}
		text = strings.Join(parts, "; ")
	}
	if utf8.RuneCountInString(text) > maxDescriptionLength {
		text = string([]rune(text)[:maxDescriptionLength])
	}
	return text
}

func metadataAmount(metadata map[string]string, key string, fallback decimal.Decimal) decimal.Decimal {
	raw, ok := metadata[key]
	if !ok {
		return fallback
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback
	}
	return amount
}
