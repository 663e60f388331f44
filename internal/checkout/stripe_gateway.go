package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/coupon"
)

const (
	shippingDisplayName = "Standard Shipping"
	shippingMinDays     = 3
	shippingMaxDays     = 5
	productIDMetadata   = "productId"
)

// StripeAPI is the subset of stripe-go calls the gateway makes.
type StripeAPI interface {
	NewSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewCoupon(params *stripe.CouponParams) (*stripe.Coupon, error)
}

type stripeAPI struct{}

func (stripeAPI) NewSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (stripeAPI) GetSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.Get(id, params)
}

func (stripeAPI) NewCoupon(params *stripe.CouponParams) (*stripe.Coupon, error) {
	return coupon.New(params)
}

// StripeGateway creates and reads Stripe Checkout sessions.
type StripeGateway struct {
	api StripeAPI
}

// NewStripeGateway uses the package-level stripe-go client configured by pkg/stripe.
func NewStripeGateway() *StripeGateway {
	return &StripeGateway{api: stripeAPI{}}
}

// NewStripeGatewayWithAPI swaps the stripe-go calls, for tests.
func NewStripeGatewayWithAPI(api StripeAPI) *StripeGateway {
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*SessionResult, error) {
	currency := strings.ToLower(req.Currency.String())

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{freeShipping(currency)},
	}
	params.Context = ctx
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	for _, item := range req.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(item.Name),
			Metadata: map[string]string{productIDMetadata: item.ProductID},
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}
		if item.Image != "" {
			product.Images = stripe.StringSlice([]string{item.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	if req.DiscountAmount > 0 {
		couponParams := &stripe.CouponParams{
			AmountOff:      stripe.Int64(req.DiscountAmount),
			Currency:       stripe.String(currency),
			Duration:       stripe.String(string(stripe.CouponDurationOnce)),
			MaxRedemptions: stripe.Int64(1),
		}
		if req.PromoCode != "" {
			couponParams.Name = stripe.String(req.PromoCode)
		}
		couponParams.Context = ctx
		c, err := g.api.NewCoupon(couponParams)
		if err != nil {
			return nil, fmt.Errorf("create stripe coupon: %w", err)
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(c.ID)}}
	}

	s, err := g.api.NewSession(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return &SessionResult{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (*SessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items.data.price.product")

	s, err := g.api.GetSession(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve stripe checkout session: %w", err)
	}
	return sessionDetails(s), nil
}

func freeShipping(currency string) *stripe.CheckoutSessionShippingOptionParams {
	return &stripe.CheckoutSessionShippingOptionParams{
		ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
			Type:        stripe.String("fixed_amount"),
			DisplayName: stripe.String(shippingDisplayName),
			FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
				Amount:   stripe.Int64(0),
				Currency: stripe.String(currency),
			},
			DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
				Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
					Unit:  stripe.String("business_day"),
					Value: stripe.Int64(shippingMinDays),
				},
				Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
					Unit:  stripe.String("business_day"),
					Value: stripe.Int64(shippingMaxDays),
				},
			},
		},
	}
}

func sessionDetails(s *stripe.CheckoutSession) *SessionDetails {
	details := &SessionDetails{
		ID:                s.ID,
		ClientReferenceID: s.ClientReferenceID,
		PaymentStatus:     paymentStatus(s.PaymentStatus),
		Currency:          enums.Currency(strings.ToLower(string(s.Currency))),
		AmountSubtotal:    fromCents(s.AmountSubtotal),
		AmountTotal:       fromCents(s.AmountTotal),
		Metadata:          s.Metadata,
	}

	if cd := s.CustomerDetails; cd != nil {
		details.CustomerName = cd.Name
		details.CustomerEmail = cd.Email
		details.Shipping = toAddress(cd.Name, cd.Address)
	}
	if ci := s.CollectedInformation; ci != nil && ci.ShippingDetails != nil {
		details.Shipping = toAddress(ci.ShippingDetails.Name, ci.ShippingDetails.Address)
	}

	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			if li == nil {
				continue
			}
			item := PurchasedItem{
				Title:    li.Description,
				Quantity: int(li.Quantity),
			}
			if li.Price != nil {
				item.UnitPrice = fromCents(li.Price.UnitAmount)
				if li.Price.Product != nil {
					item.ProductID = li.Price.Product.Metadata[productIDMetadata]
				}
			}
			details.Items = append(details.Items, item)
		}
	}
	return details
}

func paymentStatus(status stripe.CheckoutSessionPaymentStatus) enums.PaymentStatus {
	switch status {
	case stripe.CheckoutSessionPaymentStatusPaid:
		return enums.PaymentStatusPaid
	case stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return enums.PaymentStatusNoPaymentRequired
	default:
		return enums.PaymentStatusUnpaid
	}
}

func toAddress(name string, addr *stripe.Address) *orders.Address {
	if addr == nil {
		return nil
	}
	return &orders.Address{
		Name:       name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
