package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/angelmondragon/capshop-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

// checkoutCompleter records the order behind a completed checkout session.
type checkoutCompleter interface {
	Complete(ctx context.Context, sessionID string) (*orders.Order, error)
}

type ServiceParams struct {
	Checkout checkoutCompleter
	Logger   *logger.Logger
}

// Service reacts to Stripe checkout events.
type Service struct {
	checkout checkoutCompleter
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{checkout: params.Checkout, logg: params.Logger}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"stripe_event_id":   event.ID,
		"stripe_event_type": string(event.Type),
	})

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		if session.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		order, err := s.checkout.Complete(ctx, session.ID)
		if err != nil {
			return err
		}
		if order != nil {
			s.logg.Info(s.logg.WithField(ctx, "order_number", order.OrderNumber), "checkout completion processed")
		}
		return nil
	default:
		s.logg.Debug(ctx, "stripe event ignored")
		return nil
	}
}
