package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/capshop-backend/pkg/db"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
	"github.com/angelmondragon/capshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListResult is one page of orders plus the cursor for the next page.
type ListResult struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// Service records and lists orders.
type Service interface {
	// Record stores the order once per checkout session. When the session was
	// already recorded the existing order is returned with created false.
	Record(ctx context.Context, order Order) (*Order, bool, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	// StageCustomProducts keeps the configurator builds of an open checkout
	// session as drafts until the session is paid and recorded.
	StageCustomProducts(ctx context.Context, checkoutSessionID string, builds []CustomProduct) error
}

// ServiceParams configure the orders service.
type ServiceParams struct {
	Repo    Repository
	Logger  *logger.Logger
	Metrics *metrics.Storefront
	Now     func() time.Time
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.Storefront
	now     func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: params.Logger, metrics: params.Metrics, now: now}, nil
}

func (s *service) Record(ctx context.Context, order Order) (*Order, bool, error) {
	order.SessionID = strings.TrimSpace(order.SessionID)
	if order.SessionID == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}
	if len(order.Items) == 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	now := s.now().UTC()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.OrderNumber == "" {
		order.OrderNumber = NewOrderNumber(now, order.ID)
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	ctx = s.logg.WithField(ctx, "checkout_session_id", order.SessionID)
	if err := s.repo.Create(ctx, &order); err != nil {
		if db.IsUniqueViolation(err, "") {
			existing, findErr := s.repo.FindBySessionID(ctx, order.SessionID)
			if findErr != nil {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "load recorded order")
			}
			s.logg.Info(s.logg.WithField(ctx, "order_number", existing.OrderNumber), "order already recorded")
			if err := s.attachCustomProducts(ctx, existing, now); err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record order")
	}
	if err := s.attachCustomProducts(ctx, &order, now); err != nil {
		return nil, false, err
	}

	s.metrics.OrderRecorded()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"amount_total": order.AmountTotal.StringFixed(2),
		"items":        order.ItemCount(),
	}), "order recorded")
	return &order, true, nil
}

func (s *service) GetBySessionID(ctx context.Context, sessionID string) (*Order, error) {
	order, err := s.repo.FindBySessionID(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	builds, err := s.repo.CustomProductsBySession(ctx, order.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load custom products")
	}
	order.CustomProducts = builds
	return order, nil
}

func (s *service) StageCustomProducts(ctx context.Context, checkoutSessionID string, builds []CustomProduct) error {
	checkoutSessionID = strings.TrimSpace(checkoutSessionID)
	if checkoutSessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}
	if len(builds) == 0 {
		return nil
	}

	now := s.now().UTC()
	rows := make([]CustomProduct, 0, len(builds))
	for _, b := range builds {
		if strings.TrimSpace(b.ProductID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "custom product id required")
		}
		b.ID = uuid.New()
		b.CheckoutSessionID = checkoutSessionID
		b.OrderNumber = nil
		b.Status = enums.CustomProductStatusDraft
		if b.Quantity <= 0 {
			b.Quantity = 1
		}
		b.CreatedAt = now
		b.UpdatedAt = now
		rows = append(rows, b)
	}

	ctx = s.logg.WithField(ctx, "checkout_session_id", checkoutSessionID)
	if err := s.repo.SaveCustomProducts(ctx, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stage custom products")
	}
	s.logg.Info(s.logg.WithField(ctx, "custom_products", len(rows)), "custom products staged")
	return nil
}

// attachCustomProducts stamps the session's draft builds with the order number
// and loads them onto the order. Re-running it for a recorded order only loads.
func (s *service) attachCustomProducts(ctx context.Context, order *Order, now time.Time) error {
	if err := s.repo.MarkCustomProductsOrdered(ctx, order.SessionID, order.OrderNumber, enums.CustomProductStatusInProgress, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link custom products")
	}
	builds, err := s.repo.CustomProductsBySession(ctx, order.SessionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load custom products")
	}
	order.CustomProducts = builds
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := listQuery{limit: pagination.LimitWithBuffer(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	page, next := pagination.Trim(rows, limit, func(o Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &ListResult{Orders: page, NextCursor: next}, nil
}
