package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/capshop-backend/internal/repo"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/angelmondragon/capshop-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindBySessionID(ctx context.Context, sessionID string) (*Order, error)
	List(ctx context.Context, query listQuery) ([]Order, error)

	SaveCustomProducts(ctx context.Context, products []CustomProduct) error
	CustomProductsBySession(ctx context.Context, checkoutSessionID string) ([]CustomProduct, error)
	MarkCustomProductsOrdered(ctx context.Context, checkoutSessionID, orderNumber string, status enums.CustomProductStatus, at time.Time) error
}

type listQuery struct {
	limit  int
	cursor *pagination.Cursor
}

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, order *Order) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID string) (*Order, error) {
	var order Order
	if err := r.DB(ctx).First(&order, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first using keyset pagination.
func (r *repository) List(ctx context.Context, opts listQuery) ([]Order, error) {
	query := r.DB(ctx).Model(&Order{})
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveCustomProducts stores staged builds; a build already staged for the
// same checkout session is left as is.
func (r *repository) SaveCustomProducts(ctx context.Context, products []CustomProduct) error {
	if len(products) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "checkout_session_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&products).Error
}

func (r *repository) CustomProductsBySession(ctx context.Context, checkoutSessionID string) ([]CustomProduct, error) {
	var rows []CustomProduct
	err := r.DB(ctx).
		Where("checkout_session_id = ?", checkoutSessionID).
		Order("created_at ASC").Order("product_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkCustomProductsOrdered moves the session's draft builds onto the order.
func (r *repository) MarkCustomProductsOrdered(ctx context.Context, checkoutSessionID, orderNumber string, status enums.CustomProductStatus, at time.Time) error {
	return r.DB(ctx).Model(&CustomProduct{}).
		Where("checkout_session_id = ? AND status = ?", checkoutSessionID, enums.CustomProductStatusDraft).
		Updates(map[string]any{
			"order_number": orderNumber,
			"status":       status,
			"updated_at":   at,
		}).Error
}
