package discounts

import (
	"context"

	"github.com/angelmondragon/capshop-backend/internal/repo"
	"gorm.io/gorm"
)

// Repository persists discount codes.
type Repository interface {
	Create(ctx context.Context, code *DiscountCode) error
	FindByCode(ctx context.Context, code string) (*DiscountCode, error)
	List(ctx context.Context) ([]DiscountCode, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a discount code repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, code *DiscountCode) error {
	return r.DB(ctx).Create(code).Error
}

func (r *repository) FindByCode(ctx context.Context, code string) (*DiscountCode, error) {
	var record DiscountCode
	if err := r.DB(ctx).First(&record, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context) ([]DiscountCode, error) {
	var codes []DiscountCode
	if err := r.DB(ctx).Order("created_at DESC").Order("code ASC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
