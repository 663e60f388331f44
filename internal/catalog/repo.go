package catalog

import (
	"context"

	"github.com/angelmondragon/capshop-backend/internal/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository reads (and seeds) the storefront catalog tables.
type Repository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	FindProductByID(ctx context.Context, id string) (*Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListBaseHats(ctx context.Context) ([]BaseHat, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]CustomizationCategory, error)
	UpsertProducts(ctx context.Context, products []Product) error
	UpsertBaseHats(ctx context.Context, hats []BaseHat) error
	UpsertCategories(ctx context.Context, categories []CustomizationCategory) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// ListProducts expects an already normalized filter.
func (r *repository) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	q := r.DB(ctx).Model(&Product{})
	if len(filter.Types) > 0 {
		q = q.Where("product_type IN ?", filter.Types)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var products []Product
	if err := q.Order("created_at DESC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindProductByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	if err := r.DB(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListBaseHats(ctx context.Context) ([]BaseHat, error) {
	var hats []BaseHat
	if err := r.DB(ctx).Order("created_at ASC").Order("id ASC").Find(&hats).Error; err != nil {
		return nil, err
	}
	return hats, nil
}

func (r *repository) ListCategories(ctx context.Context, activeOnly bool) ([]CustomizationCategory, error) {
	q := r.DB(ctx).Model(&CustomizationCategory{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var categories []CustomizationCategory
	if err := q.Order("created_at ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) UpsertProducts(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&products).Error
}

func (r *repository) UpsertBaseHats(ctx context.Context, hats []BaseHat) error {
	if len(hats) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&hats).Error
}

func (r *repository) UpsertCategories(ctx context.Context, categories []CustomizationCategory) error {
	if len(categories) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&categories).Error
}
