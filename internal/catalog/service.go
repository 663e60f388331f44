package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes the read side of the catalog plus the seed import used by cmd/seed.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListBaseHats(ctx context.Context) ([]BaseHat, error)
	ListCustomizationCategories(ctx context.Context) ([]CustomizationCategory, error)
	CompatibleCategories(ctx context.Context, hatType enums.HatType) ([]CustomizationCategory, error)
	Import(ctx context.Context, seed Seed) error
}

// Seed is a bulk catalog load.
type Seed struct {
	Products   []Product               `json:"products"`
	BaseHats   []BaseHat               `json:"base_hats"`
	Categories []CustomizationCategory `json:"customization_categories"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	normalized, err := filter.normalize()
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	return lookupResult(product, err, "product not found", "load product")
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	return lookupResult(product, err, "product not found", "load product")
}

func (s *service) ListBaseHats(ctx context.Context) ([]BaseHat, error) {
	hats, err := s.repo.ListBaseHats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list base hats")
	}
	return hats, nil
}

// ListCustomizationCategories returns active categories only.
func (s *service) ListCustomizationCategories(ctx context.Context) ([]CustomizationCategory, error) {
	categories, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customization categories")
	}
	return categories, nil
}

func (s *service) CompatibleCategories(ctx context.Context, hatType enums.HatType) ([]CustomizationCategory, error) {
	if !hatType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid hat type").WithDetails(map[string]any{"hat_type": hatType})
	}
	categories, err := s.ListCustomizationCategories(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCompatible(categories, hatType), nil
}

// Import validates every record and upserts the catalog. Nothing is written
// when any record is invalid.
func (s *service) Import(ctx context.Context, seed Seed) error {
	var errs error
	for _, p := range seed.Products {
		if err := p.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product %q: %w", p.ID, err))
		}
	}
	for _, h := range seed.BaseHats {
		if err := h.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("base hat %q: %w", h.ID, err))
		}
	}
	for _, c := range seed.Categories {
		if err := c.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("category %q: %w", c.ID, err))
		}
	}
	if errs != nil {
		problems := make([]string, 0)
		for _, err := range multierr.Errors(errs) {
			problems = append(problems, err.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid catalog seed").WithDetails(map[string]any{"problems": problems})
	}

	if err := s.repo.UpsertProducts(ctx, seed.Products); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert products")
	}
	if err := s.repo.UpsertBaseHats(ctx, seed.BaseHats); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert base hats")
	}
	if err := s.repo.UpsertCategories(ctx, seed.Categories); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert customization categories")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"products":   len(seed.Products),
		"base_hats":  len(seed.BaseHats),
		"categories": len(seed.Categories),
	}), "catalog imported")
	return nil
}

// FilterCompatible keeps the active categories that fit the hat type, preserving order.
func FilterCompatible(categories []CustomizationCategory, hatType enums.HatType) []CustomizationCategory {
	out := make([]CustomizationCategory, 0, len(categories))
	for _, c := range categories {
		if c.IsActive && c.CompatibleWith(hatType) {
			out = append(out, c)
		}
	}
	return out
}

func lookupResult[T any](record *T, err error, notFound, op string) (*T, error) {
	if err == nil {
		return record, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
