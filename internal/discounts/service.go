package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/capshop-backend/pkg/db"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Validation is the outcome of an accepted promo code.
type Validation struct {
	Valid          bool               `json:"valid"`
	DiscountType   enums.DiscountType `json:"discountType"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
}

// CreateInput describes a new discount code.
type CreateInput struct {
	Code            string
	DiscountType    enums.DiscountType
	DiscountAmount  decimal.Decimal
	ValidFrom       time.Time
	ValidTo         time.Time
	MinimumPurchase *decimal.Decimal
}

// Service validates and manages promo codes.
type Service interface {
	Validate(ctx context.Context, code string, purchaseAmount decimal.Decimal) (Validation, error)
	Create(ctx context.Context, input CreateInput) (*DiscountCode, error)
	List(ctx context.Context) ([]DiscountCode, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the discounts service. now defaults to time.Now.
func NewService(repo Repository, logg *logger.Logger, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, logg: logg, now: now}, nil
}

// Validate checks code against purchaseAmount. Rejections are validation
// errors carrying the shopper-facing message; storage failures are internal.
func (s *service) Validate(ctx context.Context, code string, purchaseAmount decimal.Decimal) (Validation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Validation{}, pkgerrors.New(pkgerrors.CodeValidation, "Promo code is required")
	}
	if purchaseAmount.IsNegative() {
		return Validation{}, pkgerrors.New(pkgerrors.CodeValidation, "Purchase amount must not be negative")
	}

	record, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Validation{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid promo code")
		}
		s.logg.Error(s.logg.WithField(ctx, "code", normalized), "discount lookup failed", err)
		return Validation{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to validate promo code")
	}

	now := s.now()
	if now.Before(record.ValidFrom) {
		return Validation{}, pkgerrors.New(pkgerrors.CodeValidation, "Promo code is not active yet")
	}
	if now.After(record.ValidTo) {
		return Validation{}, pkgerrors.New(pkgerrors.CodeValidation, "Promo code has expired")
	}
	if record.MinimumPurchase.Valid && purchaseAmount.LessThan(record.MinimumPurchase.Decimal) {
		return Validation{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("Minimum purchase of $%s required", record.MinimumPurchase.Decimal.StringFixed(2)))
	}

	return Validation{
		Valid:          true,
		DiscountType:   record.DiscountType,
		DiscountAmount: record.Amount(purchaseAmount),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*DiscountCode, error) {
	record := &DiscountCode{
		ID:             uuid.New(),
		Code:           NormalizeCode(input.Code),
		DiscountType:   input.DiscountType,
		DiscountAmount: input.DiscountAmount,
		ValidFrom:      input.ValidFrom.UTC(),
		ValidTo:        input.ValidTo.UTC(),
	}
	if input.MinimumPurchase != nil {
		record.MinimumPurchase = decimal.NewNullDecimal(*input.MinimumPurchase)
	}
	if err := validateRecord(record); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists").
				WithDetails(map[string]any{"code": record.Code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create discount code")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"code":          record.Code,
		"discount_type": record.DiscountType,
	}), "discount code created")
	return record, nil
}

func (s *service) List(ctx context.Context) ([]DiscountCode, error) {
	codes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discount codes")
	}
	return codes, nil
}

func validateRecord(record *DiscountCode) error {
	switch {
	case record.Code == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	case !record.DiscountType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type").
			WithDetails(map[string]any{"discount_type": record.DiscountType})
	case !record.DiscountAmount.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "discount amount must be positive")
	case record.DiscountType == enums.DiscountTypePercentage && record.DiscountAmount.GreaterThan(decimal.NewFromInt(100)):
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	case record.ValidFrom.IsZero() || record.ValidTo.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "validity window is required")
	case record.ValidTo.Before(record.ValidFrom):
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_to must not be before valid_from")
	case record.MinimumPurchase.Valid && record.MinimumPurchase.Decimal.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum purchase must not be negative")
	}
	return nil
}
