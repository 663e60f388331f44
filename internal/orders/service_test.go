package orders

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/pkg/db"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/migrate/migratetest"
	"github.com/angelmondragon/capshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	bySession map[string]*Order
	createErr error
	findErr   error
}

func (s *stubRepo) Create(_ context.Context, order *Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.bySession == nil {
		s.bySession = map[string]*Order{}
	}
	copied := *order
	s.bySession[order.SessionID] = &copied
	return nil
}

func (s *stubRepo) FindBySessionID(_ context.Context, sessionID string) (*Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	order, ok := s.bySession[sessionID]
	if !ok {
		return nil, errors.New("record not found")
	}
	return order, nil
}

func (s *stubRepo) List(context.Context, listQuery) ([]Order, error) {
	out := make([]Order, 0, len(s.bySession))
	for _, o := range s.bySession {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubRepo) SaveCustomProducts(context.Context, []CustomProduct) error {
	return nil
}

func (s *stubRepo) CustomProductsBySession(context.Context, string) ([]CustomProduct, error) {
	return nil, nil
}

func (s *stubRepo) MarkCustomProductsOrdered(context.Context, string, string, enums.CustomProductStatus, time.Time) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected repo required")
	}
	if _, err := NewService(ServiceParams{Repo: &stubRepo{}}); err == nil {
		t.Fatal("expected logger required")
	}
}

func TestRecordAssignsIdentity(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, Logger: testLogger(), Now: func() time.Time { return now }})
	require.NoError(t, err)

	order := *testOrder("cs_1", time.Time{})
	order.ID = uuid.Nil
	order.OrderNumber = ""

	recorded, created, err := svc.Record(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, uuid.Nil, recorded.ID)
	assert.Regexp(t, `^CAP-20250301-[0-9A-F]{8}$`, recorded.OrderNumber)
	assert.True(t, recorded.CreatedAt.Equal(now))
}

func TestRecordIsIdempotentPerSession(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ServiceParams{Repo: NewRepository(migratetest.OpenSQLite(t)), Logger: testLogger()})
	require.NoError(t, err)

	first, created, err := svc.Record(ctx, *testOrder("cs_same", time.Time{}))
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Record(ctx, *testOrder("cs_same", time.Time{}))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordValidation(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, Logger: testLogger()})
	require.NoError(t, err)

	noSession := *testOrder(" ", time.Time{})
	_, _, err = svc.Record(context.Background(), noSession)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	noItems := *testOrder("cs_1", time.Time{})
	noItems.Items = nil
	_, _, err = svc.Record(context.Background(), noItems)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRecordStorageFailure(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{createErr: errors.New("disk full")}, Logger: testLogger()})
	require.NoError(t, err)

	_, _, err = svc.Record(context.Background(), *testOrder("cs_1", time.Time{}))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.False(t, db.IsUniqueViolation(err, ""))
}

func TestGetBySessionID(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ServiceParams{Repo: NewRepository(migratetest.OpenSQLite(t)), Logger: testLogger()})
	require.NoError(t, err)

	_, err = svc.GetBySessionID(ctx, "cs_missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, _, err = svc.Record(ctx, *testOrder("cs_found", time.Time{}))
	require.NoError(t, err)
	found, err := svc.GetBySessionID(ctx, "cs_found")
	require.NoError(t, err)
	assert.Equal(t, "cs_found", found.SessionID)
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(migratetest.OpenSQLite(t)),
		Logger: testLogger(),
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	})
	require.NoError(t, err)

	for _, session := range []string{"cs_a", "cs_b", "cs_c"} {
		_, _, err := svc.Record(ctx, *testOrder(session, time.Time{}))
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, "cs_c", page.Orders[0].SessionID)
	assert.Equal(t, "cs_b", page.Orders[1].SessionID)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Orders, 1)
	assert.Equal(t, "cs_a", next.Orders[0].SessionID)
	assert.Empty(t, next.NextCursor)

	_, err = svc.List(ctx, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func customBuild(productID string) CustomProduct {
	return CustomProduct{
		ProductID:  productID,
		Title:      "Custom Classic Bucket",
		TotalPrice: decimal.RequireFromString("35"),
		Quantity:   1,
		Configuration: catalog.CustomConfiguration{
			BaseHat:       catalog.BaseHatRef{ID: "hat-classic-bucket", Title: "Classic Bucket", HatType: enums.HatTypeBucketHat},
			SelectedColor: "Olive",
			SelectedSize:  "L/XL",
			Customizations: []catalog.CustomizationSummary{{
				Category:    catalog.CategoryRef{ID: "cat-embroidery", Title: "Embroidery"},
				Type:        enums.CustomizationModeFreeform,
				Placement:   enums.PlacementBack,
				CustomText:  "CAPS",
				HasImage:    true,
				CustomImage: "data:image/png;base64,iVBORw0KGgo=",
				Notes:       "center it",
				Price:       decimal.RequireFromString("15"),
			}},
			TotalPrice: decimal.RequireFromString("35"),
		},
	}
}

func TestPaidOrderKeepsCustomConfiguration(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.OpenSQLite(t))
	svc, err := NewService(ServiceParams{Repo: repo, Logger: testLogger()})
	require.NoError(t, err)

	require.NoError(t, svc.StageCustomProducts(ctx, "cs_custom", []CustomProduct{customBuild("custom-1")}))
	require.NoError(t, svc.StageCustomProducts(ctx, "cs_abandoned", []CustomProduct{customBuild("custom-2")}))

	order := *testOrder("cs_custom", time.Time{})
	order.Items = append(order.Items, Item{ProductID: "custom-1", Title: "Custom Classic Bucket", UnitPrice: decimal.RequireFromString("35"), Quantity: 1, Custom: true})
	recorded, created, err := svc.Record(ctx, order)
	require.NoError(t, err)
	require.True(t, created)

	require.Len(t, recorded.CustomProducts, 1)
	build := recorded.CustomProducts[0]
	assert.Equal(t, enums.CustomProductStatusInProgress, build.Status)
	require.NotNil(t, build.OrderNumber)
	assert.Equal(t, recorded.OrderNumber, *build.OrderNumber)
	require.Len(t, build.Configuration.Customizations, 1)
	summary := build.Configuration.Customizations[0]
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", summary.CustomImage)
	assert.Equal(t, "center it", summary.Notes)
	assert.Equal(t, "CAPS", summary.CustomText)
	assert.Equal(t, "L/XL", build.Configuration.SelectedSize)

	found, err := svc.GetBySessionID(ctx, "cs_custom")
	require.NoError(t, err)
	require.Len(t, found.CustomProducts, 1)
	assert.Equal(t, "custom-1", found.CustomProducts[0].ProductID)

	again, created, err := svc.Record(ctx, order)
	require.NoError(t, err)
	assert.False(t, created)
	require.Len(t, again.CustomProducts, 1)
	assert.Equal(t, recorded.OrderNumber, *again.CustomProducts[0].OrderNumber)

	abandoned, err := repo.CustomProductsBySession(ctx, "cs_abandoned")
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, enums.CustomProductStatusDraft, abandoned[0].Status)
	assert.Nil(t, abandoned[0].OrderNumber)
}

func TestStageCustomProductsValidation(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &stubRepo{}, Logger: testLogger()})
	require.NoError(t, err)

	err = svc.StageCustomProducts(context.Background(), " ", []CustomProduct{customBuild("custom-1")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.StageCustomProducts(context.Background(), "cs_1", []CustomProduct{customBuild("")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.NoError(t, svc.StageCustomProducts(context.Background(), "cs_1", nil))
}
