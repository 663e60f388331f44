package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/capshop-backend/pkg/db"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/angelmondragon/capshop-backend/pkg/migrate/migratetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testOrder(sessionID string, createdAt time.Time) *Order {
	id := uuid.New()
	return &Order{
		ID:            id,
		OrderNumber:   NewOrderNumber(createdAt, id),
		SessionID:     sessionID,
		Status:        enums.OrderStatusPaid,
		PaymentStatus: enums.PaymentStatusPaid,
		Currency:      enums.CurrencyUSD,
		DiscountCode:  "SUMMER10",
		Subtotal:      decimal.RequireFromString("50"),
		Discount:      decimal.RequireFromString("5"),
		AmountTotal:   decimal.RequireFromString("45"),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		ShippingAddress: &Address{
			Line1:      "1 Analytical Way",
			City:       "London",
			PostalCode: "N1",
			Country:    "GB",
		},
		Items: []Item{
			{ProductID: "p1", Title: "Bucket", UnitPrice: decimal.RequireFromString("25"), Quantity: 2},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.OpenSQLite(t))

	order := testOrder("cs_test_1", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindBySessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)
	assert.True(t, found.AmountTotal.Equal(decimal.NewFromInt(45)))
	require.NotNil(t, found.ShippingAddress)
	assert.Equal(t, "London", found.ShippingAddress.City)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)

	_, err = repo.FindBySessionID(ctx, "cs_missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryCreateDuplicateSession(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.OpenSQLite(t))
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, testOrder("cs_dup", now)))
	err := repo.Create(ctx, testOrder("cs_dup", now))
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.OpenSQLite(t))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, session := range []string{"cs_a", "cs_b", "cs_c"} {
		require.NoError(t, repo.Create(ctx, testOrder(session, base.Add(time.Duration(i)*time.Hour))))
	}

	rows, err := repo.List(ctx, listQuery{limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"cs_c", "cs_b", "cs_a"}, []string{rows[0].SessionID, rows[1].SessionID, rows[2].SessionID})
}

func TestRepositoryCustomProductsStayDraftUntilOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(migratetest.OpenSQLite(t))
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	build := customBuild("custom-1")
	build.ID = uuid.New()
	build.CheckoutSessionID = "cs_build"
	build.Status = enums.CustomProductStatusDraft
	build.CreatedAt = now
	build.UpdatedAt = now
	require.NoError(t, repo.SaveCustomProducts(ctx, []CustomProduct{build}))

	dup := build
	dup.ID = uuid.New()
	dup.Title = "replaced"
	require.NoError(t, repo.SaveCustomProducts(ctx, []CustomProduct{dup}))

	rows, err := repo.CustomProductsBySession(ctx, "cs_build")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Custom Classic Bucket", rows[0].Title)
	assert.Nil(t, rows[0].OrderNumber)
	assert.True(t, rows[0].Configuration.Customizations[0].HasImage)

	require.NoError(t, repo.MarkCustomProductsOrdered(ctx, "cs_build", "CAP-20250315-00000001", enums.CustomProductStatusInProgress, now))
	require.NoError(t, repo.MarkCustomProductsOrdered(ctx, "cs_build", "CAP-OTHER", enums.CustomProductStatusInProgress, now))

	rows, err = repo.CustomProductsBySession(ctx, "cs_build")
	require.NoError(t, err)
	require.NotNil(t, rows[0].OrderNumber)
	assert.Equal(t, "CAP-20250315-00000001", *rows[0].OrderNumber)
	assert.Equal(t, enums.CustomProductStatusInProgress, rows[0].Status)
}
