package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/pagination"
)

type stubOrders struct {
	params pagination.Params
	orders []orders.Order
}

func (s *stubOrders) GetBySessionID(_ context.Context, sessionID string) (*orders.Order, error) {
	for _, o := range s.orders {
		if o.SessionID == sessionID {
			out := o
			return &out, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrders) List(_ context.Context, params pagination.Params) (*orders.ListResult, error) {
	s.params = params
	return &orders.ListResult{Orders: s.orders, NextCursor: "next-page"}, nil
}

func sampleOrder() orders.Order {
	return orders.Order{
		ID:            uuid.New(),
		OrderNumber:   "CAP-20260301-ABCDEF12",
		SessionID:     "cs_test_1",
		Status:        enums.OrderStatusPaid,
		PaymentStatus: enums.PaymentStatusPaid,
		Currency:      enums.CurrencyUSD,
		Subtotal:      dec("40"),
		Discount:      dec("5"),
		AmountTotal:   dec("35"),
		Items: []orders.Item{
			{ProductID: "a", Title: "Cap a", UnitPrice: dec("20"), Quantity: 2},
		},
	}
}

func TestAdminOrderList(t *testing.T) {
	svc := &stubOrders{orders: []orders.Order{sampleOrder()}}
	rec := httptest.NewRecorder()
	AdminOrderList(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?limit=10&cursor=abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.params.Limit != 10 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}
	var out struct {
		Orders     []orderResponse `json:"orders"`
		NextCursor string          `json:"next_cursor"`
	}
	decodeData(t, rec, &out)
	if len(out.Orders) != 1 || out.NextCursor != "next-page" {
		t.Fatalf("unexpected page %+v", out)
	}
	if got := out.Orders[0]; got.AmountTotal != "35.00" || got.Items[0].UnitPrice != "20.00" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestAdminOrderListRejectsLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminOrderList(&stubOrders{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminOrderBySession(t *testing.T) {
	svc := &stubOrders{orders: []orders.Order{sampleOrder()}}

	rec := httptest.NewRecorder()
	AdminOrderBySession(svc, testLogger()).ServeHTTP(rec, sessionRequest(http.MethodGet, "/", nil, nil, map[string]string{"sessionId": "cs_test_1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out orderResponse
	decodeData(t, rec, &out)
	if out.OrderNumber != "CAP-20260301-ABCDEF12" {
		t.Fatalf("unexpected order %+v", out)
	}

	rec = httptest.NewRecorder()
	AdminOrderBySession(svc, testLogger()).ServeHTTP(rec, sessionRequest(http.MethodGet, "/", nil, nil, map[string]string{"sessionId": "cs_missing"}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminOrderBySessionIncludesCustomArtwork(t *testing.T) {
	number := "CAP-20260301-ABCDEF12"
	order := sampleOrder()
	order.CustomProducts = []orders.CustomProduct{{
		ID:          uuid.New(),
		ProductID:   "custom-1",
		OrderNumber: &number,
		Title:       "Custom Bucket",
		TotalPrice:  dec("35"),
		Quantity:    1,
		Status:      enums.CustomProductStatusInProgress,
		Configuration: catalog.CustomConfiguration{
			BaseHat: catalog.BaseHatRef{ID: "hat-1", Title: "Bucket"},
			Customizations: []catalog.CustomizationSummary{
				{HasImage: true, CustomImage: "data:image/png;base64,AAAA", Notes: "center it"},
			},
		},
	}}
	svc := &stubOrders{orders: []orders.Order{order}}

	rec := httptest.NewRecorder()
	AdminOrderBySession(svc, testLogger()).ServeHTTP(rec, sessionRequest(http.MethodGet, "/", nil, nil, map[string]string{"sessionId": "cs_test_1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out orderResponse
	decodeData(t, rec, &out)
	if len(out.CustomProducts) != 1 {
		t.Fatalf("expected one custom product, got %+v", out.CustomProducts)
	}
	got := out.CustomProducts[0]
	if got.OrderNumber != number || got.Status != enums.CustomProductStatusInProgress || got.TotalPrice != "35.00" {
		t.Fatalf("unexpected custom product %+v", got)
	}
	if got.Configuration.Customizations[0].CustomImage != "data:image/png;base64,AAAA" {
		t.Fatal("expected artwork for fulfillment")
	}

	rec = httptest.NewRecorder()
	AdminOrderList(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil))
	var page struct {
		Orders []orderResponse `json:"orders"`
	}
	decodeData(t, rec, &page)
	listed := page.Orders[0].CustomProducts[0].Configuration.Customizations[0]
	if listed.CustomImage != "" || !listed.HasImage {
		t.Fatalf("expected listing without artwork data, got %+v", listed)
	}
}
