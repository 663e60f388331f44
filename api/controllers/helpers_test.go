package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/capshop-backend/api/middleware"
	"github.com/angelmondragon/capshop-backend/internal/cart"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/session"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
)

const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testProduct(id, price string, available int) catalog.Product {
	return catalog.Product{
		ID:                id,
		Title:             "Cap " + id,
		Slug:              "cap-" + id,
		ProductType:       enums.ProductTypeBucketHat,
		Price:             dec(price),
		AvailableQuantity: available,
		Images:            []string{"/media/" + id + ".jpg"},
	}
}

type stubCatalogSource struct{}

func (stubCatalogSource) ListBaseHats(context.Context) ([]catalog.BaseHat, error) {
	return []catalog.BaseHat{{
		ID:              "hat-bucket",
		Title:           "Classic Bucket",
		Slug:            "classic-bucket",
		HatType:         enums.HatTypeBucketHat,
		BasePrice:       dec("20"),
		Images:          []string{"/media/bucket.jpg"},
		AvailableColors: []catalog.HatColor{{Name: "Olive", InStock: true}},
		SizeOptions:     []catalog.SizeOption{{Size: "M", AdditionalCost: decimal.Zero}, {Size: "XL", AdditionalCost: dec("3")}},
	}}, nil
}

func (stubCatalogSource) ListCustomizationCategories(context.Context) ([]catalog.CustomizationCategory, error) {
	return []catalog.CustomizationCategory{{
		ID:                 "cat-embroidery",
		Title:              "Embroidery",
		Mode:               enums.CustomizationModeBoth,
		BasePrice:          dec("10"),
		PlacementOptions:   []enums.Placement{enums.PlacementFront, enums.PlacementBack},
		CompatibleHatTypes: []enums.HatType{enums.HatTypeBucketHat},
		IsActive:           true,
		AllowsMultiple:     true,
		MaxQuantityPerHat:  3,
		PredefinedOptions: []catalog.PredefinedOption{
			{ID: "opt-star", Name: "Star", AdditionalCost: dec("5"), IsActive: true},
		},
		FreeformSettings: &catalog.FreeformSettings{
			AllowText:        true,
			AllowImageUpload: true,
			AdditionalCost:   dec("2"),
			MaxTextLength:    20,
		},
	}}, nil
}

func newTestRegistry(t *testing.T, validator cart.PromoValidator) *session.Registry {
	t.Helper()
	reg, err := session.NewRegistry(session.RegistryParams{
		Logger:    testLogger(),
		Validator: validator,
		Catalog:   stubCatalogSource{},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func newTestSession(t *testing.T, validator cart.PromoValidator) (*session.Registry, *session.Session) {
	t.Helper()
	reg := newTestRegistry(t, validator)
	sess, _ := reg.Resolve("")
	return reg, sess
}

// sessionRequest builds a request carrying sess and the given chi URL params.
func sessionRequest(method, target string, body io.Reader, sess *session.Session, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := req.Context()
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	if len(params) > 0 {
		routeCtx := chi.NewRouteContext()
		for k, v := range params {
			routeCtx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}
	return req.WithContext(ctx)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, string(envelope.Data))
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v (%s)", err, rec.Body.String())
	}
	return body
}
