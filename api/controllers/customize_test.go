package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/capshop-backend/internal/session"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
)

func serveCustomize(t *testing.T, h http.HandlerFunc, method, body string, sess *session.Session, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(method, "/api/v1/customize", strings.NewReader(body), sess, params))
	return rec
}

func TestCustomizeStateStartsOnFirstHat(t *testing.T) {
	reg, sess := newTestSession(t, nil)

	rec := serveCustomize(t, CustomizeState(reg, testLogger()), http.MethodGet, "", sess, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var out configuratorResponse
	decodeData(t, rec, &out)
	if out.BaseHat.ID != "hat-bucket" || out.SelectedColor != "Olive" || out.SelectedSize != "M" {
		t.Fatalf("unexpected hat selection %+v", out)
	}
	if out.Category == nil || out.Category.ID != "cat-embroidery" || out.Mode != enums.CustomizationModePredefined {
		t.Fatalf("expected embroidery in predefined mode, got %+v", out.Category)
	}
	if out.Option == nil || out.Option.ID != "opt-star" || out.PendingPrice != "15.00" {
		t.Fatalf("unexpected pending selection option=%+v price=%s", out.Option, out.PendingPrice)
	}
	if out.Total != "20.00" || len(out.Customizations) != 0 {
		t.Fatalf("unexpected total %s", out.Total)
	}
}

func TestCustomizeCommitAndAddToCart(t *testing.T) {
	reg, sess := newTestSession(t, nil)

	rec := serveCustomize(t, CustomizeCommit(reg, testLogger()), http.MethodPost, "", sess, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var out configuratorResponse
	decodeData(t, rec, &out)
	if len(out.Customizations) != 1 || out.Customizations[0].Price != "15.00" || out.Total != "35.00" {
		t.Fatalf("unexpected state after commit %+v", out)
	}

	rec = serveCustomize(t, CustomizeAddToCart(reg, nil, testLogger()), http.MethodPost, "", sess, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var cartOut cartResponse
	decodeData(t, rec, &cartOut)
	if len(cartOut.Lines) != 1 {
		t.Fatalf("expected one custom line, got %+v", cartOut.Lines)
	}
	line := cartOut.Lines[0]
	if !strings.HasPrefix(line.Product.ID, "custom-") || line.Product.ProductType != enums.ProductTypeCustom {
		t.Fatalf("unexpected custom product %+v", line.Product)
	}
	if line.Product.Price != "35.00" || line.Quantity != 1 || cartOut.Total != "35.00" {
		t.Fatalf("unexpected custom line %+v", line)
	}
	if line.Product.Custom == nil || len(line.Product.Custom.Customizations) != 1 {
		t.Fatalf("expected custom payload, got %+v", line.Product.Custom)
	}

	rec = serveCustomize(t, CustomizeAddToCart(reg, nil, testLogger()), http.MethodPost, "", sess, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("finalize without customizations should be rejected, got %d", rec.Code)
	}
	if got := len(sess.Cart.Lines()); got != 1 {
		t.Fatalf("rejected finalize must not touch the cart, got %d lines", got)
	}
}

func TestCustomizeSteps(t *testing.T) {
	reg, sess := newTestSession(t, nil)
	logg := testLogger()

	rec := serveCustomize(t, CustomizeSelectSize(reg, logg), http.MethodPost, `{"size":"XL"}`, sess, nil)
	var out configuratorResponse
	decodeData(t, rec, &out)
	if out.SelectedSize != "XL" || out.Total != "23.00" {
		t.Fatalf("unexpected state after size %+v", out)
	}

	if rec := serveCustomize(t, CustomizeSelectColor(reg, logg), http.MethodPost, `{"color":"Neon"}`, sess, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown color, got %d", rec.Code)
	}
	if rec := serveCustomize(t, CustomizeSetMode(reg, logg), http.MethodPost, `{"mode":"sideways"}`, sess, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", rec.Code)
	}
	if rec := serveCustomize(t, CustomizeSelectPlacement(reg, logg), http.MethodPost, `{"placement":"brim"}`, sess, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unoffered placement, got %d", rec.Code)
	}

	rec = serveCustomize(t, CustomizeSelectPlacement(reg, logg), http.MethodPost, `{"placement":"back"}`, sess, nil)
	decodeData(t, rec, &out)
	if out.Placement != enums.PlacementBack {
		t.Fatalf("expected back placement, got %q", out.Placement)
	}

	rec = serveCustomize(t, CustomizeSetMode(reg, logg), http.MethodPost, `{"mode":"freeform"}`, sess, nil)
	decodeData(t, rec, &out)
	if out.Mode != enums.CustomizationModeFreeform || out.PendingPrice != "12.00" {
		t.Fatalf("unexpected freeform state %+v", out)
	}

	rec = serveCustomize(t, CustomizeSetText(reg, logg), http.MethodPost, `{"text":"`+strings.Repeat("x", 21)+`"}`, sess, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for long text, got %d", rec.Code)
	}
	rec = serveCustomize(t, CustomizeSetText(reg, logg), http.MethodPost, `{"text":"GO"}`, sess, nil)
	decodeData(t, rec, &out)
	if out.Text != "GO" {
		t.Fatalf("expected text stored, got %q", out.Text)
	}

	rec = serveCustomize(t, CustomizeReset(reg, logg), http.MethodDelete, "", sess, nil)
	decodeData(t, rec, &out)
	if out.SelectedSize != "M" || out.Text != "" || out.Mode != enums.CustomizationModePredefined {
		t.Fatalf("reset should start over, got %+v", out)
	}
}

func TestCustomizeRemove(t *testing.T) {
	reg, sess := newTestSession(t, nil)
	serveCustomize(t, CustomizeCommit(reg, testLogger()), http.MethodPost, "", sess, nil)

	rec := serveCustomize(t, CustomizeRemove(reg, testLogger()), http.MethodDelete, "", sess, map[string]string{"index": "abc"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric index, got %d", rec.Code)
	}
	rec = serveCustomize(t, CustomizeRemove(reg, testLogger()), http.MethodDelete, "", sess, map[string]string{"index": "3"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for out of range index, got %d", rec.Code)
	}
	rec = serveCustomize(t, CustomizeRemove(reg, testLogger()), http.MethodDelete, "", sess, map[string]string{"index": "0"})
	var out configuratorResponse
	decodeData(t, rec, &out)
	if len(out.Customizations) != 0 || out.Total != "20.00" {
		t.Fatalf("unexpected state after remove %+v", out)
	}
}

func TestCustomizeUploadImage(t *testing.T) {
	reg, sess := newTestSession(t, nil)
	serveCustomize(t, CustomizeSetMode(reg, testLogger()), http.MethodPost, `{"mode":"freeform"}`, sess, nil)

	png, err := base64.StdEncoding.DecodeString(onePixelPNG)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	upload := func(field string, payload []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile(field, "art.png")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write part: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}
		req := sessionRequest(http.MethodPost, "/api/v1/customize/image", &body, sess, nil)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		CustomizeUploadImage(reg, 1<<20, testLogger()).ServeHTTP(rec, req)
		return rec
	}

	rec := upload("image", png)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var out configuratorResponse
	decodeData(t, rec, &out)
	if !out.HasImage {
		t.Fatal("expected image to be stored")
	}

	rec = upload("image", []byte("plain text, not an image"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-image upload, got %d", rec.Code)
	}
	cfg, err := reg.Configurator(context.Background(), sess)
	if err != nil {
		t.Fatalf("configurator: %v", err)
	}
	if !cfg.State().HasImage {
		t.Fatal("rejected upload must keep the previous image")
	}

	rec = upload("file", png)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without image field, got %d", rec.Code)
	}
}

func TestCustomizeRequiresSession(t *testing.T) {
	reg := newTestRegistry(t, nil)
	rec := httptest.NewRecorder()
	CustomizeState(reg, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customize", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without session, got %d", rec.Code)
	}
}

var _ configuratorStore = (*session.Registry)(nil)
