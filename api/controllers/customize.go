package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/capshop-backend/api/responses"
	"github.com/angelmondragon/capshop-backend/api/validators"
	"github.com/angelmondragon/capshop-backend/internal/customize"
	"github.com/angelmondragon/capshop-backend/internal/session"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

type configuratorStore interface {
	Configurator(ctx context.Context, sess *session.Session) (*customize.Configurator, error)
	ResetConfigurator(sess *session.Session)
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

type colorRequest struct {
	Color string `json:"color" validate:"required"`
}

type sizeRequest struct {
	Size string `json:"size" validate:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

type placementRequest struct {
	Placement string `json:"placement" validate:"required"`
}

type textRequest struct {
	Text string `json:"text"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// CustomizeState returns the builder state, creating the configurator on first use.
func CustomizeState(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cfg, err := loadConfigurator(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newConfiguratorResponse(cfg.State()))
	}
}

// CustomizeReset drops the builder so the next request starts over from the catalog.
func CustomizeReset(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.ResetConfigurator(sess)
		CustomizeState(store, logg).ServeHTTP(w, r)
	}
}

func CustomizeSelectBaseHat(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req idRequest) error {
		return c.SelectBaseHat(req.ID)
	})
}

func CustomizeSelectColor(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req colorRequest) error {
		return c.SelectColor(req.Color)
	})
}

func CustomizeSelectSize(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req sizeRequest) error {
		return c.SelectSize(req.Size)
	})
}

func CustomizeSelectCategory(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req idRequest) error {
		return c.SelectCategory(req.ID)
	})
}

func CustomizeSetMode(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req modeRequest) error {
		mode, err := enums.ParseCustomizationMode(req.Mode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customization mode")
		}
		return c.SetMode(mode)
	})
}

func CustomizeSelectOption(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req idRequest) error {
		return c.SelectOption(req.ID)
	})
}

func CustomizeSelectOptionColor(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req colorRequest) error {
		return c.SelectOptionColor(req.Color)
	})
}

func CustomizeSelectOptionSize(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req sizeRequest) error {
		return c.SelectOptionSize(req.Size)
	})
}

func CustomizeSelectPlacement(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req placementRequest) error {
		placement, err := enums.ParsePlacement(req.Placement)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid placement")
		}
		return c.SelectPlacement(placement)
	})
}

func CustomizeSetText(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req textRequest) error {
		return c.SetText(req.Text)
	})
}

func CustomizeSetNotes(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return configuratorStep(store, logg, func(c *customize.Configurator, req notesRequest) error {
		return c.SetNotes(req.Notes)
	})
}

// CustomizeUploadImage accepts a multipart "image" file for freeform artwork.
// A rejected upload leaves the previous image in place.
func CustomizeUploadImage(store configuratorStore, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cfg, err := loadConfigurator(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		}
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Image exceeds the upload size limit"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}
		defer file.Close()

		if err := cfg.UploadImage(file); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newConfiguratorResponse(cfg.State()))
	}
}

// CustomizeCommit prices the current selection and adds it to the hat.
func CustomizeCommit(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cfg, err := loadConfigurator(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := cfg.Commit(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newConfiguratorResponse(cfg.State()))
	}
}

// CustomizeRemove drops a committed customization by position.
func CustomizeRemove(store configuratorStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cfg, err := loadConfigurator(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "index must be numeric"))
			return
		}
		if err := cfg.RemoveCustomization(index); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newConfiguratorResponse(cfg.State()))
	}
}

// CustomizeAddToCart turns the committed customizations into a one-off
// product and puts it in the shopper's cart.
func CustomizeAddToCart(store configuratorStore, m *metrics.Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, cfg, err := loadConfigurator(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := cfg.Finalize()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		changed := sess.Cart.Add(product)
		m.CustomProductFinalized()
		m.CartMutation("add_custom", changed)

		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{
				"product_id": product.ID,
				"price":      money(product.Price),
			}), "custom product added to cart")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(sess.ID, sess.Cart.Snapshot()))
	}
}

func configuratorStep[T any](store configuratorStore, logg *logger.Logger, apply func(*customize.Configurator, T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cfg, err := loadConfigurator(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload T
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := apply(cfg, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newConfiguratorResponse(cfg.State()))
	}
}

func loadConfigurator(r *http.Request, store configuratorStore) (*session.Session, *customize.Configurator, error) {
	if store == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "customizer unavailable")
	}
	sess, err := requireSession(r)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := store.Configurator(r.Context(), sess)
	if err != nil {
		return nil, nil, err
	}
	return sess, cfg, nil
}
