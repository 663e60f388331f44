package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/capshop-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/capshop-backend/api/controllers/webhooks"
	"github.com/angelmondragon/capshop-backend/api/middleware"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/discounts"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/internal/session"
	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/angelmondragon/capshop-backend/pkg/enums"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/capshop-backend/pkg/redis"
	"github.com/angelmondragon/capshop-backend/pkg/stripe"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	gatherer prometheus.Gatherer,
	storefrontMetrics *metrics.Storefront,
	registry *session.Registry,
	catalogService catalog.Service,
	discountService discounts.Service,
	ordersService orders.Service,
	checkoutService controllers.CheckoutService,
	stripeClient *stripe.Client,
	stripeWebhookService webhookcontrollers.StripeWebhookService,
	stripeWebhookGuard webhookcontrollers.StripeWebhookGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.PublicURL),
	)

	// typed nil clients must not reach the middleware interfaces
	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["db"] = dbP
	}
	var idempotencyStore pkgredis.IdempotencyStore
	var limiter rateLimiter
	if redisClient != nil {
		readiness["redis"] = redisClient
		idempotencyStore = redisClient
		limiter = redisClient
	}
	promoPolicy := middleware.NewRateLimitPolicy("promo", cfg.PromoRateLimit.Window, cfg.PromoRateLimit.IPLimit)
	promoLimit := middleware.RateLimit(promoPolicy, limiter, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(catalogService, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(catalogService, logg))
		r.With(promoLimit).Get("/discounts/validate", controllers.DiscountValidate(discountService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(registry, middleware.SessionOptions{
				CookieName: cfg.Session.CookieName,
				Secure:     cfg.Session.SecureCookie,
				MaxAge:     cfg.Session.IdleTTL,
			}, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(logg))
				r.Delete("/", controllers.CartClear(storefrontMetrics, logg))
				r.Post("/items", controllers.CartAddItem(catalogService, storefrontMetrics, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(storefrontMetrics, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(storefrontMetrics, logg))
				r.With(promoLimit).Put("/promo", controllers.CartApplyPromo(logg))
			})

			r.Route("/customize", func(r chi.Router) {
				r.Get("/", controllers.CustomizeState(registry, logg))
				r.Delete("/", controllers.CustomizeReset(registry, logg))
				r.Post("/base-hat", controllers.CustomizeSelectBaseHat(registry, logg))
				r.Post("/color", controllers.CustomizeSelectColor(registry, logg))
				r.Post("/size", controllers.CustomizeSelectSize(registry, logg))
				r.Post("/category", controllers.CustomizeSelectCategory(registry, logg))
				r.Post("/mode", controllers.CustomizeSetMode(registry, logg))
				r.Post("/option", controllers.CustomizeSelectOption(registry, logg))
				r.Post("/option-color", controllers.CustomizeSelectOptionColor(registry, logg))
				r.Post("/option-size", controllers.CustomizeSelectOptionSize(registry, logg))
				r.Post("/placement", controllers.CustomizeSelectPlacement(registry, logg))
				r.Post("/text", controllers.CustomizeSetText(registry, logg))
				r.Post("/notes", controllers.CustomizeSetNotes(registry, logg))
				r.Post("/image", controllers.CustomizeUploadImage(registry, cfg.Media.MaxUploadBytes(), logg))
				r.Post("/customizations", controllers.CustomizeCommit(registry, logg))
				r.Delete("/customizations/{index}", controllers.CustomizeRemove(registry, logg))
				r.Post("/cart", controllers.CustomizeAddToCart(registry, storefrontMetrics, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/session", controllers.CheckoutCreateSession(checkoutService, logg))
				r.Get("/session", controllers.CheckoutConfirm(checkoutService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))
		r.Get("/discounts", controllers.AdminDiscountList(discountService, logg))
		r.Post("/discounts", controllers.AdminDiscountCreate(discountService, logg))
		r.Get("/orders", controllers.AdminOrderList(ordersService, logg))
		r.Get("/orders/by-session/{sessionId}", controllers.AdminOrderBySession(ordersService, logg))
	})

	return r
}
