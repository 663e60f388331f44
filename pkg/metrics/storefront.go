package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records cart, promo, checkout and background job activity.
// A nil *Storefront is valid and records nothing.
type Storefront struct {
	cartMutations    *prometheus.CounterVec
	promoValidations *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	ordersRecorded   prometheus.Counter
	customProducts   prometheus.Counter
	activeSessions   prometheus.Gauge
	jobDuration      *prometheus.HistogramVec
	jobRuns          *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	m := &Storefront{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capshop_cart_mutations_total",
			Help: "Cart mutations by operation and whether the cart changed.",
		}, []string{"op", "changed"}),
		promoValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capshop_promo_validations_total",
			Help: "Promo code validations by result.",
		}, []string{"result"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capshop_checkout_sessions_total",
			Help: "Checkout session creation attempts by result.",
		}, []string{"result"}),
		ordersRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capshop_orders_recorded_total",
			Help: "Orders persisted after a settled checkout.",
		}),
		customProducts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capshop_custom_products_total",
			Help: "Custom hats finalized by the configurator.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "capshop_active_sessions",
			Help: "Shopper sessions currently held in memory.",
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capshop_job_duration_seconds",
			Help:    "Duration of background jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capshop_job_runs_total",
			Help: "Background job executions by outcome.",
		}, []string{"job", "outcome"}),
	}
	reg.MustRegister(
		m.cartMutations,
		m.promoValidations,
		m.checkoutSessions,
		m.ordersRecorded,
		m.customProducts,
		m.activeSessions,
		m.jobDuration,
		m.jobRuns,
	)
	return m
}

// CartMutation counts a cart operation.
func (m *Storefront) CartMutation(op string, changed bool) {
	if m == nil || m.cartMutations == nil {
		return
	}
	label := "false"
	if changed {
		label = "true"
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op), label).Inc()
}

// PromoValidation counts a promo validation outcome (valid, rejected, error).
func (m *Storefront) PromoValidation(result string) {
	if m == nil || m.promoValidations == nil {
		return
	}
	m.promoValidations.WithLabelValues(normalizeLabel(result)).Inc()
}

// CheckoutSession counts a checkout session attempt (created, empty, error).
func (m *Storefront) CheckoutSession(result string) {
	if m == nil || m.checkoutSessions == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Storefront) OrderRecorded() {
	if m == nil || m.ordersRecorded == nil {
		return
	}
	m.ordersRecorded.Inc()
}

func (m *Storefront) CustomProductFinalized() {
	if m == nil || m.customProducts == nil {
		return
	}
	m.customProducts.Inc()
}

// SetActiveSessions publishes the current session count.
func (m *Storefront) SetActiveSessions(n int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveJob records one run of a background job.
func (m *Storefront) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil || m.jobDuration == nil || m.jobRuns == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
