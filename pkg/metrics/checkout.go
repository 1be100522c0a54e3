package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes reported on checkout_total.
const (
	OutcomeSuccess           = "success"
	OutcomeUnauthorized      = "unauthorized"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
)

// CheckoutMetrics records cart mutations, checkout outcomes and store retries.
type CheckoutMetrics struct {
	duration      *prometheus.HistogramVec
	checkouts     *prometheus.CounterVec
	cartMutations *prometheus.CounterVec
	storeRetries  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart line mutations by operation.",
	}, []string{"op"})
	storeRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_retries_total",
		Help: "Store round-trips retried after a transient failure.",
	})
	reg.MustRegister(duration, checkouts, cartMutations, storeRetries)
	return &CheckoutMetrics{
		duration:      duration,
		checkouts:     checkouts,
		cartMutations: cartMutations,
		storeRetries:  storeRetries,
	}
}

// ObserveCheckout records the duration and outcome of one checkout attempt.
func (c *CheckoutMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil || c.checkouts == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
	c.checkouts.WithLabelValues(outcome).Inc()
}

// IncCartMutation increments the mutation counter for the named operation.
func (c *CheckoutMetrics) IncCartMutation(op string) {
	if c == nil || c.cartMutations == nil {
		return
	}
	c.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncStoreRetry counts one retried store round-trip.
func (c *CheckoutMetrics) IncStoreRetry() {
	if c == nil || c.storeRetries == nil {
		return
	}
	c.storeRetries.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
