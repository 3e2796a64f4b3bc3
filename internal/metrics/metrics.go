// Package metrics exposes Prometheus collectors for HTTP traffic and domain
// operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders created by checkout",
		},
		[]string{"store"},
	)

	checkoutFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_failures_total",
			Help: "Total number of rejected checkouts by reason code",
		},
		[]string{"reason"},
	)

	fittingTransfersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_fitting_transfers_total",
			Help: "Total number of fitting carts transferred into virtual carts",
		},
	)

	fittingLinesMergedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_fitting_lines_merged_total",
			Help: "Total number of cart lines added by fitting cart transfers",
		},
	)

	inventoryAdjustmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_inventory_adjustments_total",
			Help: "Total number of inventory adjustments by result",
		},
		[]string{"result"},
	)

	cartsReapedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_carts_reaped_total",
			Help: "Total number of expired carts removed by the reaper",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(ordersCreatedTotal)
	prometheus.MustRegister(checkoutFailuresTotal)
	prometheus.MustRegister(fittingTransfersTotal)
	prometheus.MustRegister(fittingLinesMergedTotal)
	prometheus.MustRegister(inventoryAdjustmentsTotal)
	prometheus.MustRegister(cartsReapedTotal)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency. It must wrap the ServeMux
// directly so the matched route pattern is visible after the call.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOrderCreated counts a successful checkout.
func RecordOrderCreated(storeID string) {
	ordersCreatedTotal.WithLabelValues(storeID).Inc()
}

// RecordCheckoutFailure counts a rejected checkout.
func RecordCheckoutFailure(reason string) {
	checkoutFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordFittingTransfer counts a completed transfer and the lines it added.
func RecordFittingTransfer(linesAdded int) {
	fittingTransfersTotal.Inc()
	fittingLinesMergedTotal.Add(float64(linesAdded))
}

// RecordInventoryAdjustment counts an adjustment attempt ("applied" or a rejection code).
func RecordInventoryAdjustment(result string) {
	inventoryAdjustmentsTotal.WithLabelValues(result).Inc()
}

// RecordCartsReaped counts carts removed by the reaper.
func RecordCartsReaped(kind string, n int64) {
	if n > 0 {
		cartsReapedTotal.WithLabelValues(kind).Add(float64(n))
	}
}
