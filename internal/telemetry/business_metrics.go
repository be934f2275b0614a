package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
// All metrics include a shop label for per-merchant dashboard segmentation.
type BusinessMetrics struct {
	// Webhook ingress
	WebhookReceived *prometheus.CounterVec
	WebhookInvalid  *prometheus.CounterVec
	WebhookLatency  *prometheus.HistogramVec

	// Order processing outcomes
	OrdersProcessed *prometheus.CounterVec
	OrdersFailed    *prometheus.CounterVec
	OrdersSkipped   *prometheus.CounterVec
	OrderValue      *prometheus.HistogramVec
	CODOrders       *prometheus.CounterVec

	// Address resolution
	ResolutionFailures *prometheus.CounterVec
	PickupCacheHits    *prometheus.CounterVec
	PickupCacheMisses  *prometheus.CounterVec

	// Courier API
	EstimateFailures  *prometheus.CounterVec
	CourierAPILatency *prometheus.HistogramVec

	// Queue
	OrdersEnqueued *prometheus.CounterVec
	QueueFailures  *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "tawseel"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		// =======================================================================
		// Webhook Ingress
		// =======================================================================
		WebhookReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_received_total",
				Help:      "Total webhooks received",
			},
			[]string{"shop", "topic"},
		),
		WebhookInvalid: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_invalid_total",
				Help:      "Total webhooks rejected before processing",
			},
			[]string{"shop", "reason"}, // reason: bad_signature, bad_payload, missing_shop
		),
		WebhookLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_ack_seconds",
				Help:      "Time to acknowledge a webhook (excludes async processing)",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"shop", "topic"},
		),

		// =======================================================================
		// Order Processing
		// =======================================================================
		OrdersProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_processed_total",
				Help:      "Total orders successfully submitted to the courier",
			},
			[]string{"shop"},
		),
		OrdersFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_failed_total",
				Help:      "Total order processing failures",
			},
			[]string{"shop", "error_code"},
		),
		OrdersSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_skipped_total",
				Help:      "Total orders short-circuited by the idempotency ledger",
			},
			[]string{"shop"},
		),
		OrderValue: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order value distribution in the order's currency",
				Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"shop", "currency"},
		),
		CODOrders: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cod_orders_total",
				Help:      "Total orders classified as cash on delivery",
			},
			[]string{"shop"},
		),

		// =======================================================================
		// Address Resolution
		// =======================================================================
		ResolutionFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolution_failures_total",
				Help:      "Total address components that could not be resolved",
			},
			[]string{"shop", "component"}, // component: block, road, building
		),
		PickupCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pickup_cache_hits_total",
				Help:      "Total pickup location cache hits",
			},
			[]string{"shop"},
		),
		PickupCacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pickup_cache_misses_total",
				Help:      "Total pickup location cache misses",
			},
			[]string{"shop"},
		),

		// =======================================================================
		// Courier API
		// =======================================================================
		EstimateFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "estimate_failures_total",
				Help:      "Total shipping estimate failures (non-fatal)",
			},
			[]string{"shop"},
		),
		CourierAPILatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "courier_api_duration_seconds",
				Help:      "Courier API call duration (differentiates app slowness from courier issues)",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"}, // operation: estimate, create, track, master_data
		),

		// =======================================================================
		// Queue
		// =======================================================================
		OrdersEnqueued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_enqueued_total",
				Help:      "Total orders enqueued for async processing",
			},
			[]string{"shop"},
		),
		QueueFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_failures_total",
				Help:      "Total queue publish or consume failures",
			},
			[]string{"stage"}, // stage: publish, consume, decode
		),
	}

	return m
}

// Global instance for easy access from handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
