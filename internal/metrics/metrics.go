package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roombooking"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total count of HTTP requests processed by route and status.",
	}, []string{"route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Bookings inserted.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_cancelled_total",
		Help:      "Bookings deleted.",
	})

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Booking requests rejected because the resource was taken.",
	})

	// WriteFailures is labelled by store operation.
	WriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_failures_total",
		Help:      "Writes that affected no rows or failed.",
	}, []string{"op"})

	ShadowWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shadow_write_failures_total",
		Help:      "Failed best-effort writes to the shadow table.",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Query memo hits by key.",
	}, []string{"key"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Query memo misses by key.",
	}, []string{"key"})

	DroppedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_rows_total",
		Help:      "Booking rows skipped because of malformed timestamps.",
	})

	ImportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imported_rows_total",
		Help:      "Rows applied by the spreadsheet importer by table.",
	}, []string{"table"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	PushesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pushes_sent_total",
		Help:      "Web push deliveries by outcome.",
	}, []string{"outcome"})
)
