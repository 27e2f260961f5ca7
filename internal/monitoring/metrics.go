package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the S3 Bucket Manager
var (
	// HTTP request metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3bm_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "s3bm_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "s3bm_active_connections",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// S3 operation metrics
	S3OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3bm_s3_operations_total",
			Help: "Total number of S3 operations",
		},
		[]string{"operation", "bucket", "status"},
	)

	S3OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "s3bm_s3_operation_duration_seconds",
			Help:    "S3 operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "bucket"},
	)

	// Vault metrics
	VaultRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s3bm_vault_requests_total",
			Help: "Total number of Vault secret reads",
		},
		[]string{"status"},
	)
)

// RecordS3Operation records metrics for a single S3 operation
func RecordS3Operation(operation, bucket, status string, duration time.Duration) {
	S3OperationsTotal.WithLabelValues(operation, bucket, status).Inc()
	S3OperationDuration.WithLabelValues(operation, bucket).Observe(duration.Seconds())
}

// RecordVaultRequest records the outcome of a Vault secret read
func RecordVaultRequest(status string) {
	VaultRequestsTotal.WithLabelValues(status).Inc()
}
