package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method, path and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// OrdersTotal counts submitted commands by action and symbol.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_orders_total",
			Help: "Total number of order commands by action",
		},
		[]string{"action", "symbol"},
	)

	// TradesTotal counts executed trades.
	TradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_trades_total",
			Help: "Total number of trades by symbol",
		},
		[]string{"symbol"},
	)

	// QueueDepth tracks the per-symbol command queue occupancy.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_queue_depth",
			Help: "Current number of commands waiting in the engine queue",
		},
		[]string{"symbol"},
	)

	// CommandDuration tracks how long the engine goroutine spends per command.
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_command_duration_seconds",
			Help:    "Engine command handling duration in seconds",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"symbol"},
	)

	// SubmitRejections counts admission failures surfaced to submitters.
	SubmitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_submit_rejections_total",
			Help: "Commands rejected at submission by reason",
		},
		[]string{"symbol", "reason"},
	)
)

// GinMiddleware records request metrics.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
