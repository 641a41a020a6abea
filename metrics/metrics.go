package metrics

import (
	"strconv"
	"sync"
	"time"

	"stockroom-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Inventory metrics
	StockMutationsTotal  *prometheus.CounterVec
	ProductsCreatedTotal prometheus.Counter
	QRUploadsTotal       *prometheus.CounterVec

	// Live feed
	LiveClientsGauge prometheus.Gauge

	once sync.Once
)

// InitMetrics registers every collector once. Later calls are no-ops.
func InitMetrics(cfg *config.Config) {
	once.Do(func() {
		namespace := cfg.Metrics.Prefix

		HttpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		StockMutationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_mutations_total",
				Help:      "Stock mutations by action and outcome",
			},
			[]string{"action", "outcome"},
		)

		ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Total number of products created",
		})

		QRUploadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "qr_uploads_total",
				Help:      "QR image uploads by outcome",
			},
			[]string{"outcome"},
		)

		LiveClientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_feed_clients",
			Help:      "Number of connected live feed clients",
		})
	})
}

// Middleware records count and latency per route template
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		if HttpRequestsTotal == nil {
			return err
		}

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		path := c.Route().Path
		code := strconv.Itoa(status)

		HttpRequestsTotal.WithLabelValues(method, path, code).Inc()
		HttpRequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the default registry in the Prometheus text format
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RecordStockMutation counts one mutation attempt
func RecordStockMutation(action, outcome string) {
	if StockMutationsTotal == nil {
		return
	}
	StockMutationsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordProductCreated() {
	if ProductsCreatedTotal == nil {
		return
	}
	ProductsCreatedTotal.Inc()
}

func RecordQRUpload(outcome string) {
	if QRUploadsTotal == nil {
		return
	}
	QRUploadsTotal.WithLabelValues(outcome).Inc()
}

// SetLiveClients reports the current number of websocket subscribers
func SetLiveClients(n int) {
	if LiveClientsGauge == nil {
		return
	}
	LiveClientsGauge.Set(float64(n))
}
