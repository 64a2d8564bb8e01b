// Package metrics colectores Prometheus de la API: peticiones HTTP, movimientos del ledger,
// caché de listados y relay de eventos.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores sobre un registry propio.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	stockMovements  *prometheus.CounterVec
	stockRejections prometheus.Counter
	cacheRequests   *prometheus.CounterVec
	outboxPublished prometheus.Counter
}

// New registra los colectores de la aplicación más los de runtime Go y proceso.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "erp_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		stockMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_stock_movements_total",
				Help: "Movimientos de stock confirmados por motivo",
			},
			[]string{"reason"},
		),
		stockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "erp_stock_rejections_total",
			Help: "Movimientos rechazados por stock insuficiente",
		}),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_cache_requests_total",
				Help: "Lecturas de la caché de listados por resultado",
			},
			[]string{"result"},
		),
		outboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "erp_outbox_published_total",
			Help: "Eventos de stock publicados por el relay",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.stockMovements,
		m.stockRejections,
		m.cacheRequests,
		m.outboxPublished,
	)
	return m
}

// Registry registry con todos los colectores.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware mide cada petición etiquetando por ruta registrada (no por path concreto).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			// el status real lo fija el ErrorHandler de la app
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		status := c.Response().StatusCode()
		m.httpLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return nil
	}
}

// MovementCommitted cuenta un movimiento confirmado.
func (m *Metrics) MovementCommitted(reason string) {
	m.stockMovements.WithLabelValues(reason).Inc()
}

// MovementRejected cuenta un rechazo por stock insuficiente.
func (m *Metrics) MovementRejected() { m.stockRejections.Inc() }

func (m *Metrics) CacheHit()  { m.cacheRequests.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.cacheRequests.WithLabelValues("miss").Inc() }

// OutboxPublished suma n eventos publicados.
func (m *Metrics) OutboxPublished(n int) { m.outboxPublished.Add(float64(n)) }
