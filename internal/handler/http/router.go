package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commercekit/fulfillment/pkg/health"
	"github.com/commercekit/fulfillment/pkg/middleware"
)

// RouterConfig carries the dependencies the router wires together.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string
	Health      *health.Handler
	Orders      *OrderHandler
	Stock       *StockHandler
	Bonus       *BonusHandler
	CORS        middleware.CORSConfig
}

// NewRouter builds the chi router with the full middleware chain:
// recovery, correlation logging, tracing, request-scoped logger, metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	cfg.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RequireOrganization)
		r.Use(Identity)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.Orders.Create)
			r.Get("/", cfg.Orders.List)
			r.Get("/{orderID}", cfg.Orders.Get)
			r.Patch("/{orderID}/complete", cfg.Orders.Complete)
			r.Patch("/{orderID}/cancel", cfg.Orders.Cancel)
		})

		r.Get("/stock/{variantID}/locations/{locationID}", cfg.Stock.Get)
		r.Get("/bonus-ledger/{userID}", cfg.Bonus.Get)
	})

	return r
}
