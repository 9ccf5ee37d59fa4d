package handler

import (
	"net/http"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/observability"
	"github.com/distrisur/pedidos-go/internal/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps bundles everything the router needs.
type Deps struct {
	Chat    *ChatHandler
	Webhook *WebhookHandler
	Auth    *AuthHandler
	Admin   *AdminHandler
	AuthMW  func(http.Handler) http.Handler
	Catalog port.CatalogStore
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Catalog, d.Logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", d.Chat.HandleChat)

		if d.Webhook != nil {
			r.Post("/webhook/telegram", d.Webhook.HandleTelegram)
		}

		r.Post("/auth/login", d.Auth.HandleLogin)

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.AuthMW)
			r.Get("/orders", d.Admin.HandleListOrders)
			r.Get("/orders/{orderID}", d.Admin.HandleGetOrder)
			r.Get("/clients", d.Admin.HandleListClients)
			r.Get("/categories", d.Admin.HandleListCategories)
			r.Get("/products", d.Admin.HandleListProducts)
			r.Get("/stats", d.Admin.HandleGetStats)
		})
	})

	return r
}

func healthzHandler(catalog port.CatalogStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pedidos-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		_, err := catalog.ListCategories(ctx)
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			status = "degraded"
			logger.Warn("healthz: catalog probe failed", zap.Error(err))
		}
		services = append(services, domain.ServiceHealth{
			Name: "catalog", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
