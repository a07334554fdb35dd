package api

import (
	"log/slog"
	"net/http"
	"time"

	"customer-service/internal/api/handler"
	mw "customer-service/internal/api/middleware"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"

	_ "customer-service/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	defaultRequestTimeout = 60 * time.Second
	customerIDPath        = "/customers/{customerID:[0-9]+}"
)

// Router is the HTTP handler plus the background resources its middleware owns.
type Router struct {
	*chi.Mux
	rateLimiter *mw.RateLimiterMiddleware
}

// Close stops background work started by the middleware.
func (rt *Router) Close() {
	rt.rateLimiter.Stop()
}

func SetupRouter(customerService customer.CustomerService, cfg *config.Config, logger *slog.Logger) *Router {
	router := chi.NewRouter()
	rt := &Router{
		Mux:         router,
		rateLimiter: mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger),
	}

	setupMiddleware(router, rt.rateLimiter, cfg, logger)
	router.NotFound(handler.NotFound)
	router.MethodNotAllowed(handler.MethodNotAllowed)

	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)
	router.Get("/", handler.Index)
	setupCustomerRoutes(router, customerService, logger)

	return rt
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, cfg *config.Config, logger *slog.Logger) {
	requestTimeout := cfg.Server.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	router.Use(middleware.RequestID)
	// The limiter keys on the peer address, so it must run before RealIP rewrites RemoteAddr.
	router.Use(rateLimiter.Middleware)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

// setupCustomerRoutes registers flat routes so a method mismatch on any customer path yields 405
// and a non-numeric id yields 404.
func setupCustomerRoutes(router *chi.Mux, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)
	requireJSON := mw.RequireJSON(logger)

	router.With(requireJSON).Post("/customers", h.CreateCustomer)
	router.Get("/customers", h.ListCustomers)
	router.Get(customerIDPath, h.GetCustomer)
	router.With(requireJSON).Put(customerIDPath, h.UpdateCustomer)
	router.Delete(customerIDPath, h.DeleteCustomer)
	router.Put(customerIDPath+"/activate", h.ActivateCustomer)
	router.Put(customerIDPath+"/deactivate", h.DeactivateCustomer)
}
