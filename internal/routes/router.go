package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"transvalia/dispatch/internal/api"
	"transvalia/dispatch/internal/logging"
	"transvalia/dispatch/internal/metrics"
	"transvalia/dispatch/internal/middleware"
	"transvalia/dispatch/internal/services"
)

// RegisterRoutes assembles the chi router: global middleware, health check,
// and the three API groups (routes, records, vehicles).
func RegisterRoutes(svc *services.DispatchService, pinger api.Pinger, backend string, metricsReg *metrics.MetricsRegistry, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(pinger, backend, upSince))

	r.Route("/api", func(r chi.Router) {
		r.Route("/routes", func(r chi.Router) {
			r.Get("/", api.GetRoutesHandler(svc))
			r.Post("/", api.AddRouteHandler(svc))
			r.Delete("/{routeID}", api.DeleteRouteHandler(svc))
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", api.GetRecordsHandler(svc))
			r.Post("/", api.AddRecordHandler(svc))
			r.Put("/{recordID}", api.UpdateRecordHandler(svc))
			r.Delete("/{recordID}", api.DeleteRecordHandler(svc))
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", api.GetDriversHandler(svc))
			r.Post("/", api.SaveDriverHandler(svc))
		})
		r.Route("/tractors", func(r chi.Router) {
			r.Get("/", api.GetTractorsHandler(svc))
			r.Post("/", api.SaveTractorHandler(svc))
		})
		r.Route("/trailers", func(r chi.Router) {
			r.Get("/", api.GetTrailersHandler(svc))
			r.Post("/", api.SaveTrailerHandler(svc))
		})
		r.Route("/vans", func(r chi.Router) {
			r.Get("/", api.GetVansHandler(svc))
			r.Post("/", api.SaveVanHandler(svc))
		})
	})

	return r
}
