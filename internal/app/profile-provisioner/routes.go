// Package profileprovisioner предоставляет маршруты для основного приложения.
package profileprovisioner

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	healthhandler "github.com/magabrotheeeer/profile-provisioner/internal/http/handlers/health"
	provisionhandler "github.com/magabrotheeeer/profile-provisioner/internal/http/handlers/provision"
	"github.com/magabrotheeeer/profile-provisioner/internal/http/middlewarectx"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, decoder provisionhandler.Decoder,
	provisionService provisionhandler.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/hooks/users", provisionhandler.New(logger, decoder, provisionService).ServeHTTP)
		})

		r.Get("/health", healthhandler.New(logger).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
