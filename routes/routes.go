package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/dockwall/dockwall/app"
	"github.com/dockwall/dockwall/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for the admin API; the plugin endpoints are called by the
	// runtime itself, never a browser.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Decision-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// Docker authorization plugin protocol
	r.Post("/Plugin.Activate", handlers.PluginActivateHandler(deps))
	r.Post("/AuthZPlugin.AuthZReq", handlers.AuthZRequestHandler(deps))
	r.Post("/AuthZPlugin.AuthZRes", handlers.AuthZResponseHandler(deps))

	// Admin API (require admin role)
	r.Route("/api/v1/config", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(deps.AuthMiddleware.RequireRole("admin"))
		r.Get("/", handlers.GetConfigHandler(deps))
		r.Post("/reload", handlers.ReloadConfigHandler(deps))
	})

	return r
}
