package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/isdelr/leadgate-be/internal/api/handlers"
	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/metrics"
	"github.com/isdelr/leadgate-be/internal/services"
	"github.com/isdelr/leadgate-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Users    services.UserServiceProvider
	Resets   services.PasswordResetServiceProvider
	Scraping services.ScrapingServiceProvider
	Events   services.EventServiceProvider
	Tokens   *auth.TokenManager
	Resolver *auth.Resolver
	Hub      *websocket.Hub
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer

	// AuthRateLimit caps credential requests per IP per minute. Zero disables it.
	AuthRateLimit int
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}

	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// Extension and dashboard clients run on arbitrary origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// One limiter shared by both mounts so the prefix cannot double the budget.
	limit := func(next http.Handler) http.Handler { return next }
	if deps.AuthRateLimit > 0 {
		limit = httprate.LimitByIP(deps.AuthRateLimit, time.Minute)
	}

	// The extension calls <base>/api/...; the admin dashboard calls the bare paths.
	r.Mount("/api", apiRoutes(deps, limit))
	r.Mount("/", apiRoutes(deps, limit))

	return r
}

func apiRoutes(deps Dependencies, limit func(http.Handler) http.Handler) chi.Router {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Resets, deps.Tokens, deps.Metrics)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Tokens, deps.Metrics)
	scrapingHandler := handlers.NewScrapingHandler(deps.Scraping, deps.Metrics)
	eventHandler := handlers.NewEventHandler(deps.Events)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Resolver)

	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})
		r.With(deps.Resolver.RequireAuth).Post("/verify", authHandler.Verify)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(limit).Post("/login", adminHandler.Login)
		r.Get("/ws", wsHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(deps.Resolver.RequireAdmin)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users/{id}/approve", adminHandler.Approve)
			r.Post("/users/{id}/revoke", adminHandler.Revoke)
			r.Delete("/users/{id}/delete", adminHandler.Delete)
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	r.Route("/scraping", func(r chi.Router) {
		r.Use(deps.Resolver.RequireAuth)
		r.Post("/log", scrapingHandler.Log)
		r.Get("/sessions", scrapingHandler.ListSessions)
	})

	return r
}
