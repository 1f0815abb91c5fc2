package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"quizdeck/internal/config"
	"quizdeck/internal/customdomains"
	"quizdeck/internal/domains"
	"quizdeck/internal/metrics"
	"quizdeck/internal/presence"
	"quizdeck/internal/quizzes"
	"quizdeck/internal/session"
)

// Services bundles the application services the router wires up.
type Services struct {
	Sessions      *session.Manager
	Google        googleAuthenticator
	Presence      *presence.Service
	Domains       *domains.Service
	CustomDomains *customdomains.Service
	Quizzes       *quizzes.Service
}

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, svcs Services, registry *prometheus.Registry, recorder metrics.Recorder, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))
	if recorder != nil {
		r.Use(newMetricsMiddleware(recorder))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	}

	oauthHandler := NewOAuthHandler(svcs.Google, svcs.Sessions, recorder, cfg.FrontendOrigin, cfg.Environment, logger)
	presenceHandler := NewPresenceHandler(svcs.Presence, recorder, logger)
	domainHandler := NewDomainHandler(svcs.Domains, logger)
	customDomainHandler := NewCustomDomainHandler(svcs.CustomDomains, logger)
	quizHandler := NewQuizHandler(svcs.Quizzes, quizzes.NewCSVExporter(), logger)

	if svcs.Google == nil {
		logger.Warn("google login disabled; auth endpoints will answer 503")
	}

	requireSession := newSessionAuthMiddleware(svcs.Sessions, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/google", oauthHandler.InitiateGoogle)
			r.Get("/google/callback", oauthHandler.CallbackGoogle)
			r.Get("/logout", oauthHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/me", oauthHandler.Me)
			})
		})

		r.Route("/presence", func(r chi.Router) {
			r.Post("/", presenceHandler.Heartbeat)
			r.Post("/away", presenceHandler.Away)
			r.Get("/", presenceHandler.ListOnline)
		})

		r.Route("/domains", func(r chi.Router) {
			r.Get("/", domainHandler.List)
			r.Get("/{id}", domainHandler.Get)

			// Mutations require an authenticated session.
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/create", domainHandler.Create)
				r.Put("/{id}", domainHandler.Update)
				r.Delete("/{id}", domainHandler.Delete)
			})
		})

		r.Route("/custom-domains", func(r chi.Router) {
			r.Get("/user/{userId}", customDomainHandler.ListByUser)
			r.Get("/{id}", customDomainHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", customDomainHandler.Create)
				r.Put("/{id}", customDomainHandler.Update)
				r.Delete("/{id}", customDomainHandler.Delete)
			})
		})

		r.Route("/quiz-sessions", func(r chi.Router) {
			r.Post("/", quizHandler.Record)
			r.Get("/performance/{domainId}", quizHandler.Performance)
			r.Get("/export/{domainId}", quizHandler.Export)
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
