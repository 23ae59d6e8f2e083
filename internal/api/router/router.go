// Package router assembles the HTTP surface: public auth endpoints,
// authenticated profile and contact-book endpoints, plus health and
// metrics.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tanvirio/contactbook/internal/auth"
	"github.com/tanvirio/contactbook/internal/contacts"
	httpmiddleware "github.com/tanvirio/contactbook/internal/http/middleware"
	"github.com/tanvirio/contactbook/internal/profile"
	"github.com/tanvirio/contactbook/internal/stats"
	"github.com/tanvirio/contactbook/internal/users"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	AuthHandler     *auth.Handler
	ContactsHandler *contacts.Handler
	ProfileHandler  *profile.Handler
	StatsHandler    *stats.Handler

	// Token validation for the authenticated group.
	Tokens *auth.TokenManager
	Users  users.Repository

	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Credential endpoints are public but rate limited per IP.
	r.Route("/api/auth", func(ar chi.Router) {
		if cfg.AuthRateLimitRPS > 0 {
			ar.Use(httpmiddleware.RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst))
		}
		ar.Post("/register", cfg.AuthHandler.Register)
		ar.Post("/login", cfg.AuthHandler.Login)
		ar.Post("/refresh-token", cfg.AuthHandler.Refresh)

		ar.Group(func(authed chi.Router) {
			authed.Use(httpmiddleware.Authenticate(cfg.Tokens, cfg.Users, cfg.Logger))
			authed.Post("/change-password", cfg.AuthHandler.ChangePassword)
		})
	})

	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.Authenticate(cfg.Tokens, cfg.Users, cfg.Logger))

		authed.Route("/api/profile", func(pr chi.Router) {
			pr.Get("/", cfg.ProfileHandler.Get)
			pr.Patch("/", cfg.ProfileHandler.Update)
			if cfg.StatsHandler != nil {
				pr.Get("/stats", cfg.StatsHandler.Get)
			}
		})

		authed.Route("/api/contacts", func(cr chi.Router) {
			cr.Post("/", cfg.ContactsHandler.Add)
			cr.Get("/", cfg.ContactsHandler.List)
			cr.Get("/search", cfg.ContactsHandler.List)
			cr.Patch("/{id}", cfg.ContactsHandler.Update)
			cr.Delete("/{id}", cfg.ContactsHandler.Delete)
		})
	})

	return r
}
