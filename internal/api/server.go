// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/coursio/internal/catalog/course"
	"github.com/taibuivan/coursio/internal/commerce/payment"
	"github.com/taibuivan/coursio/internal/platform/config"
	"github.com/taibuivan/coursio/internal/platform/constants"
	"github.com/taibuivan/coursio/internal/platform/middleware"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/internal/users/account"
	"github.com/taibuivan/coursio/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler; it returns 200 whenever the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; it returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login, and token refresh for both namespaces.
	Auth *auth.Handler

	// Account handles profiles and the learner course library.
	Account *account.Handler

	// Course handles catalogue discovery, management, and reviews.
	Course *course.Handler

	// Payment handles checkout, order history, and the provider webhook.
	Payment *payment.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// # Namespaces
//
// The /admins and /users route groups carry the same auth and profile
// surface, each bound to exactly one role. Credentials registered under
// one namespace never authenticate the other.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Static Assets
	// Uploaded course cover images served straight from disk.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/admins", func(admins chi.Router) {
			h.Auth.Register(admins, sec.RoleAdmin)
			h.Account.Register(admins, sec.RoleAdmin)
		})
		api.Route("/users", func(users chi.Router) {
			h.Auth.Register(users, sec.RoleUser)
			h.Account.Register(users, sec.RoleUser)
		})
		api.Mount("/courses", h.Course.Routes())
		api.Mount("/payments", h.Payment.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
