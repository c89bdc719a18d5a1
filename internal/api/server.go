// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of the club site: public content
// endpoints, the registration form and the admin content operations.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/umrunclub/clubsite/internal/config"
	"github.com/umrunclub/clubsite/internal/events"
	"github.com/umrunclub/clubsite/internal/log"
	"github.com/umrunclub/clubsite/internal/registration"
	"github.com/umrunclub/clubsite/internal/routes"
)

// Server wires the repositories to the HTTP routes. All dependencies are
// injected at construction; the server owns no storage lifecycle.
type Server struct {
	cfg    config.AppConfig
	routes *routes.Repository
	events *events.Repository
	regs   *registration.Repository
	logger zerolog.Logger
}

// New creates the API server.
func New(cfg config.AppConfig, rr *routes.Repository, er *events.Repository, gr *registration.Repository) *Server {
	return &Server{
		cfg:    cfg,
		routes: rr,
		events: er,
		regs:   gr,
		logger: log.WithComponent("api"),
	}
}

// Router assembles the chi router with middleware and all endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(countRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/routes", s.handleListRoutes)
		r.Post("/routes", s.handleAddRoute)
		r.Put("/routes", s.handleUpdateRoute)
		r.Delete("/routes", s.handleDeleteRoute)
		r.Get("/upcoming-route", s.handleUpcomingRoute)

		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleAddEvent)
		r.Put("/events", s.handleUpdateEvent)
		r.Delete("/events", s.handleDeleteEvent)

		r.Get("/export", s.handleExport)

		// Form submissions and login attempts are rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, time.Minute))
			r.Post("/register", s.handleRegister)
			r.Post("/auth", s.handleAuth)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
