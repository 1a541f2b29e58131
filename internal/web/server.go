// Package web provides the HTTP server and handlers for the club website API.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mkarpin/clubsite/internal/club"
	"github.com/mkarpin/clubsite/internal/config"
	"github.com/mkarpin/clubsite/internal/web/middleware"
)

// Server is the HTTP server for the club website backend.
type Server struct {
	service *club.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *club.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Uploaded homework images are served straight from disk.
	uploads := http.FileServer(http.Dir(s.service.UploadsDir()))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", uploads))

	s.router.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/news", s.handleListNews)
		r.Get("/events", s.handleListEvents)
		r.Get("/homework", s.handleListHomework)
		r.Get("/members", s.handleListMembers)
		r.Get("/settings/{key}", s.handleGetSetting)

		// Password gate check used by the admin page
		r.Post("/login", s.handleLogin)

		// Admin-gated mutations
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminGate(&s.cfg.Security))

			r.Post("/news", s.handleCreateNews)
			r.Delete("/news/{id}", s.handleDeleteNews)

			r.Post("/events", s.handleCreateEvent)
			r.Delete("/events/{id}", s.handleDeleteEvent)

			r.Post("/homework", s.handleUploadHomework)
			r.Delete("/homework/{id}", s.handleDeleteHomework)

			r.Put("/settings/{key}", s.handlePutSetting)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// securityHeaders sets baseline security headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
