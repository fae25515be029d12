// Package api provides the HTTP API server and handlers for the Gatherly dashboard and sites.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/blob"
	"github.com/gatherly/gatherly-server/internal/sse"
	"github.com/gatherly/gatherly-server/internal/store"
)

// Options carries the optional collaborators and settings of the server.
type Options struct {
	Tokens *auth.TokenService
	// GitHub is nil when GitHub sign-in is not configured.
	GitHub GitHubSignIn
	// Blobs is set when uploads are kept on local disk and served by this process.
	Blobs *blob.Local
	SSE   *sse.Manager

	AllowedOrigins   []string
	LoginRedirectURL string
	SecureCookies    bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	opts            Options
	sseHandler      *sse.Handler
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:           st,
		services:        services,
		opts:            opts,
		router:          router,
		logger:          logger,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
	}
	if opts.SSE != nil {
		s.sseHandler = sse.NewHandler(opts.SSE, logger)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Gatherly API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Stop releases background resources held by the server.
func (s *Server) Stop() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.opts.Tokens))
}

// setupRoutes registers huma operations and the plain chi routes that
// huma cannot model (form uploads, redirects, streams, files).
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerCommunityRoutes()
	s.registerEventRoutes()
	s.registerUserRoutes()
	s.registerSiteRoutes()

	s.router.Post("/api/v1/communities/{id}/fields/{key}", s.handleCommunityField)
	s.router.Post("/api/v1/events/{id}/fields/{key}", s.handleEventField)
	s.router.Post("/api/v1/users/me/fields/{key}", s.handleUserField)

	limited := s.router.With(RateLimitMiddleware(s.authRateLimiter, s.logger))
	limited.Get("/api/v1/auth/github/login", s.handleGitHubLogin)
	limited.Get("/api/v1/auth/github/callback", s.handleGitHubCallback)
	s.router.Post("/api/v1/auth/logout", s.handleLogout)

	if s.sseHandler != nil {
		s.router.Get("/api/v1/stream", s.sseHandler.ServeHTTP)
	}
	if s.opts.Blobs != nil {
		s.router.Get("/blobs/{name}", s.handleServeBlob)
	}
}
