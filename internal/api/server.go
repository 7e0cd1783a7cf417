// Package api provides the HTTP API server and handlers for the
// StorySphere platform.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storysphere/storysphere-server/internal/http/response"
	"github.com/storysphere/storysphere-server/internal/ratelimit"
	"github.com/storysphere/storysphere-server/internal/store"
	"github.com/storysphere/storysphere-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *store.Store
	services  *Services
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
}

// NewServer creates the HTTP server with all routes configured. A nil
// limiter disables rate limiting.
func NewServer(st *store.Store, services *Services, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("StorySphere API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s := &Server{
		store:     st,
		services:  services,
		router:    router,
		validator: validation.New(),
		limiter:   limiter,
		logger:    logger,
	}

	s.setupMiddleware()

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerStoryRoutes()
	s.registerTagRoutes()
	s.registerUserRoutes()
	s.registerBookmarkRoutes()
	s.registerCommentRoutes()
	s.registerDraftRoutes()
	s.registerSearchRoutes()
	s.registerAnalyticsRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", headerUserID},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

// registerHealthRoutes wires the liveness endpoint. Plain chi rather
// than huma so probes skip the envelope machinery.
func (s *Server) registerHealthRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"}, s.logger)
	})
}
