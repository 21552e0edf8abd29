// Package api provides the REST API server for the collection tracker.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	jwtSecret     []byte
	defaultSource collection.PricingSource
	limiter       *clientLimiter

	resolver   *collection.Resolver
	aggregator *collection.Aggregator
	items      repository.ItemRepository
}

// Config holds configuration for the API server.
type Config struct {
	Port          int
	JWTSecret     []byte
	DefaultSource collection.PricingSource

	// RateLimitPerSec and RateLimitBurst bound requests per client IP.
	// A zero RateLimitPerSec disables rate limiting.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		DefaultSource:   collection.DefaultSource,
		RateLimitPerSec: 20,
		RateLimitBurst:  40,
	}
}

// NewServer creates a new API server wired to the given repositories.
func NewServer(cfg *Config, items repository.ItemRepository, prices repository.PriceRepository) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		router:        chi.NewRouter(),
		port:          cfg.Port,
		jwtSecret:     cfg.JWTSecret,
		defaultSource: cfg.DefaultSource,
		resolver:      collection.NewResolver(items),
		aggregator:    collection.NewAggregator(items, prices),
		items:         items,
	}
	if cfg.RateLimitPerSec > 0 {
		s.limiter = newClientLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}

	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the root handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
