package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder/internal/api/auth"
	"github.com/cardbinder/cardbinder/internal/api/handlers"
	"github.com/cardbinder/cardbinder/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning, no auth)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.jwtSecret))

		collectionHandler := handlers.NewCollectionHandler(s.resolver, s.aggregator, s.items, s.defaultSource)
		r.Route("/collection", func(r chi.Router) {
			r.Post("/quantities", collectionHandler.GetQuantitiesBulk)
			r.Get("/quantities", collectionHandler.QuantitiesDiscovery) // explicit 405 with a hint
			r.Get("/value", collectionHandler.GetCollectionValue)
			r.Get("/cards/{cardID}", collectionHandler.GetCard)
			r.Put("/cards/{cardID}", collectionHandler.PutCard)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "cardbinder-api",
	})
}
