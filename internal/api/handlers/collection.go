package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder/internal/api/auth"
	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/storage/models"
	"github.com/cardbinder/cardbinder/internal/variant"
)

// QuantityResolver answers bulk per-card quantity lookups.
type QuantityResolver interface {
	Resolve(ctx context.Context, userID string, cardIDs []string) (collection.QuantityMap, error)
}

// Summarizer computes collection-wide statistics.
type Summarizer interface {
	Summarize(ctx context.Context, userID string, source collection.PricingSource) (*collection.Summary, error)
}

// ItemStore is the storage capability behind the single-card endpoints.
type ItemStore interface {
	GetCardItems(ctx context.Context, userID, cardID string) ([]*models.CollectionItem, error)
	UpsertItem(ctx context.Context, userID, cardID, variant string, quantity int) error
	DeleteItem(ctx context.Context, userID, cardID, variant string) error
}

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	resolver      QuantityResolver
	aggregator    Summarizer
	items         ItemStore
	defaultSource collection.PricingSource
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(resolver QuantityResolver, aggregator Summarizer, items ItemStore, defaultSource collection.PricingSource) *CollectionHandler {
	return &CollectionHandler{
		resolver:      resolver,
		aggregator:    aggregator,
		items:         items,
		defaultSource: defaultSource,
	}
}

// BulkQuantitiesRequest is the body of POST /collection/quantities.
type BulkQuantitiesRequest struct {
	CardIDs []string `json:"cardIds"`
}

// GetQuantitiesBulk returns owned quantities for up to 100 cards at once.
func (h *CollectionHandler) GetQuantitiesBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, auth.ErrSignInRequired)
		return
	}

	var req BulkQuantitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	quantities, err := h.resolver.Resolve(r.Context(), userID, req.CardIDs)
	switch {
	case errors.Is(err, collection.ErrNoCardIDs):
		response.BadRequest(w, errors.New("cardIds must contain at least one entry"))
		return
	case errors.Is(err, collection.ErrTooManyCardIDs):
		response.BadRequest(w, fmt.Errorf("cardIds must contain at most %d entries", collection.MaxBatchSize))
		return
	case err != nil:
		log.Printf("bulk quantity resolution failed: %v", err)
		response.InternalError(w)
		return
	}

	response.Success(w, quantities)
}

// QuantitiesDiscovery rejects GET on the bulk endpoint with a pointer to the
// supported calls. It is deliberately not a functional alias.
func (h *CollectionHandler) QuantitiesDiscovery(w http.ResponseWriter, _ *http.Request) {
	response.MethodNotAllowed(w,
		[]string{http.MethodPost},
		"POST a cardIds array to this endpoint, or GET /api/v1/collection/cards/{cardID} for a single card",
	)
}

// GetCollectionValue returns the collection summary under a pricing source.
func (h *CollectionHandler) GetCollectionValue(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, auth.ErrSignInRequired)
		return
	}

	source := h.defaultSource
	if raw := r.URL.Query().Get("source"); raw != "" {
		parsed, err := collection.ParseSource(raw)
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		source = parsed
	}

	summary, err := h.aggregator.Summarize(r.Context(), userID, source)
	if err != nil {
		log.Printf("collection summary failed for user %s: %v", userID, err)
		response.InternalError(w)
		return
	}

	response.Success(w, summary)
}

// CardQuantities is the shape of a single card's owned quantities.
type CardQuantities struct {
	CardID     string                    `json:"cardId"`
	Quantities map[variant.UIVariant]int `json:"quantities"`
}

// GetCard returns the owned quantities for one card.
func (h *CollectionHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, auth.ErrSignInRequired)
		return
	}

	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}

	items, err := h.items.GetCardItems(r.Context(), userID, cardID)
	if err != nil {
		log.Printf("card read failed for user %s: %v", userID, err)
		response.InternalError(w)
		return
	}

	quantities := make(map[variant.UIVariant]int, len(variant.All()))
	for _, v := range variant.All() {
		quantities[v] = 0
	}
	for _, item := range items {
		if v, ok := variant.ToUIVariant(item.Variant); ok {
			quantities[v] = item.Quantity
		}
	}

	response.Success(w, CardQuantities{CardID: cardID, Quantities: quantities})
}

// UpdateCardRequest is the body of PUT /collection/cards/{cardID}.
type UpdateCardRequest struct {
	Variant  string `json:"variant"`
	Quantity int    `json:"quantity"`
}

// PutCard records ownership of one (card, variant) key. A quantity of zero
// removes the row; zero owned and absent are the same thing.
func (h *CollectionHandler) PutCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, auth.ErrSignInRequired)
		return
	}

	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Quantity < 0 {
		response.BadRequest(w, errors.New("quantity cannot be negative"))
		return
	}

	storedCode, ok := variant.ToStoredCode(variant.UIVariant(req.Variant))
	if !ok {
		response.BadRequest(w, fmt.Errorf("unknown variant %q", req.Variant))
		return
	}

	var err error
	if req.Quantity == 0 {
		err = h.items.DeleteItem(r.Context(), userID, cardID, storedCode)
	} else {
		err = h.items.UpsertItem(r.Context(), userID, cardID, storedCode, req.Quantity)
	}
	if err != nil {
		log.Printf("card update failed for user %s: %v", userID, err)
		response.InternalError(w)
		return
	}

	response.Success(w, CardQuantities{
		CardID:     cardID,
		Quantities: map[variant.UIVariant]int{variant.UIVariant(req.Variant): req.Quantity},
	})
}
