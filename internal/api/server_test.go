package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

var testSecret = []byte("test-secret")

func TestNewServer_NilConfig(t *testing.T) {
	server := NewServer(nil, nil, nil)

	if server == nil {
		t.Fatal("NewServer returned nil with nil config")
	}
	if server.port != 8080 {
		t.Errorf("Expected default port 8080, got %d", server.port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.DefaultSource != collection.SourceTCGPlayer {
		t.Errorf("Expected tcgplayer default source, got %s", cfg.DefaultSource)
	}
}

func TestServer_Port(t *testing.T) {
	server := NewServer(&Config{Port: 9999}, nil, nil)

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

// setupTestServer wires a server to an in-memory database.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := `
		CREATE TABLE collection_items (
			user_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			variant TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, card_id, variant)
		);
		CREATE TABLE card_prices (
			card_id TEXT NOT NULL,
			source TEXT NOT NULL,
			amount TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (card_id, source)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	items := repository.NewItemRepository(db)
	prices := repository.NewPriceRepository(db)
	ctx := context.Background()

	if err := items.UpsertItem(ctx, "user-1", "card-a", "holofoil", 3); err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	if err := items.UpsertItem(ctx, "user-1", "card-a", "normal", 2); err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	if err := prices.UpsertPrice(ctx, "card-a", "tcgplayer", decimal.RequireFromString("2.00")); err != nil {
		t.Fatalf("failed to seed price: %v", err)
	}

	cfg := DefaultConfig()
	cfg.JWTSecret = testSecret
	cfg.RateLimitPerSec = 0 // keep tests deterministic
	return NewServer(cfg, items, prices)
}

func bearerToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestHealthCheckNeedsNoAuth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestQuantitiesRequiresAuth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/collection/quantities", strings.NewReader(`{"cardIds":["card-a"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestQuantitiesEndToEnd(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/collection/quantities", strings.NewReader(`{"cardIds":["card-a","card-b"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool                      `json:"success"`
		Data    map[string]map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !envelope.Success {
		t.Error("expected success=true")
	}
	if envelope.Data["card-a"]["holo"] != 3 || envelope.Data["card-a"]["normal"] != 2 {
		t.Errorf("unexpected card-a quantities: %v", envelope.Data["card-a"])
	}
	if row, ok := envelope.Data["card-b"]; !ok {
		t.Error("unowned requested card must still be present")
	} else {
		for v, qty := range row {
			if qty != 0 {
				t.Errorf("expected all-zero row for card-b, got %s=%d", v, qty)
			}
		}
	}
}

func TestQuantitiesGetGivesDiscoveryHint(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection/quantities", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hint") {
		t.Errorf("expected a discovery hint, got %s", rec.Body.String())
	}
}

func TestCollectionValueEndToEnd(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection/value", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data collection.Summary `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data.TotalDistinctCards != 1 {
		t.Errorf("expected 1 distinct card, got %d", envelope.Data.TotalDistinctCards)
	}
	if envelope.Data.TotalQuantity != 5 {
		t.Errorf("expected quantity 5, got %d", envelope.Data.TotalQuantity)
	}
	// 5 units * 2.00
	if envelope.Data.TotalValue != "10.00" {
		t.Errorf("expected 10.00, got %s", envelope.Data.TotalValue)
	}
}

func TestContentTypeEnforced(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/collection/quantities", strings.NewReader(`{"cardIds":["card-a"]}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestRateLimiting(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := DefaultConfig()
	cfg.JWTSecret = testSecret
	cfg.RateLimitPerSec = 1
	cfg.RateLimitBurst = 2
	server := NewServer(cfg, repository.NewItemRepository(db), repository.NewPriceRepository(db))

	limited := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}

	if !limited {
		t.Error("expected at least one request to be rate limited")
	}
}
