// Package auth provides the bearer-token request boundary. Session issuance
// lives elsewhere; this package only verifies tokens and exposes the user ID
// to handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cardbinder/cardbinder/internal/api/response"
)

type contextKey struct{}

var userIDKey contextKey

// ErrSignInRequired is the user-facing authentication failure.
var ErrSignInRequired = errors.New("sign in required")

// Middleware validates the Authorization bearer token and stores the user ID
// in the request context. Requests without a valid token get a 401 so the
// client can redirect to sign-in; authentication is never silently defaulted.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := userIDFromRequest(r, secret)
			if err != nil {
				response.Unauthorized(w, ErrSignInRequired)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user ID stored by Middleware.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a context carrying the given user ID, as Middleware
// would have stored it. Useful for handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func userIDFromRequest(r *http.Request, secret []byte) (string, error) {
	header := r.Header.Get("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return "", fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return subject, nil
}
