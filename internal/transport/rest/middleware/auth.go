package middleware

import (
	"errors"
	"net/http"
	"strings"

	"journeylens/internal/service"
)

// TokenChecker validates the static API token.
type TokenChecker interface {
	CheckToken(token string) error
}

// AuthMiddleware guards routes with the static bearer token.
type AuthMiddleware struct {
	auth TokenChecker
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth TokenChecker) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireToken rejects requests without a valid Authorization: Bearer header.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.auth.CheckToken(BearerToken(r)); err != nil {
			message := "Invalid authorization token"
			if errors.Is(err, service.ErrMissingToken) {
				message = "Missing authorization token"
			}
			http.Error(w, `{"error":"`+message+`"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
