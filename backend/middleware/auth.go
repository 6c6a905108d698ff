package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PhilHem/go-totp-auth/backend/auth"
	"github.com/PhilHem/go-totp-auth/backend/models"
)

// Resolver turns a bearer token into a user or fails.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// UserHandlerFunc is a handler that runs only with an established identity.
type UserHandlerFunc func(w http.ResponseWriter, r *http.Request, user *models.User)

// RequireUser resolves the Authorization bearer token before calling next.
// Requests without a valid token get 401 and never reach next.
func RequireUser(resolver Resolver, next UserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			unauthorized(w)
			return
		}

		user, err := resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrStoreUnavailable) {
				slog.Error("failed to resolve user", "source", "auth", "error", err.Error())
			} else {
				slog.Warn("rejected bearer token", "source", "auth", "path", r.URL.Path)
			}
			unauthorized(w)
			return
		}
		next(w, r, user)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Please authenticate"})
}
