package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the SPA call the API from its own origin. Tokens travel in the
// Authorization header, so credentials (cookies) are not allowed.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
