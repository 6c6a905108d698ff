package server

import (
	"net/http"

	"github.com/PhilHem/go-totp-auth/backend/auth"
	"github.com/PhilHem/go-totp-auth/backend/handlers"
	"github.com/PhilHem/go-totp-auth/backend/middleware"
)

// NewHandler wires the JSON API. Routes that need an identity go through
// RequireUser, which hands the resolved user to the handler.
func NewHandler(svc *auth.Service, allowedOrigins []string) http.Handler {
	h := handlers.NewAuthHandler(svc)
	guard := svc.Guard()

	mux := http.NewServeMux()

	// Health check (unauthenticated, for load balancers)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/message", handlers.Message)

	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/verify-login-2fa", h.VerifyLogin2FA)

	// Bearer token required
	mux.HandleFunc("POST /api/auth/setup-2fa", middleware.RequireUser(guard, h.Setup2FA))
	mux.HandleFunc("POST /api/auth/verify-2fa", middleware.RequireUser(guard, h.Verify2FA))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireUser(guard, h.Me))

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.RequestLogger(handler)
	return handler
}
