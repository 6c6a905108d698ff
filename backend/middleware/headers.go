package middleware

import "net/http"

// SecurityHeaders adds security-related HTTP headers to API responses
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		w.Header().Set("Referrer-Policy", "no-referrer")

		// JSON only, nothing here should ever be rendered as a document
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Responses carry bearer tokens and secrets
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
