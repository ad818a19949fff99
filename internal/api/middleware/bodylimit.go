package middleware

import "net/http"

// DefaultMaxBody bounds tool-call request bodies. Audio is never uploaded;
// requests carry a local path only.
const DefaultMaxBody = 1 << 20

// MaxBodySize limits the request body to maxBytes.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
