package middleware

import (
	"slices"

	"github.com/go-chi/cors"
)

func CORSHandler(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Credentials are never sent to a wildcard origin.
	allowCreds := !slices.Contains(allowedOrigins, "*")

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Retry-After"},
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}
