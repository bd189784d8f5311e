package middleware

import (
	"net/http"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/router"
	"github.com/rs/cors"
)

// CORS allows browser clients from origins. A single "*" allows any origin.
func CORS(origins []string) router.Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})

	return c.Handler
}
