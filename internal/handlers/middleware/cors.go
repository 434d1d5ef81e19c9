package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Allow browsers from the origins to call the API
// Empty origins list allows any origin
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler
}
