package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/blog/internal/handlers/render"
	"github.com/nkiryanov/blog/internal/handlers/userctx"
)

// Query parameter that identifies the calling user
const CallerParam = "userId"

// Put the caller id from the query into request context
// Requests without valid caller id are rejected
func CallerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get(CallerParam)
		if raw == "" {
			render.ServiceError(w, "Query parameter 'userId' is required", http.StatusBadRequest)
			return
		}

		callerID, err := uuid.Parse(raw)
		if err != nil {
			render.ServiceError(w, "Query parameter 'userId' is not a valid id", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), callerID)))
	})
}
