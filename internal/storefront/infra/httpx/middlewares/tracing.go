package middlewares

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront-api/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-api/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata copies the chi request id and the client's
// idempotency key into the request context and echoes the request id back.
// Must run after middleware.RequestID.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := strings.TrimSpace(r.Header.Get(constants.HeaderXIdempotencyKey))
		if idempotencyKey == "" {
			idempotencyKey = strings.TrimSpace(r.Header.Get(constants.HeaderIdempotencyKey))
		}

		if requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		ctx := interceptors.WithRequestID(r.Context(), requestID, idempotencyKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
