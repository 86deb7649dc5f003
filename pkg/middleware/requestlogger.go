package middleware

import (
	"log/slog"
	"net/http"

	"github.com/caffeinepub/saree-catalogue-portal/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying correlation_id,
// weaver_id, trace_id and span_id in the context. Mount it after
// RequestLogging and Tracing; inside an Auth group, mount it again after Auth
// so the weaver id is included.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if p := PrincipalFromContext(ctx); p != "" && logger.WeaverIDFromContext(ctx) == "" {
				ctx = logger.WithWeaverID(ctx, p)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
