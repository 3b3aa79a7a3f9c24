package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID tags every request with a uuid, echoed in X-Request-ID.
// An id supplied by the caller is kept if it is a valid uuid.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestLogger(r *http.Request, base *slog.Logger) *slog.Logger {
	if id := RequestID(r.Context()); id != "" {
		return base.With("request_id", id)
	}
	return base
}

// OriginGuard rejects cross-origin requests whose Origin is not in allowed.
// Requests without an Origin header pass through.
func OriginGuard(allowed []string, logger *slog.Logger) mux.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := set[origin]; !ok {
				msg := "CORS policy does not allow access from the specified Origin: " + origin
				requestLogger(r, logger).Error(msg, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithCORS wraps h with the origin guard and gorilla's CORS headers for the
// allowed origins.
func WithCORS(h http.Handler, allowed []string, logger *slog.Logger) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowed),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)
	return OriginGuard(allowed, logger)(cors(h))
}

// NewHTTPHandler assembles the full middleware chain around the router.
func NewHTTPHandler(r *mux.Router, allowed []string, logger *slog.Logger) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(WithRequestID(WithCORS(r, allowed, logger)))
}
