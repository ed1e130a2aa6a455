package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/radiusdt/nexus-backend/internal/metrics"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a 500 carrying the request ID.
type RecoveryMiddleware struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRecoveryMiddleware creates a recovery middleware. m may be nil.
func NewRecoveryMiddleware(logger *zap.Logger, m *metrics.Metrics) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger:  logger.Named("recovery"),
		metrics: m,
	}
}

// Handler wraps an http.Handler with panic recovery. http.ErrAbortHandler
// is re-raised.
func (rm *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			route := RouteLabel(r.URL.Path)
			requestID := RequestIDFromContext(r.Context())
			rm.metrics.RecordPanic(route)
			rm.logger.Error("panic recovered",
				zap.Any("panic", v),
				zap.String("route", route),
				zap.String("method", r.Method),
				zap.String("request_id", requestID),
				zap.ByteString("stack", debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":      "internal server error",
				"request_id": requestID,
			})
		}()

		next.ServeHTTP(w, r)
	})
}
