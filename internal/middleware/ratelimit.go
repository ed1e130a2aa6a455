package middleware

import (
	"net/http"
	"strings"

	"github.com/radiusdt/nexus-backend/internal/config"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Route classes sharing a token bucket.
const (
	RouteClassPlayback   = "playback"
	RouteClassManagement = "management"
)

// RateLimitMiddleware implements token bucket rate limiting. Screens polling
// for plans and media share one bucket; the campaign management API has a
// smaller one. Health and metrics endpoints are never limited.
type RateLimitMiddleware struct {
	cfg             config.RateLimitConfig
	logger          *zap.Logger
	metrics         *metrics.Metrics
	playbackLimiter *rate.Limiter
	mgmtLimiter     *rate.Limiter
}

// NewRateLimitMiddleware creates a new rate limiting middleware.
func NewRateLimitMiddleware(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		cfg:             cfg,
		logger:          logger,
		playbackLimiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		mgmtLimiter:     rate.NewLimiter(rate.Limit(cfg.MgmtRPS), cfg.MgmtBurst),
	}
}

func (rl *RateLimitMiddleware) SetMetrics(m *metrics.Metrics) {
	rl.metrics = m
}

// Handler wraps an http.Handler with rate limiting.
func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.cfg.Enabled || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		class := routeClass(r.URL.Path)
		var limiter *rate.Limiter
		switch class {
		case RouteClassPlayback:
			limiter = rl.playbackLimiter
		case RouteClassManagement:
			limiter = rl.mgmtLimiter
		default:
			next.ServeHTTP(w, r)
			return
		}

		if !limiter.Allow() {
			rl.logger.Warn("rate limit exceeded",
				zap.String("route_class", class),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			rl.metrics.RecordRateLimitHit(class)
			rl.tooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// routeClass returns the bucket a path draws from, or "" when unlimited.
func routeClass(path string) string {
	switch {
	case path == "/health" || path == "/metrics":
		return ""
	case path == "/api/campaign", strings.HasPrefix(path, "/api/campaign/"), path == "/api/campaign-updates":
		return RouteClassManagement
	default:
		return RouteClassPlayback
	}
}

// tooManyRequests sends a 429 response.
func (rl *RateLimitMiddleware) tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate limit exceeded"}`))
}
