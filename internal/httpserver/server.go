package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/radiusdt/nexus-backend/internal/config"
	"github.com/radiusdt/nexus-backend/internal/database"
	"github.com/radiusdt/nexus-backend/internal/errortypes"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/middleware"
	"github.com/radiusdt/nexus-backend/internal/signage"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"go.uber.org/zap"
)

// Dependencies holds all external dependencies for the server. Repo and
// Overrides take precedence over DB and Redis when set.
type Dependencies struct {
	DB        *database.PostgresDB
	Redis     *database.RedisDB
	Repo      storage.CreativeRepo
	Overrides storage.OverrideStore
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// Endpoint describes one public route.
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

// Endpoints lists the public API for the startup banner.
var Endpoints = []Endpoint{
	{http.MethodGet, "/api/content_plan", "content plan with campaign configuration"},
	{http.MethodGet, "/api/operational_metadata", "latest operational metadata"},
	{http.MethodPost, "/api/config", "latest screen configuration"},
	{http.MethodGet, "/api/media?assetId=<asset_id>", "VAST document for an asset"},
	{http.MethodPut, "/api/campaign/{campaignRun}", "replace a campaign override"},
	{http.MethodGet, "/api/campaign-updates", "all stored campaign overrides"},
	{http.MethodGet, "/health", "liveness check"},
}

// Server wraps HTTP handlers and signage services.
type Server struct {
	contentPlanService *signage.ContentPlanService
	mediaService       *signage.MediaService
	metadataService    *signage.MetadataService
	campaignService    *signage.CampaignService
	logger             *zap.Logger
	config             *config.Config
	metrics            *metrics.Metrics
}

// NewServer constructs the http.Handler with all routes registered and the
// middleware chain applied.
func NewServer(deps *Dependencies) http.Handler {
	repo := deps.Repo
	if repo == nil {
		if deps.DB != nil {
			repo = storage.NewPostgresCreativeRepo(deps.DB.Pool)
		} else {
			deps.Logger.Warn("no database configured, serving from in-memory creatives")
			repo = storage.NewInMemoryCreativeRepo()
		}
	}

	overrides := deps.Overrides
	if overrides == nil {
		if deps.Config.Overrides.Driver == config.OverrideDriverRedis && deps.Redis != nil {
			overrides = storage.NewRedisOverrideStore(deps.Redis.Client, deps.Config.Overrides.KeyPrefix)
		} else {
			overrides = storage.NewInMemoryOverrideStore()
		}
	}

	svc := signage.NewServices(repo, overrides, ServiceOptions(deps.Config), deps.Logger, deps.Metrics)

	s := &Server{
		contentPlanService: svc.ContentPlan,
		mediaService:       svc.Media,
		metadataService:    svc.Metadata,
		campaignService:    svc.Campaign,
		logger:             deps.Logger,
		config:             deps.Config,
		metrics:            deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled && deps.Gatherer != nil {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler(deps.Gatherer))
	}

	// Screen playback
	mux.HandleFunc("/api/content_plan", s.handleContentPlan)
	mux.HandleFunc("/api/operational_metadata", s.handleOperationalMetadata)
	mux.HandleFunc("/api/config", s.handleScreenConfig)
	mux.HandleFunc("/api/media", s.handleMedia)

	// Campaign management
	mux.HandleFunc("/api/campaign", s.handleCampaignUpdate)
	mux.HandleFunc("/api/campaign/", s.handleCampaignUpdate)
	mux.HandleFunc("/api/campaign-updates", s.handleCampaignUpdates)

	rateLimit := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	rateLimit.SetMetrics(deps.Metrics)

	var h http.Handler = mux
	h = rateLimit.Handler(h)
	h = middleware.NewCORSMiddleware(deps.Config.CORS).Handler(h)
	h = middleware.NewMetricsMiddleware(deps.Metrics).Handler(h)
	h = middleware.NewRecoveryMiddleware(deps.Logger, deps.Metrics).Handler(h)
	h = middleware.NewLoggingMiddleware(deps.Logger).Handler(h)
	return h
}

// ServiceOptions derives signage options from configuration.
func ServiceOptions(cfg *config.Config) signage.Options {
	return signage.Options{
		GatewayTimeout:    cfg.Signage.GatewayTimeout,
		MaxMergeDepth:     cfg.Signage.MaxMergeDepth,
		ImpressionBaseURL: cfg.Signage.ImpressionBaseURL,
		Precedence:        signage.Precedence(cfg.Signage.Precedence),
		NumericMode:       signage.NumericMode(cfg.Signage.NumericMode),
	}
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.jsonResponse(w, map[string]string{
		"status":  "OK",
		"message": "NEXUS Backend is running",
	})
}

// ---- Content Plan ----

func (s *Server) handleContentPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plan, err := s.contentPlanService.Build(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, plan)
}

// ---- Configuration Records ----

func (s *Server) handleOperationalMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.metadataService.OperationalMetadata(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, data)
}

func (s *Server) handleScreenConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.metadataService.ScreenConfig(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, data)
}

// ---- Media ----

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := s.mediaService.VAST(r.Context(), r.URL.Query().Get("assetId"))
	if err != nil {
		code, msg := s.classify(r, err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(code)
		w.Write([]byte(msg))
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write(doc)
}

// ---- Campaign Updates ----

func (s *Server) handleCampaignUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	run := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/campaign"), "/")
	if strings.Contains(run, "/") {
		s.errorResponse(w, "not found", http.StatusNotFound)
		return
	}

	payload, err := s.decodeObject(w, r)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	res, err := s.campaignService.Update(r.Context(), run, payload)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, res)
}

func (s *Server) handleCampaignUpdates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all, err := s.campaignService.Overrides(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, all)
}

// decodeObject reads a size-limited JSON object body. An empty body is an
// empty object.
func (s *Server) decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &errortypes.BadInput{Message: "Request body too large"}
		}
		return nil, &errortypes.BadInput{Message: "Failed to read request body"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &errortypes.BadInput{Message: "Invalid JSON body"}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &errortypes.BadInput{Message: "Campaign data must be a JSON object"}
	}
	return obj, nil
}

// ---- Helper Methods ----

// classify maps a service error onto a status code and a message safe to
// return. Upstream details are logged, never returned.
func (s *Server) classify(r *http.Request, err error) (int, string) {
	var coder errortypes.Coder
	if !errors.As(err, &coder) {
		s.logger.Error("unhandled error",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		return http.StatusInternalServerError, "internal error"
	}

	var upstream *errortypes.Upstream
	if errors.As(err, &upstream) {
		s.logger.Error(upstream.Message,
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(upstream.Err),
		)
		return coder.Code(), upstream.Message
	}
	return coder.Code(), coder.Error()
}

func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := s.classify(r, err)
	s.errorResponse(w, msg, code)
}

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
