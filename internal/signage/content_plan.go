package signage

import (
	"context"
	"math"

	"github.com/radiusdt/nexus-backend/internal/campaign"
	"github.com/radiusdt/nexus-backend/internal/errortypes"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"go.uber.org/zap"
)

// DefaultAmbientVolume is used when the configured volume is missing,
// not a number, or zero.
const DefaultAmbientVolume = 0.5

// ContentPlanService assembles the playback plan for screens.
type ContentPlanService struct {
	repo      storage.CreativeRepo
	overrides storage.OverrideStore
	opts      Options
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewContentPlanService constructs a ContentPlanService.
func NewContentPlanService(repo storage.CreativeRepo, overrides storage.OverrideStore, opts Options, logger *zap.Logger, m *metrics.Metrics) *ContentPlanService {
	return &ContentPlanService{
		repo:      repo,
		overrides: overrides,
		opts:      opts,
		logger:    logger.Named("content_plan"),
		metrics:   m,
	}
}

// Build fetches every creative and returns the plan. Only a failure to list
// creatives or read overrides fails the request; a missing or unreadable
// operational metadata record just disables ambient audio.
func (s *ContentPlanService) Build(ctx context.Context) (*models.ContentPlan, error) {
	ctx, cancel := s.opts.gatewayContext(ctx)
	defer cancel()

	creatives, err := s.repo.ListCreatives(ctx)
	if err != nil {
		s.metrics.RecordGatewayError("list_creatives")
		return nil, &errortypes.Upstream{Message: "Failed to fetch creatives data", Err: err}
	}

	overrides, err := s.overrides.All(ctx)
	if err != nil {
		s.metrics.RecordGatewayError("list_overrides")
		return nil, &errortypes.Upstream{Message: "Failed to fetch creatives data", Err: err}
	}

	var ambient *models.AmbientAudioSettings
	meta, err := s.repo.LatestOperationalMetadata(ctx)
	if err != nil {
		s.metrics.RecordGatewayError("latest_operational_metadata")
		s.logger.Warn("failed to fetch ambient settings", zap.Error(err))
	} else {
		ambient = AmbientSettings(meta)
	}

	publisher := make([]models.PlanEntry, 0, len(creatives))
	for _, c := range creatives {
		publisher = append(publisher, models.PlanEntry{
			CampaignRun:    c.CampaignRun,
			DurationMillis: c.Duration,
		})
	}
	superLoop := make([]models.PlanEntry, len(publisher))
	copy(superLoop, publisher)

	campaignData := make(map[string]map[string]any)
	for _, c := range creatives {
		if c.CampaignRun == "" {
			continue
		}
		override, ok := overrides[c.CampaignRun]
		campaignData[c.CampaignRun] = s.mergedConfig(c, override, ok)
	}

	s.metrics.SetContentPlanCreatives(len(creatives))
	s.logger.Debug("content plan assembled",
		zap.Int("creatives", len(creatives)),
		zap.Int("campaigns", len(campaignData)),
		zap.Bool("ambient_audio", ambient != nil),
	)

	return &models.ContentPlan{
		PublisherContent:       publisher,
		CampaignData:           campaignData,
		CampaignOrders:         []any{},
		SuperLoop:              superLoop,
		PriorityCampaignOrders: []any{},
		VistarConfig:           models.VistarConfig{},
		AmbientAudioSettings:   ambient,
	}, nil
}

// mergedConfig merges exactly one configuration onto the defaults: the live
// override when the store holds one for the run, otherwise the campaign_data
// persisted on the creative. The persisted copy is written best-effort, so it
// may lag the override and must never sit underneath it.
func (s *ContentPlanService) mergedConfig(c *models.Creative, override map[string]any, hasOverride bool) map[string]any {
	cfg := campaign.Default(c)

	source, data := "override", override
	if !hasOverride {
		source, data = "persisted", c.CampaignData
	}
	if data == nil {
		return cfg
	}

	merged, err := s.opts.merger().Merge(cfg, data)
	if err != nil {
		s.logger.Warn("skipping campaign configuration layer",
			zap.String("campaign_run", c.CampaignRun),
			zap.String("layer", source),
			zap.Error(err),
		)
		return cfg
	}
	return merged
}

// AmbientSettings derives background audio settings from the latest
// operational metadata record. It returns nil unless the record's custom
// fields carry ambient_audio_enabled set to boolean true and the record has
// a non-empty ambient_url.
func AmbientSettings(rec models.Record) *models.AmbientAudioSettings {
	if rec == nil {
		return nil
	}
	if !rec.CustomFields().Bool("ambient_audio_enabled") {
		return nil
	}
	url := rec.String("ambient_url")
	if url == "" {
		return nil
	}

	vol, ok := toNumber(rec["ambient_audio_vol"], true)
	if !ok || vol == 0 {
		vol = DefaultAmbientVolume
	}

	return &models.AmbientAudioSettings{
		Enabled:         true,
		AmbientUUID:     rec["ambient_uuid"],
		AmbientURL:      url,
		AmbientAudioVol: vol,
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
