package signage

import (
	"context"
	"errors"
	"time"

	"github.com/radiusdt/nexus-backend/internal/errortypes"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"go.uber.org/zap"
)

// CampaignUpdate is the acknowledgement returned for an accepted override.
type CampaignUpdate struct {
	Message      string         `json:"message"`
	CampaignRun  string         `json:"campaign_run"`
	CampaignData map[string]any `json:"campaign_data"`
}

// CampaignService records per-campaign configuration overrides.
type CampaignService struct {
	repo      storage.CreativeRepo
	overrides storage.OverrideStore
	opts      Options
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(repo storage.CreativeRepo, overrides storage.OverrideStore, opts Options, logger *zap.Logger, m *metrics.Metrics) *CampaignService {
	return &CampaignService{
		repo:      repo,
		overrides: overrides,
		opts:      opts,
		logger:    logger.Named("campaign"),
		metrics:   m,
		now:       time.Now,
	}
}

// Update replaces the override for campaignRun with payload. The override
// takes effect on the next content plan. The creative rows are then touched
// best-effort: a failed write is logged and counted but never fails the
// update.
func (s *CampaignService) Update(ctx context.Context, campaignRun string, payload map[string]any) (*CampaignUpdate, error) {
	if campaignRun == "" {
		return nil, &errortypes.BadInput{Message: "Campaign run is required"}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := s.opts.merger().CheckDepth(payload); err != nil {
		return nil, &errortypes.BadInput{Message: "Campaign data is nested too deeply"}
	}

	if err := s.overrides.Put(ctx, campaignRun, payload); err != nil {
		return nil, &errortypes.Upstream{Message: "Failed to update campaign data", Err: err}
	}
	s.metrics.RecordOverrideUpdate()
	s.logger.Info("campaign override stored", zap.String("campaign_run", campaignRun))

	s.touch(ctx, campaignRun, payload)

	return &CampaignUpdate{
		Message:      "Campaign data updated successfully",
		CampaignRun:  campaignRun,
		CampaignData: payload,
	}, nil
}

func (s *CampaignService) touch(ctx context.Context, campaignRun string, payload map[string]any) {
	ctx, cancel := s.opts.gatewayContext(ctx)
	defer cancel()

	err := s.repo.TouchCreative(ctx, campaignRun, models.CreativePatch{
		UpdatedAt:    s.now().UTC(),
		CampaignData: payload,
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNoMatchingCreative):
		s.logger.Debug("no creative to touch", zap.String("campaign_run", campaignRun))
	default:
		s.metrics.RecordPersistenceFailure()
		s.logger.Warn("failed to persist campaign data",
			zap.String("campaign_run", campaignRun),
			zap.Error(err),
		)
	}
}

// Overrides returns every stored override keyed by campaign run.
func (s *CampaignService) Overrides(ctx context.Context) (map[string]map[string]any, error) {
	all, err := s.overrides.All(ctx)
	if err != nil {
		return nil, &errortypes.Upstream{Message: "Failed to fetch campaign updates", Err: err}
	}
	return all, nil
}
