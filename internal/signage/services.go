// Package signage implements the screen-facing operations of the NEXUS
// backend: content plan assembly, VAST media lookup, configuration record
// transformation and campaign override updates.
package signage

import (
	"context"
	"time"

	"github.com/radiusdt/nexus-backend/internal/campaign"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"github.com/radiusdt/nexus-backend/internal/vast"
	"go.uber.org/zap"
)

// Options tunes the signage services. The zero value is usable.
type Options struct {
	// GatewayTimeout bounds every repository call made for one request.
	// Zero disables the bound.
	GatewayTimeout time.Duration
	// MaxMergeDepth bounds configuration nesting. Zero means
	// campaign.DefaultMaxDepth.
	MaxMergeDepth int
	// ImpressionBaseURL overrides vast.DefaultOptions.ImpressionBaseURL.
	ImpressionBaseURL string
	Precedence        Precedence
	NumericMode       NumericMode
}

func (o Options) merger() campaign.Merger {
	return campaign.Merger{MaxDepth: o.MaxMergeDepth}
}

func (o Options) vastOptions() vast.Options {
	opts := vast.DefaultOptions
	if o.ImpressionBaseURL != "" {
		opts.ImpressionBaseURL = o.ImpressionBaseURL
	}
	return opts
}

func (o Options) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.GatewayTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.GatewayTimeout)
}

// Services bundles every signage service around shared dependencies.
type Services struct {
	ContentPlan *ContentPlanService
	Media       *MediaService
	Metadata    *MetadataService
	Campaign    *CampaignService
}

// NewServices wires every signage service to the same repository, override
// store and options.
func NewServices(repo storage.CreativeRepo, overrides storage.OverrideStore, opts Options, logger *zap.Logger, m *metrics.Metrics) *Services {
	return &Services{
		ContentPlan: NewContentPlanService(repo, overrides, opts, logger, m),
		Media:       NewMediaService(repo, opts, logger, m),
		Metadata:    NewMetadataService(repo, opts, logger, m),
		Campaign:    NewCampaignService(repo, overrides, opts, logger, m),
	}
}
