package signage

import (
	"context"
	"fmt"

	"github.com/radiusdt/nexus-backend/internal/errortypes"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"github.com/radiusdt/nexus-backend/internal/vast"
	"go.uber.org/zap"
)

// MediaUsage is returned when a media request names no asset.
const MediaUsage = "Error: Missing required parameter: assetId\n\n" +
	"Usage: /api/media?assetId=<asset_id>\n" +
	"Example: /api/media?assetId=12345678-1234-1234-1234-123456789abc"

// MediaService serves VAST documents per asset.
type MediaService struct {
	repo    storage.CreativeRepo
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewMediaService constructs a MediaService.
func NewMediaService(repo storage.CreativeRepo, opts Options, logger *zap.Logger, m *metrics.Metrics) *MediaService {
	return &MediaService{
		repo:    repo,
		opts:    opts,
		logger:  logger.Named("media"),
		metrics: m,
	}
}

// VAST returns the VAST document for assetID, either the stored raw
// document or one synthesized from the creative.
func (s *MediaService) VAST(ctx context.Context, assetID string) ([]byte, error) {
	if assetID == "" {
		return nil, &errortypes.BadInput{Message: MediaUsage}
	}

	ctx, cancel := s.opts.gatewayContext(ctx)
	defer cancel()

	c, err := s.repo.FindCreativeByAssetID(ctx, assetID)
	if err != nil {
		s.metrics.RecordGatewayError("find_creative")
		return nil, &errortypes.Upstream{Message: "Error: Failed to generate media XML", Err: err}
	}
	if c == nil {
		return nil, &errortypes.NotFound{
			Message: fmt.Sprintf("Error: Creative with asset ID %q not found", assetID),
		}
	}

	doc, src, err := vast.Render(c, assetID, s.opts.vastOptions())
	if err != nil {
		return nil, &errortypes.Upstream{Message: "Error: Failed to generate media XML", Err: err}
	}

	s.metrics.RecordVASTResponse(string(src))
	s.logger.Debug("serving VAST",
		zap.String("asset_id", assetID),
		zap.String("source", string(src)),
	)
	return doc, nil
}
