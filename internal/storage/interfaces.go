package storage

import (
	"context"
	"errors"

	"github.com/radiusdt/nexus-backend/internal/models"
)

// ErrNoMatchingCreative is returned by TouchCreative when no row carries the campaign run.
var ErrNoMatchingCreative = errors.New("no creative matches campaign run")

// =============================================
// CREATIVE REPOSITORY
// =============================================

// CreativeRepo is the read side of the creative store plus the single
// best-effort write performed on campaign update.
type CreativeRepo interface {
	// ListCreatives returns every creative, newest first.
	ListCreatives(ctx context.Context) ([]*models.Creative, error)

	// FindCreativeByAssetID returns nil, nil when no creative matches.
	FindCreativeByAssetID(ctx context.Context, assetID string) (*models.Creative, error)

	// LatestOperationalMetadata returns the most recent operational_metadata
	// row, or nil, nil when the table is empty.
	LatestOperationalMetadata(ctx context.Context) (models.Record, error)

	// LatestScreenConfig returns the most recent screen_config row, or nil, nil.
	LatestScreenConfig(ctx context.Context) (models.Record, error)

	// TouchCreative writes patch to every creative of campaignRun.
	TouchCreative(ctx context.Context, campaignRun string, patch models.CreativePatch) error
}

// =============================================
// OVERRIDE STORE
// =============================================

// OverrideStore holds the latest override submitted per campaign run.
// Put replaces any previous override for the run. Returned maps must be
// treated as read-only.
type OverrideStore interface {
	Get(ctx context.Context, campaignRun string) (map[string]any, bool, error)
	Put(ctx context.Context, campaignRun string, override map[string]any) error
	All(ctx context.Context) (map[string]map[string]any, error)
}
