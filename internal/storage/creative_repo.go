package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/radiusdt/nexus-backend/internal/models"
)

// InMemoryCreativeRepo keeps creatives and configuration records in memory.
// It backs tests and local runs without a database.
type InMemoryCreativeRepo struct {
	mu           sync.RWMutex
	creatives    []*models.Creative
	metadata     models.Record
	screenConfig models.Record
}

// NewInMemoryCreativeRepo constructs an empty repository.
func NewInMemoryCreativeRepo() *InMemoryCreativeRepo {
	return &InMemoryCreativeRepo{}
}

// AddCreative stores a copy of c.
func (r *InMemoryCreativeRepo) AddCreative(c *models.Creative) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.creatives = append(r.creatives, &cp)
}

// SetOperationalMetadata replaces the latest operational metadata row.
func (r *InMemoryCreativeRepo) SetOperationalMetadata(rec models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata = rec
}

// SetScreenConfig replaces the latest screen config row.
func (r *InMemoryCreativeRepo) SetScreenConfig(rec models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screenConfig = rec
}

// ListCreatives returns copies of all creatives ordered by CreatedAt, newest first.
// Creatives created at the same instant keep insertion order.
func (r *InMemoryCreativeRepo) ListCreatives(ctx context.Context) ([]*models.Creative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*models.Creative, 0, len(r.creatives))
	for _, c := range r.creatives {
		cp := *c
		res = append(res, &cp)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// FindCreativeByAssetID returns the newest creative with the asset id, or nil.
func (r *InMemoryCreativeRepo) FindCreativeByAssetID(ctx context.Context, assetID string) (*models.Creative, error) {
	list, _ := r.ListCreatives(ctx)
	for _, c := range list {
		if c.AssetID == assetID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *InMemoryCreativeRepo) LatestOperationalMetadata(ctx context.Context) (models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata, nil
}

func (r *InMemoryCreativeRepo) LatestScreenConfig(ctx context.Context) (models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.screenConfig, nil
}

// TouchCreative applies patch to every creative of the campaign run.
func (r *InMemoryCreativeRepo) TouchCreative(ctx context.Context, campaignRun string, patch models.CreativePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := 0
	for _, c := range r.creatives {
		if c.CampaignRun != campaignRun {
			continue
		}
		c.UpdatedAt = patch.UpdatedAt
		c.CampaignData = patch.CampaignData
		touched++
	}
	if touched == 0 {
		return fmt.Errorf("touch %q: %w", campaignRun, ErrNoMatchingCreative)
	}
	return nil
}
