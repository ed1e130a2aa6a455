package signage

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// stubRepo wraps the in-memory repository and injects failures.
type stubRepo struct {
	*storage.InMemoryCreativeRepo
	listErr   error
	metaErr   error
	screenErr error
	findErr   error
	touchErr  error
}

func newStubRepo() *stubRepo {
	return &stubRepo{InMemoryCreativeRepo: storage.NewInMemoryCreativeRepo()}
}

func (r *stubRepo) ListCreatives(ctx context.Context) ([]*models.Creative, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.InMemoryCreativeRepo.ListCreatives(ctx)
}

func (r *stubRepo) LatestOperationalMetadata(ctx context.Context) (models.Record, error) {
	if r.metaErr != nil {
		return nil, r.metaErr
	}
	return r.InMemoryCreativeRepo.LatestOperationalMetadata(ctx)
}

func (r *stubRepo) LatestScreenConfig(ctx context.Context) (models.Record, error) {
	if r.screenErr != nil {
		return nil, r.screenErr
	}
	return r.InMemoryCreativeRepo.LatestScreenConfig(ctx)
}

func (r *stubRepo) FindCreativeByAssetID(ctx context.Context, assetID string) (*models.Creative, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.InMemoryCreativeRepo.FindCreativeByAssetID(ctx, assetID)
}

func (r *stubRepo) TouchCreative(ctx context.Context, campaignRun string, patch models.CreativePatch) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	return r.InMemoryCreativeRepo.TouchCreative(ctx, campaignRun, patch)
}

// stubOverrides wraps the in-memory override store and injects failures.
type stubOverrides struct {
	*storage.InMemoryOverrideStore
	putErr error
	allErr error
}

func newStubOverrides() *stubOverrides {
	return &stubOverrides{InMemoryOverrideStore: storage.NewInMemoryOverrideStore()}
}

func (s *stubOverrides) Put(ctx context.Context, campaignRun string, override map[string]any) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.InMemoryOverrideStore.Put(ctx, campaignRun, override)
}

func (s *stubOverrides) All(ctx context.Context) (map[string]map[string]any, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}
	return s.InMemoryOverrideStore.All(ctx)
}

type fixture struct {
	repo      *stubRepo
	overrides *stubOverrides
	metrics   *metrics.Metrics
	logs      *observer.ObservedLogs
	services  *Services
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.NewMetrics("nexus", prometheus.NewRegistry())
	repo := newStubRepo()
	overrides := newStubOverrides()
	return &fixture{
		repo:      repo,
		overrides: overrides,
		metrics:   m,
		logs:      logs,
		services:  NewServices(repo, overrides, opts, zap.New(core), m),
	}
}

// nested returns an object nested depth levels deep.
func nested(depth int) map[string]any {
	m := map[string]any{"leaf": true}
	for i := 1; i < depth; i++ {
		m = map[string]any{"n": m}
	}
	return m
}

// blockingRepo never answers ListCreatives before the context ends.
type blockingRepo struct {
	*stubRepo
}

func (r *blockingRepo) ListCreatives(ctx context.Context) ([]*models.Creative, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}
