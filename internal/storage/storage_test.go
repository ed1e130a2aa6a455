package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCreativeRepo_OrderAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCreativeRepo()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo.AddCreative(&models.Creative{ID: "1", AssetID: "a1", CampaignRun: "r1", CreatedAt: base})
	repo.AddCreative(&models.Creative{ID: "2", AssetID: "a2", CampaignRun: "r2", CreatedAt: base.Add(2 * time.Hour)})
	repo.AddCreative(&models.Creative{ID: "3", AssetID: "a3", CampaignRun: "r1", CreatedAt: base.Add(time.Hour)})

	list, err := repo.ListCreatives(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{list[0].ID, list[1].ID, list[2].ID})

	c, err := repo.FindCreativeByAssetID(ctx, "a3")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "3", c.ID)

	c, err = repo.FindCreativeByAssetID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestInMemoryCreativeRepo_Touch(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCreativeRepo()
	repo.AddCreative(&models.Creative{ID: "1", CampaignRun: "r1"})
	repo.AddCreative(&models.Creative{ID: "2", CampaignRun: "r1"})

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	data := map[string]any{"muted": true}
	require.NoError(t, repo.TouchCreative(ctx, "r1", models.CreativePatch{UpdatedAt: now, CampaignData: data}))

	list, _ := repo.ListCreatives(ctx)
	for _, c := range list {
		assert.Equal(t, now, c.UpdatedAt)
		assert.Equal(t, data, c.CampaignData)
	}

	err := repo.TouchCreative(ctx, "nope", models.CreativePatch{UpdatedAt: now})
	assert.ErrorIs(t, err, ErrNoMatchingCreative)
}

func TestInMemoryCreativeRepo_Records(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCreativeRepo()

	rec, err := repo.LatestOperationalMetadata(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	repo.SetOperationalMetadata(models.Record{"panel_id": "p1"})
	repo.SetScreenConfig(models.Record{"screen_config": "portrait"})

	rec, _ = repo.LatestOperationalMetadata(ctx)
	assert.Equal(t, "p1", rec["panel_id"])
	rec, _ = repo.LatestScreenConfig(ctx)
	assert.Equal(t, "portrait", rec["screen_config"])
}

func TestInMemoryOverrideStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryOverrideStore()

	_, ok, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "r1", map[string]any{"a": 1.0}))
	require.NoError(t, s.Put(ctx, "r1", map[string]any{"b": 2.0}))
	require.NoError(t, s.Put(ctx, "r2", map[string]any{}))

	o, ok, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"b": 2.0}, o)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func newRedisStore(t *testing.T) (*RedisOverrideStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOverrideStore(client, ""), mr
}

func TestRedisOverrideStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, ok, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)

	override := map[string]any{"asset": map[string]any{"overlay": true}, "tags": []any{"a", "b"}}
	require.NoError(t, s.Put(ctx, "r1", override))
	assert.True(t, mr.Exists(DefaultOverrideKeyPrefix+"r1"))

	got, ok, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, override, got)

	require.NoError(t, s.Put(ctx, "r1", map[string]any{"muted": true}))
	got, _, _ = s.Get(ctx, "r1")
	assert.Equal(t, map[string]any{"muted": true}, got)
}

func TestRedisOverrideStore_All(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Put(ctx, "r1", map[string]any{"a": 1.0}))
	require.NoError(t, s.Put(ctx, "r2", map[string]any{"b": 2.0}))
	require.NoError(t, mr.Set("unrelated", "x"))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]any{
		"r1": {"a": 1.0},
		"r2": {"b": 2.0},
	}, all)
}

func TestRedisOverrideStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, mr.Set(DefaultOverrideKeyPrefix+"bad", "{not json"))
	_, _, err := s.Get(ctx, "bad")
	assert.Error(t, err)
}

func TestRedisOverrideStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	mr.Close()

	assert.Error(t, s.Put(ctx, "r1", map[string]any{}))
}

func TestNormalizeValue(t *testing.T) {
	id := uuid.MustParse("12345678-1234-1234-1234-123456789abc")
	assert.Equal(t, id.String(), normalizeValue([16]byte(id)))

	var n pgtype.Numeric
	require.NoError(t, n.Scan("0.75"))
	assert.Equal(t, 0.75, normalizeValue(n))
	assert.Nil(t, normalizeValue(pgtype.Numeric{}))

	assert.Equal(t, "x", normalizeValue("x"))
}
