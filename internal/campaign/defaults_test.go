package campaign

import (
	"testing"

	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AudibleByType(t *testing.T) {
	tests := []struct {
		assetType models.AssetType
		audible   bool
	}{
		{models.AssetTypeImage, false},
		{models.AssetTypeVideo, true},
		{models.AssetTypeOther, true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.assetType), func(t *testing.T) {
			cfg := Default(&models.Creative{AssetID: "a1", Type: tt.assetType})
			assert.Equal(t, tt.audible, cfg["audible"])
		})
	}
}

func TestDefault_Shape(t *testing.T) {
	cfg := Default(&models.Creative{ID: "row-1", AssetID: "asset-1", CampaignRun: "run-1", Type: models.AssetTypeVideo})

	assert.Equal(t, false, cfg["muted"])
	assert.Equal(t, map[string]any{}, cfg["hour_overrides"])

	asset, ok := cfg["asset"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "asset-1", asset["id"])
	assert.Equal(t, "video", asset["type"])
	assert.Equal(t, false, asset["overlay"])
	assert.Equal(t, "contain", asset["object_fit"])
	assert.Equal(t, map[string]any{"enabled": false, "url": "", "position": "bottom_right", "size": float64(0)}, asset["qr_code"])
	assert.Equal(t, map[string]any{"enabled": false, "url": ""}, asset["vast"])
	assert.Equal(t, map[string]any{"enabled": false, "provider": "", "tag_url": ""}, asset["alternate_ad_provider"])
}

func TestDefault_FallbacksAndNil(t *testing.T) {
	cfg := Default(&models.Creative{ID: "row-1"})
	asset := cfg["asset"].(map[string]any)
	assert.Equal(t, "row-1", asset["id"])
	assert.Equal(t, "other", asset["type"])

	cfg = Default(nil)
	assert.Equal(t, true, cfg["audible"])
}

func TestDefault_FreshAllocation(t *testing.T) {
	c := &models.Creative{AssetID: "a"}
	first := Default(c)
	first["asset"].(map[string]any)["overlay"] = true
	first["hour_overrides"].(map[string]any)["8"] = "x"

	second := Default(c)
	assert.Equal(t, false, second["asset"].(map[string]any)["overlay"])
	assert.Empty(t, second["hour_overrides"])
}

func TestDefault_MergesWithOverride(t *testing.T) {
	cfg := Default(&models.Creative{AssetID: "a", Type: models.AssetTypeImage})
	got, err := Merge(cfg, map[string]any{
		"muted": true,
		"asset": map[string]any{"qr_code": map[string]any{"enabled": true, "url": "https://qr.example.com"}},
	})
	require.NoError(t, err)

	assert.Equal(t, true, got["muted"])
	assert.Equal(t, false, got["audible"])
	qr := got["asset"].(map[string]any)["qr_code"].(map[string]any)
	assert.Equal(t, true, qr["enabled"])
	assert.Equal(t, "https://qr.example.com", qr["url"])
	assert.Equal(t, "bottom_right", qr["position"])
}
