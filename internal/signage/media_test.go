package signage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/radiusdt/nexus-backend/internal/errortypes"
	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaVAST_MissingAsset(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.services.Media.VAST(context.Background(), "")
	var bad *errortypes.BadInput
	require.ErrorAs(t, err, &bad)
	assert.True(t, strings.HasPrefix(bad.Message, "Error: Missing required parameter: assetId"))
	assert.Contains(t, bad.Message, "Usage: /api/media?assetId=<asset_id>")
}

func TestMediaVAST_NotFound(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.services.Media.VAST(context.Background(), "nope")
	var nf *errortypes.NotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, `Error: Creative with asset ID "nope" not found`, nf.Message)
}

func TestMediaVAST_Failure(t *testing.T) {
	f := newFixture(t, Options{})
	f.repo.findErr = errors.New("boom")

	_, err := f.services.Media.VAST(context.Background(), "a1")
	var up *errortypes.Upstream
	require.ErrorAs(t, err, &up)
	assert.Equal(t, "Error: Failed to generate media XML", up.Message)
}

func TestMediaVAST_Synthesized(t *testing.T) {
	f := newFixture(t, Options{ImpressionBaseURL: "https://imp.example/i"})
	f.repo.AddCreative(&models.Creative{
		AssetID:     "a1",
		CampaignRun: "run-1",
		Duration:    125000,
		Type:        models.AssetTypeImage,
		FileURL:     "https://cdn/a1.jpg",
	})

	doc, err := f.services.Media.VAST(context.Background(), "a1")
	require.NoError(t, err)

	out := string(doc)
	assert.Contains(t, out, `<Ad id="a1">`)
	assert.Contains(t, out, "<Duration>00:02:05</Duration>")
	assert.Contains(t, out, `type="image/jpeg"`)
	assert.Contains(t, out, "<![CDATA[https://imp.example/i/run-1]]>")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.VASTResponses.WithLabelValues("synthesized")))
}

func TestMediaVAST_RawPassthrough(t *testing.T) {
	f := newFixture(t, Options{})
	raw := `<?xml version="1.0"?><VAST version="2.0"></VAST>`
	f.repo.AddCreative(&models.Creative{AssetID: "a1", VASTXML: raw})

	doc, err := f.services.Media.VAST(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, raw, string(doc))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.VASTResponses.WithLabelValues("raw")))
}
