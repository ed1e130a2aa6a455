// Package campaign builds the per-campaign runtime configuration a screen
// consumes: a synthesized default, deep-merged with runtime overrides.
package campaign

import "github.com/radiusdt/nexus-backend/internal/models"

// Defaults holds the constant values every synthesized configuration starts from.
type Defaults struct {
	QRCodePosition string
	QRCodeSize     float64
	ObjectFit      string
}

// StandardDefaults are used by Default.
var StandardDefaults = Defaults{
	QRCodePosition: "bottom_right",
	QRCodeSize:     0,
	ObjectFit:      "contain",
}

// Default synthesizes the configuration for the campaign run of c using
// StandardDefaults. It never fails; a nil creative yields the defaults for an
// untyped asset.
func Default(c *models.Creative) map[string]any {
	return StandardDefaults.For(c)
}

// For synthesizes the configuration for the campaign run of c. The result is
// freshly allocated on every call and uses only JSON-compatible value types
// (maps, strings, bools, float64) so it merges cleanly with decoded overrides.
func (d Defaults) For(c *models.Creative) map[string]any {
	var cr models.Creative
	if c != nil {
		cr = *c
	}

	assetID := cr.AssetID
	if assetID == "" {
		assetID = cr.ID
	}
	assetType := cr.Type
	if assetType == "" {
		assetType = models.AssetTypeOther
	}

	return map[string]any{
		"asset": map[string]any{
			"id":   assetID,
			"type": string(assetType),
			"qr_code": map[string]any{
				"enabled":  false,
				"url":      "",
				"position": d.QRCodePosition,
				"size":     d.QRCodeSize,
			},
			"overlay": false,
			"vast": map[string]any{
				"enabled": false,
				"url":     "",
			},
			"alternate_ad_provider": map[string]any{
				"enabled":  false,
				"provider": "",
				"tag_url":  "",
			},
			"object_fit": d.ObjectFit,
		},
		"hour_overrides": map[string]any{},
		"muted":          false,
		"audible":        assetType.Audible(),
	}
}
