package models

import "time"

// AssetType is the media kind of a creative.
type AssetType string

const (
	AssetTypeVideo AssetType = "video"
	AssetTypeImage AssetType = "image"
	AssetTypeOther AssetType = "other"
)

// MIMEType returns the media type a player should expect for the asset.
// Anything that is not a video or an image is served as HTML.
func (t AssetType) MIMEType() string {
	switch t {
	case AssetTypeVideo:
		return "video/mp4"
	case AssetTypeImage:
		return "image/jpeg"
	default:
		return "text/html"
	}
}

// Audible reports whether the asset carries sound by default. Still images never do.
func (t AssetType) Audible() bool {
	return t != AssetTypeImage
}

// Creative is one row of the creatives table. It is read-only to everything
// except the best-effort touch performed on campaign update.
type Creative struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	CampaignRun string    `json:"campaign_run"`
	Duration    int64     `json:"duration"` // milliseconds
	Type        AssetType `json:"type"`
	Filename    string    `json:"filename,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`

	// VASTXML is a pre-rendered VAST document served verbatim when present.
	VASTXML string `json:"vast_xml,omitempty"`

	// CampaignData is the last campaign override persisted on the row.
	CampaignData map[string]any `json:"campaign_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// CreativePatch is the set of columns a campaign update writes back.
type CreativePatch struct {
	UpdatedAt    time.Time
	CampaignData map[string]any
}
