package models

// PlanEntry is one slot of the playback loop.
type PlanEntry struct {
	CampaignRun    string `json:"campaign_run"`
	DurationMillis int64  `json:"duration_millis"`
}

// VistarConfig configures the external ad network. It is always disabled.
type VistarConfig struct {
	Enabled     bool   `json:"enabled"`
	BaseURL     string `json:"base_url"`
	PublisherID string `json:"publisher_id"`
}

// AmbientAudioSettings describes background audio played between creatives.
type AmbientAudioSettings struct {
	Enabled         bool    `json:"enabled"`
	AmbientUUID     any     `json:"ambient_uuid"`
	AmbientURL      string  `json:"ambient_url"`
	AmbientAudioVol float64 `json:"ambient_audio_vol"`
}

// ContentPlan is everything a screen needs to render its loop.
type ContentPlan struct {
	PublisherContent       []PlanEntry               `json:"publisher_content"`
	CampaignData           map[string]map[string]any `json:"campaign_data"`
	CampaignOrders         []any                     `json:"campaign_orders"`
	SuperLoop              []PlanEntry               `json:"super_loop"`
	PriorityCampaignOrders []any                     `json:"priority_campaign_orders"`
	VistarConfig           VistarConfig              `json:"vistar_config"`
	AmbientAudioSettings   *AmbientAudioSettings     `json:"ambient_audio_settings"`
}
