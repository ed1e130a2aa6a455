// Package vast renders VAST documents for signage creatives.
package vast

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/radiusdt/nexus-backend/internal/models"
)

// Source says where a rendered document came from.
type Source string

const (
	SourceRaw         Source = "raw"
	SourceSynthesized Source = "synthesized"
)

// Options controls the fixed parts of a synthesized document.
type Options struct {
	ImpressionBaseURL string
	AdSystemName      string
	AdSystemVersion   string
	Width             int
	Height            int
	FallbackTitle     string
}

// DefaultOptions frames every asset as a 1080x1920 portrait screen.
var DefaultOptions = Options{
	ImpressionBaseURL: "https://api.adonmo.com/impression",
	AdSystemName:      "Creative Content Manager",
	AdSystemVersion:   "1.0",
	Width:             1080,
	Height:            1920,
	FallbackTitle:     "Creative",
}

// Render returns the VAST document for c. A stored raw document is returned
// byte for byte; otherwise one is synthesized from the creative metadata.
func Render(c *models.Creative, assetID string, opts Options) ([]byte, Source, error) {
	if c == nil {
		return nil, "", fmt.Errorf("render %q: nil creative", assetID)
	}
	if c.VASTXML != "" {
		return []byte(c.VASTXML), SourceRaw, nil
	}
	doc, err := Synthesize(c, assetID, opts)
	if err != nil {
		return nil, "", err
	}
	return doc, SourceSynthesized, nil
}

// Synthesize builds a VAST 4.0 inline document for c. All interpolated
// values are escaped by the XML encoder; URLs are emitted as CDATA.
func Synthesize(c *models.Creative, assetID string, opts Options) ([]byte, error) {
	title := c.Filename
	if title == "" {
		title = opts.FallbackTitle
	}

	doc := VAST{
		Version: "4.0",
		Ads: []Ad{{
			ID: assetID,
			InLine: &InLine{
				AdSystem: AdSystem{Version: opts.AdSystemVersion, Name: opts.AdSystemName},
				AdTitle:  title,
				Impression: []Impression{{
					URL: ImpressionURL(opts.ImpressionBaseURL, c.CampaignRun),
				}},
				Creatives: Creatives{Creative: []Creative{{
					ID: assetID + "-creative",
					Linear: &Linear{
						Duration: FormatDuration(c.Duration),
						MediaFiles: MediaFiles{MediaFile: []MediaFile{{
							Delivery: "progressive",
							Type:     c.Type.MIMEType(),
							Width:    opts.Width,
							Height:   opts.Height,
							URL:      c.FileURL,
						}}},
					},
				}}},
			},
		}},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode VAST for %q: %w", assetID, err)
	}
	return buf.Bytes(), nil
}

// FormatDuration converts milliseconds to an HH:MM:SS timecode, truncating
// sub-second remainders. Hours are not wrapped at 24.
func FormatDuration(millis int64) string {
	if millis < 0 {
		millis = 0
	}
	secs := millis / 1000
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// ImpressionURL appends the path-escaped campaign run to base.
func ImpressionURL(base, campaignRun string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(campaignRun)
}
