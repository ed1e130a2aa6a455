package vast

import "encoding/xml"

// VAST 4.x document, reduced to the elements a signage player reads.
type VAST struct {
	XMLName xml.Name `xml:"VAST"`
	Version string   `xml:"version,attr"`
	Ads     []Ad     `xml:"Ad"`
}

// Ad represents a VAST advertisement
type Ad struct {
	ID     string  `xml:"id,attr"`
	InLine *InLine `xml:"InLine,omitempty"`
}

// InLine contains all data to display the ad
type InLine struct {
	AdSystem   AdSystem     `xml:"AdSystem"`
	AdTitle    string       `xml:"AdTitle"`
	Impression []Impression `xml:"Impression"`
	Creatives  Creatives    `xml:"Creatives"`
}

// AdSystem info
type AdSystem struct {
	Version string `xml:"version,attr,omitempty"`
	Name    string `xml:",chardata"`
}

// Impression tracking pixel
type Impression struct {
	ID  string `xml:"id,attr,omitempty"`
	URL string `xml:",cdata"`
}

// Creatives container
type Creatives struct {
	Creative []Creative `xml:"Creative"`
}

// Creative element
type Creative struct {
	ID     string  `xml:"id,attr,omitempty"`
	Linear *Linear `xml:"Linear,omitempty"`
}

// Linear ad
type Linear struct {
	Duration   string     `xml:"Duration"`
	MediaFiles MediaFiles `xml:"MediaFiles"`
}

// MediaFiles container
type MediaFiles struct {
	MediaFile []MediaFile `xml:"MediaFile"`
}

// MediaFile points at the asset itself
type MediaFile struct {
	Delivery string `xml:"delivery,attr"`
	Type     string `xml:"type,attr"`
	Width    int    `xml:"width,attr"`
	Height   int    `xml:"height,attr"`
	URL      string `xml:",cdata"`
}
