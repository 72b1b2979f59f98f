package archiver

import "encoding/xml"

// Minimal DASH MPD shapes: only what rendition selection needs.
type dashMPD struct {
	Periods []struct {
		AdaptationSets []struct {
			Representations []dashRepresentation `xml:"Representation"`
		} `xml:"AdaptationSet"`
	} `xml:"Period"`
}

type dashRepresentation struct {
	Bandwidth int64  `xml:"bandwidth,attr"`
	MimeType  string `xml:"mimeType,attr"`
	BaseURL   string `xml:"BaseURL"`
}

// lowestDashRepresentation picks the lowest-bandwidth video rendition from a
// DASH manifest. The cheapest rendition keeps transfer cost and CDN budget
// down; quality is irrelevant for archival-plus-transcription purposes.
// Returns "" when the manifest is absent or unparseable.
func lowestDashRepresentation(manifest string) string {
	if manifest == "" {
		return ""
	}

	var mpd dashMPD
	if err := xml.Unmarshal([]byte(manifest), &mpd); err != nil {
		return ""
	}

	var best dashRepresentation
	for _, period := range mpd.Periods {
		for _, set := range period.AdaptationSets {
			for _, rep := range set.Representations {
				if rep.BaseURL == "" {
					continue
				}
				if rep.MimeType != "" && rep.MimeType != "video/mp4" {
					continue
				}
				if best.BaseURL == "" || rep.Bandwidth < best.Bandwidth {
					best = rep
				}
			}
		}
	}

	return best.BaseURL
}
