package platform

import (
	"context"
	"fmt"
)

// ScrapeResult is the unified scrape output, keyed only by post URL. A reel
// that is actually a carousel or image post comes back without a video url.
type ScrapeResult struct {
	Platform     string `json:"platform"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Caption      string `json:"caption"`
	Title        string `json:"title"`
	Author       string `json:"author"`
}

type scrapeResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    ScrapeResult `json:"data"`
}

// Scrape asks the scraping service for fresh media urls of a single post.
// Used by deferred archival, where the urls captured at fetch time may
// already have expired.
func (c *Client) Scrape(ctx context.Context, postURL string) (*ScrapeResult, error) {
	var out scrapeResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"url": postURL}).
		SetResult(&out).
		Post("/scrape")
	if err != nil {
		return nil, fmt.Errorf("scrape failed: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("scrape failed: %s, %s", resp.Status(), resp.String())
	}
	if !out.Success {
		return nil, fmt.Errorf("scrape failed: %s", out.Message)
	}

	return &out.Data, nil
}
