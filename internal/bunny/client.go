package bunny

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/creatorstation/reel-harvester/internal/config"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/pkg/img"
	"github.com/creatorstation/reel-harvester/pkg/retry"
	"github.com/creatorstation/reel-harvester/pkg/web"
	"github.com/go-resty/resty/v2"
)

// thumbnailMaxMPXS caps thumbnail size before upload; platform stills can be
// full-resolution frames.
const thumbnailMaxMPXS = 2.0

// UploadResult is what the CDN hands back for a successfully stored video.
type UploadResult struct {
	GUID      string
	IframeURL string
	DirectURL string
}

// Client talks to the Bunny Stream API.
type Client struct {
	http      *resty.Client
	libraryID string
}

// NewClient creates a Bunny Stream client.
func NewClient(cfg config.BunnyConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.StreamBase).
		SetTimeout(cfg.Timeout).
		SetHeader("AccessKey", cfg.APIKey)

	return &Client{http: http, libraryID: cfg.LibraryID}
}

type fetchResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmbedURL  string `json:"embed_url"`
	DirectURL string `json:"direct_url"`
}

// StreamFromURL tells the CDN to pull the video from sourceURL and store it
// under filename. The video GUID is recovered from the returned embed url.
func (c *Client) StreamFromURL(ctx context.Context, sourceURL, filename string) (*UploadResult, error) {
	var out fetchResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"url":   sourceURL,
			"title": filename,
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/library/%s/videos/fetch", c.libraryID))
	if err != nil {
		return nil, fmt.Errorf("bunny fetch failed: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bunny fetch failed: %s, %s", resp.Status(), resp.String())
	}
	if !out.Success {
		return nil, fmt.Errorf("bunny fetch failed: %s", out.Message)
	}

	guid, err := ParseVideoGUID(out.EmbedURL)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		GUID:      guid,
		IframeURL: out.EmbedURL,
		DirectURL: out.DirectURL,
	}, nil
}

// UploadThumbnail downloads the thumbnail, downsizes it if oversized and
// sets it on the CDN video with bounded retry. Callers treat a failure here
// as non-fatal: the video keeps the CDN default thumbnail.
func (c *Client) UploadThumbnail(ctx context.Context, guid, thumbnailURL string) error {
	data, err := web.FetchMedia(thumbnailURL)
	if err != nil {
		return fmt.Errorf("fetch thumbnail: %v", err)
	}

	return c.UploadThumbnailData(ctx, guid, data)
}

// UploadThumbnailData sets an in-memory image as the CDN video thumbnail.
func (c *Client) UploadThumbnailData(ctx context.Context, guid string, data []byte) error {
	if scaled, err := img.Downscale(&data, thumbnailMaxMPXS); err == nil {
		data = *scaled
	} else {
		log.Printf("Thumbnail downscale failed for %s, uploading original: %v", guid, err)
	}

	_, err := retry.Do(ctx, retry.Config{
		MaxAttempts:   3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}, func() (struct{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "image/jpeg").
			SetBody(data).
			Post(fmt.Sprintf("/library/%s/videos/%s/thumbnail", c.libraryID, guid))
		if err != nil {
			return struct{}{}, err
		}
		if resp.IsError() {
			return struct{}{}, fmt.Errorf("thumbnail upload failed: %s, %s", resp.Status(), resp.String())
		}
		return struct{}{}, nil
	})
	return err
}

// embedGUIDRe matches the CDN embed url path shape /embed/<collection>/<guid>.
var embedGUIDRe = regexp.MustCompile(`/embed/[^/]+/([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)

// ParseVideoGUID recovers the CDN's internal video GUID from an embed url.
func ParseVideoGUID(embedURL string) (string, error) {
	m := embedGUIDRe.FindStringSubmatch(embedURL)
	if m == nil {
		return "", fmt.Errorf("no video guid in embed url %q", embedURL)
	}
	return m[1], nil
}

// Filename generates the CDN storage name for a video. The epoch-millis
// suffix keeps repeated archivals of the same video from colliding.
func Filename(platform models.Platform, platformVideoID string) string {
	return fmt.Sprintf("%s_%s_%d.mp4", platform, platformVideoID, time.Now().UnixMilli())
}
