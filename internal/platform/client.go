package platform

import (
	"context"
	"fmt"

	"github.com/creatorstation/reel-harvester/internal/config"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/go-resty/resty/v2"
)

// Client talks to the scraping service that fronts the platform APIs.
type Client struct {
	http *resty.Client
}

// NewClient creates a scraping service client.
func NewClient(cfg config.ScraperConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "reel-harvester")

	if cfg.APIKey != "" {
		http.SetHeader("x-api-key", cfg.APIKey)
	}

	return &Client{http: http}
}

// Resolve turns a raw username into a platform identity. When no explicit
// platform is given the username heuristic decides. Instagram needs an extra
// remote lookup for its numeric user id; a failure there is terminal for the
// request because all later fetches key on that id.
func (c *Client) Resolve(ctx context.Context, username string, explicit models.Platform) (*Identity, error) {
	p := explicit
	if p == "" {
		p = DetectPlatform(username)
	}
	username = NormalizeUsername(username)

	switch p {
	case models.PlatformInstagram:
		return c.resolveInstagram(ctx, username)
	case models.PlatformTikTok:
		return &Identity{
			Platform:       models.PlatformTikTok,
			Username:       username,
			PlatformUserID: username,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", p)
	}
}

// FetchRecent retrieves up to fetchLimit recent raw videos for a resolved
// identity. Failures are surfaced verbatim and never retried here: a bad
// fetch should fail fast and let the caller retry the follow action.
func (c *Client) FetchRecent(ctx context.Context, id Identity) ([]RawVideo, error) {
	switch id.Platform {
	case models.PlatformInstagram:
		return c.fetchInstagramReels(ctx, id.PlatformUserID)
	case models.PlatformTikTok:
		return c.fetchTikTokFeed(ctx, id.Username)
	default:
		return nil, fmt.Errorf("unsupported platform %q", id.Platform)
	}
}

// fetchLimit bounds how many recent videos one fetch cycle pulls.
const fetchLimit = 10
