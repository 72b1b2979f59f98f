package platform

import (
	"context"
	"fmt"
	"strconv"

	"github.com/creatorstation/reel-harvester/internal/models"
)

// InstagramUser is the nested user/owner object on Instagram payloads.
type InstagramUser struct {
	PK            string `json:"pk"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	FollowerCount int64  `json:"follower_count"`
	IsVerified    bool   `json:"is_verified"`
}

// InstagramVideoVersion is one playable rendition of an Instagram video.
type InstagramVideoVersion struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// InstagramMedia is the raw Instagram reel shape: ids at the top level,
// author under user/owner, media urls under video_versions/image_versions2,
// and an optional DASH manifest with all renditions.
type InstagramMedia struct {
	ID                string                  `json:"id"`
	PK                string                  `json:"pk"`
	Code              string                  `json:"code"`
	TakenAt           int64                   `json:"taken_at"`
	VideoDuration     float64                 `json:"video_duration"`
	LikeCount         int64                   `json:"like_count"`
	CommentCount      int64                   `json:"comment_count"`
	PlayCount         int64                   `json:"play_count"`
	ViewCount         int64                   `json:"view_count"`
	ReshareCount      int64                   `json:"reshare_count"`
	VideoDashManifest string                  `json:"video_dash_manifest"`
	VideoVersions     []InstagramVideoVersion `json:"video_versions"`

	Caption *struct {
		Text string `json:"text"`
	} `json:"caption"`

	User  *InstagramUser `json:"user"`
	Owner *InstagramUser `json:"owner"`

	ImageVersions2 *struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
}

type instagramUserResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    InstagramUser `json:"user"`
}

type instagramReelsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Items []InstagramMedia `json:"items"`
	} `json:"data"`
}

func (c *Client) resolveInstagram(ctx context.Context, username string) (*Identity, error) {
	var out instagramUserResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("username", username).
		SetResult(&out).
		Get("/instagram/user")
	if err != nil {
		return nil, fmt.Errorf("Failed to resolve Instagram user: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("Failed to resolve Instagram user: %s, %s", resp.Status(), resp.String())
	}
	if !out.Success {
		return nil, fmt.Errorf("Failed to resolve Instagram user: %s", out.Message)
	}
	if out.User.PK == "" {
		return nil, fmt.Errorf("Failed to resolve Instagram user: no user id for %s", username)
	}

	return &Identity{
		Platform:       models.PlatformInstagram,
		Username:       username,
		PlatformUserID: out.User.PK,
		DisplayName:    out.User.FullName,
		FollowerCount:  out.User.FollowerCount,
		IsVerified:     out.User.IsVerified,
	}, nil
}

func (c *Client) fetchInstagramReels(ctx context.Context, userID string) ([]RawVideo, error) {
	var out instagramReelsResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id": userID,
			"count":   strconv.Itoa(fetchLimit),
		}).
		SetResult(&out).
		Get("/instagram/reels")
	if err != nil {
		return nil, fmt.Errorf("instagram reels fetch failed: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("instagram reels fetch failed: %s, %s", resp.Status(), resp.String())
	}
	if !out.Success {
		return nil, fmt.Errorf("instagram reels fetch failed: %s", out.Message)
	}

	items := out.Data.Items
	if len(items) > fetchLimit {
		items = items[:fetchLimit]
	}

	raws := make([]RawVideo, 0, len(items))
	for i := range items {
		raws = append(raws, RawVideo{Instagram: &items[i]})
	}
	return raws, nil
}

// VideoID returns the stable platform id of the media, preferring pk over
// the composite id field.
func (m *InstagramMedia) VideoID() string {
	if m.PK != "" {
		return m.PK
	}
	return m.ID
}

// CaptionText returns the caption body, or "" when the post has none.
func (m *InstagramMedia) CaptionText() string {
	if m.Caption == nil {
		return ""
	}
	return m.Caption.Text
}

// AuthorUser returns the author object, falling back from user to owner.
func (m *InstagramMedia) AuthorUser() *InstagramUser {
	if m.User != nil {
		return m.User
	}
	return m.Owner
}

// ThumbnailURL returns the first still candidate, or "".
func (m *InstagramMedia) ThumbnailURL() string {
	if m.ImageVersions2 == nil || len(m.ImageVersions2.Candidates) == 0 {
		return ""
	}
	return m.ImageVersions2.Candidates[0].URL
}
