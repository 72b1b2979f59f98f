package platform

import (
	"context"
	"fmt"
)

// TikTokItem is the raw TikTok feed shape: everything flat under author,
// authorStats, stats and video.
type TikTokItem struct {
	ID         string `json:"id"`
	Desc       string `json:"desc"`
	CreateTime int64  `json:"createTime"`

	Author struct {
		UniqueID string `json:"uniqueId"`
		Nickname string `json:"nickname"`
		Verified bool   `json:"verified"`
	} `json:"author"`

	AuthorStats struct {
		FollowerCount int64 `json:"followerCount"`
	} `json:"authorStats"`

	Stats struct {
		PlayCount    int64 `json:"playCount"`
		DiggCount    int64 `json:"diggCount"`
		CommentCount int64 `json:"commentCount"`
		ShareCount   int64 `json:"shareCount"`
		CollectCount int64 `json:"collectCount"`
	} `json:"stats"`

	Video struct {
		PlayAddr     string `json:"playAddr"`
		DownloadAddr string `json:"downloadAddr"`
		Cover        string `json:"cover"`
		Duration     int    `json:"duration"`
	} `json:"video"`

	Challenges []struct {
		Title string `json:"title"`
	} `json:"challenges"`
}

type tiktokFeedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ItemList []TikTokItem `json:"itemList"`
	} `json:"data"`
}

func (c *Client) fetchTikTokFeed(ctx context.Context, username string) ([]RawVideo, error) {
	var out tiktokFeedResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"username": username,
			"count":    fetchLimit,
		}).
		SetResult(&out).
		Post("/tiktok/feed")
	if err != nil {
		return nil, fmt.Errorf("tiktok feed fetch failed: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiktok feed fetch failed: %s, %s", resp.Status(), resp.String())
	}
	if !out.Success {
		return nil, fmt.Errorf("tiktok feed fetch failed: %s", out.Message)
	}

	items := out.Data.ItemList
	if len(items) > fetchLimit {
		items = items[:fetchLimit]
	}

	raws := make([]RawVideo, 0, len(items))
	for i := range items {
		raws = append(raws, RawVideo{TikTok: &items[i]})
	}
	return raws, nil
}

// SourceURL returns the best direct media url of the item, preferring the
// watermark-free download address.
func (t *TikTokItem) SourceURL() string {
	if t.Video.DownloadAddr != "" {
		return t.Video.DownloadAddr
	}
	return t.Video.PlayAddr
}
