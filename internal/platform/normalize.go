package platform

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/creatorstation/reel-harvester/internal/models"
)

// RawVideo is the tagged union produced at the fetcher boundary. Exactly one
// variant is set; normalization switches on it exhaustively instead of
// chasing fields across two incompatible shapes.
type RawVideo struct {
	Instagram *InstagramMedia
	TikTok    *TikTokItem
}

// Platform reports which variant the raw video carries.
func (r RawVideo) Platform() models.Platform {
	if r.TikTok != nil {
		return models.PlatformTikTok
	}
	return models.PlatformInstagram
}

// CanonicalVideo is the unified, platform-agnostic shape all raw payloads
// normalize into. Raw is retained so immediate-mode archival can still reach
// platform-specific media urls (DASH renditions).
type CanonicalVideo struct {
	Platform        models.Platform
	PlatformVideoID string
	OriginalURL     string
	VideoURL        string
	ThumbnailURL    string
	Title           string
	Description     string
	Hashtags        []string
	Duration        int
	Metrics         models.VideoMetrics
	Author          models.AuthorSnapshot
	PublishedAt     time.Time
	Raw             RawVideo
}

const maxTitleLen = 100

// Normalize maps a raw video into the canonical record.
func Normalize(raw RawVideo) (CanonicalVideo, error) {
	switch {
	case raw.Instagram != nil:
		return normalizeInstagram(raw.Instagram), nil
	case raw.TikTok != nil:
		return normalizeTikTok(raw.TikTok), nil
	default:
		return CanonicalVideo{}, fmt.Errorf("raw video has no platform payload")
	}
}

// NormalizeAll normalizes a batch, logging and excluding malformed items.
func NormalizeAll(raws []RawVideo) []CanonicalVideo {
	videos := make([]CanonicalVideo, 0, len(raws))
	for _, raw := range raws {
		v, err := Normalize(raw)
		if err != nil {
			log.Printf("Skipping malformed raw video: %v", err)
			continue
		}
		videos = append(videos, v)
	}
	return videos
}

func normalizeInstagram(m *InstagramMedia) CanonicalVideo {
	caption := m.CaptionText()

	v := CanonicalVideo{
		Platform:        models.PlatformInstagram,
		PlatformVideoID: m.VideoID(),
		OriginalURL:     fmt.Sprintf("https://www.instagram.com/reel/%s/", m.Code),
		ThumbnailURL:    m.ThumbnailURL(),
		Title:           TruncateTitle(caption, maxTitleLen),
		Description:     caption,
		Hashtags:        ExtractHashtags(caption),
		Duration:        int(m.VideoDuration),
		PublishedAt:     epochToTime(m.TakenAt),
		Raw:             RawVideo{Instagram: m},
	}

	if len(m.VideoVersions) > 0 {
		v.VideoURL = m.VideoVersions[0].URL
	}

	views := m.PlayCount
	if views == 0 {
		views = m.ViewCount
	}
	v.Metrics = models.VideoMetrics{
		Views:    views,
		Likes:    m.LikeCount,
		Comments: m.CommentCount,
		Shares:   m.ReshareCount,
	}

	if u := m.AuthorUser(); u != nil {
		v.Author = models.AuthorSnapshot{
			Username:      u.Username,
			DisplayName:   u.FullName,
			FollowerCount: u.FollowerCount,
			IsVerified:    u.IsVerified,
		}
	}

	return v
}

func normalizeTikTok(t *TikTokItem) CanonicalVideo {
	v := CanonicalVideo{
		Platform:        models.PlatformTikTok,
		PlatformVideoID: t.ID,
		OriginalURL:     fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", t.Author.UniqueID, t.ID),
		VideoURL:        t.SourceURL(),
		ThumbnailURL:    t.Video.Cover,
		Title:           TruncateTitle(t.Desc, maxTitleLen),
		Description:     t.Desc,
		Duration:        t.Video.Duration,
		PublishedAt:     epochToTime(t.CreateTime),
		Raw:             RawVideo{TikTok: t},
		Metrics: models.VideoMetrics{
			Views:    t.Stats.PlayCount,
			Likes:    t.Stats.DiggCount,
			Comments: t.Stats.CommentCount,
			Shares:   t.Stats.ShareCount,
			Saves:    t.Stats.CollectCount,
		},
		Author: models.AuthorSnapshot{
			Username:      t.Author.UniqueID,
			DisplayName:   t.Author.Nickname,
			FollowerCount: t.AuthorStats.FollowerCount,
			IsVerified:    t.Author.Verified,
		},
	}

	// TikTok supplies structured hashtags as challenges; fall back to the
	// caption text when they are missing.
	if len(t.Challenges) > 0 {
		tags := make([]string, 0, len(t.Challenges))
		for _, ch := range t.Challenges {
			if ch.Title != "" {
				tags = append(tags, ch.Title)
			}
		}
		v.Hashtags = tags
	} else {
		v.Hashtags = ExtractHashtags(t.Desc)
	}

	return v
}

// hashtagRe matches #token sequences, Unicode-aware for non-Latin hashtags.
var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags pulls hashtag tokens (without the #) out of caption text.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// TruncateTitle bounds free text to max runes for storage economy.
func TruncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func epochToTime(epoch int64) time.Time {
	if epoch <= 0 {
		return time.Now()
	}
	return time.Unix(epoch, 0)
}
