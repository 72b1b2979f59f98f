package platform

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/creatorstation/reel-harvester/internal/models"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two tags",
			text: "loving #sunsets and #viral_clips today",
			want: []string{"sunsets", "viral_clips"},
		},
		{
			name: "no tags",
			text: "plain caption",
			want: []string{},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "unicode",
			text: "gün batımı #günbatımı",
			want: []string{"günbatımı"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.text)
			if got == nil {
				t.Fatal("ExtractHashtags returned nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	if got := TruncateTitle("short", 100); got != "short" {
		t.Errorf("TruncateTitle(short) = %q", got)
	}

	long := strings.Repeat("a", 150)
	if got := TruncateTitle(long, 100); len(got) != 100 {
		t.Errorf("TruncateTitle(long) length = %d, want 100", len(got))
	}

	// Rune-safe: must not split multi-byte characters.
	turkish := strings.Repeat("ğ", 150)
	got := TruncateTitle(turkish, 100)
	if runes := []rune(got); len(runes) != 100 {
		t.Errorf("TruncateTitle(multibyte) rune length = %d, want 100", len(runes))
	}
}

func TestNormalizeInstagram(t *testing.T) {
	m := &InstagramMedia{
		ID:            "123_456",
		PK:            "123",
		Code:          "Cabc123",
		TakenAt:       1700000000,
		VideoDuration: 17.8,
		LikeCount:     500,
		CommentCount:  40,
		PlayCount:     12000,
		ReshareCount:  9,
		VideoVersions: []InstagramVideoVersion{{URL: "https://cdn.example.com/v.mp4"}},
		Caption: &struct {
			Text string `json:"text"`
		}{Text: "behind the scenes #bts"},
		User: &InstagramUser{
			Username:      "jane",
			FullName:      "Jane Doe",
			FollowerCount: 9000,
			IsVerified:    true,
		},
	}

	v, err := Normalize(RawVideo{Instagram: m})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if v.Platform != models.PlatformInstagram {
		t.Errorf("Platform = %v", v.Platform)
	}
	if v.PlatformVideoID != "123" {
		t.Errorf("PlatformVideoID = %q, want pk", v.PlatformVideoID)
	}
	if v.OriginalURL != "https://www.instagram.com/reel/Cabc123/" {
		t.Errorf("OriginalURL = %q", v.OriginalURL)
	}
	if v.VideoURL != "https://cdn.example.com/v.mp4" {
		t.Errorf("VideoURL = %q", v.VideoURL)
	}
	if v.Metrics.Views != 12000 || v.Metrics.Likes != 500 || v.Metrics.Shares != 9 {
		t.Errorf("Metrics = %+v", v.Metrics)
	}
	if v.Author.Username != "jane" || !v.Author.IsVerified {
		t.Errorf("Author = %+v", v.Author)
	}
	if !reflect.DeepEqual(v.Hashtags, []string{"bts"}) {
		t.Errorf("Hashtags = %v", v.Hashtags)
	}
	if v.Duration != 17 {
		t.Errorf("Duration = %d", v.Duration)
	}
	if !v.PublishedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("PublishedAt = %v", v.PublishedAt)
	}
}

func TestNormalizeInstagramViewCountFallback(t *testing.T) {
	m := &InstagramMedia{PK: "1", Code: "C1", ViewCount: 777}

	v, err := Normalize(RawVideo{Instagram: m})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if v.Metrics.Views != 777 {
		t.Errorf("Views = %d, want view_count fallback 777", v.Metrics.Views)
	}
}

func TestNormalizeTikTok(t *testing.T) {
	item := &TikTokItem{
		ID:         "728001",
		Desc:       "new dance #fyp #dance",
		CreateTime: 1700000100,
	}
	item.Author.UniqueID = "joe"
	item.Author.Nickname = "Joe"
	item.Author.Verified = true
	item.AuthorStats.FollowerCount = 4000
	item.Stats.PlayCount = 99
	item.Stats.DiggCount = 12
	item.Stats.CollectCount = 3
	item.Video.PlayAddr = "https://tt.example.com/play.mp4"
	item.Video.DownloadAddr = "https://tt.example.com/dl.mp4"
	item.Video.Cover = "https://tt.example.com/cover.jpg"
	item.Video.Duration = 21
	item.Challenges = []struct {
		Title string `json:"title"`
	}{{Title: "fyp"}, {Title: "dance"}}

	v, err := Normalize(RawVideo{TikTok: item})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if v.Platform != models.PlatformTikTok {
		t.Errorf("Platform = %v", v.Platform)
	}
	if v.OriginalURL != "https://www.tiktok.com/@joe/video/728001" {
		t.Errorf("OriginalURL = %q", v.OriginalURL)
	}
	if v.VideoURL != "https://tt.example.com/dl.mp4" {
		t.Errorf("VideoURL = %q, want download addr preferred", v.VideoURL)
	}
	if v.Metrics.Saves != 3 {
		t.Errorf("Saves = %d", v.Metrics.Saves)
	}
	if !reflect.DeepEqual(v.Hashtags, []string{"fyp", "dance"}) {
		t.Errorf("Hashtags = %v, want challenges preferred over caption", v.Hashtags)
	}
}

func TestNormalizeTikTokHashtagFallback(t *testing.T) {
	item := &TikTokItem{ID: "1", Desc: "caption with #onlytag"}
	item.Author.UniqueID = "joe"

	v, err := Normalize(RawVideo{TikTok: item})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(v.Hashtags, []string{"onlytag"}) {
		t.Errorf("Hashtags = %v, want caption fallback", v.Hashtags)
	}
}

func TestNormalizeEmptyRaw(t *testing.T) {
	if _, err := Normalize(RawVideo{}); err == nil {
		t.Error("Normalize(empty) expected error")
	}
}

func TestNormalizeAllSkipsMalformed(t *testing.T) {
	raws := []RawVideo{
		{Instagram: &InstagramMedia{PK: "1", Code: "C1"}},
		{},
		{TikTok: func() *TikTokItem {
			it := &TikTokItem{ID: "2"}
			it.Author.UniqueID = "joe"
			return it
		}()},
	}

	videos := NormalizeAll(raws)
	if len(videos) != 2 {
		t.Fatalf("NormalizeAll returned %d videos, want 2", len(videos))
	}
	if videos[0].PlatformVideoID != "1" || videos[1].PlatformVideoID != "2" {
		t.Errorf("order not preserved: %q, %q", videos[0].PlatformVideoID, videos[1].PlatformVideoID)
	}
}

func TestEpochToTimeZero(t *testing.T) {
	before := time.Now().Add(-time.Second)
	got := epochToTime(0)
	if got.Before(before) {
		t.Errorf("epochToTime(0) = %v, want roughly now", got)
	}
}
