package archiver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/creatorstation/reel-harvester/internal/bunny"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
)

type mockCDN struct {
	mu         sync.Mutex
	uploads    []string
	thumbnails []string
	failFor    map[string]bool
}

func (m *mockCDN) StreamFromURL(ctx context.Context, sourceURL, filename string) (*bunny.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[sourceURL] {
		return nil, errors.New("cdn unavailable")
	}
	m.uploads = append(m.uploads, sourceURL)
	return &bunny.UploadResult{
		GUID:      "guid-" + filename,
		IframeURL: "https://iframe.example.com/embed/1/" + filename,
		DirectURL: "https://cdn.example.com/" + filename,
	}, nil
}

func (m *mockCDN) UploadThumbnail(ctx context.Context, guid, thumbnailURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thumbnails = append(m.thumbnails, guid)
	return nil
}

type mockScraper struct {
	mu       sync.Mutex
	results  map[string]*platform.ScrapeResult
	errFor   map[string]error
	requests []string
}

func (m *mockScraper) Scrape(ctx context.Context, postURL string) (*platform.ScrapeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, postURL)
	if err := m.errFor[postURL]; err != nil {
		return nil, err
	}
	if r, ok := m.results[postURL]; ok {
		return r, nil
	}
	return &platform.ScrapeResult{VideoURL: postURL + "/media.mp4"}, nil
}

func tiktokVideo(id string) platform.CanonicalVideo {
	return platform.CanonicalVideo{
		Platform:        models.PlatformTikTok,
		PlatformVideoID: id,
		OriginalURL:     "https://www.tiktok.com/@joe/video/" + id,
		VideoURL:        "https://tt.example.com/" + id + ".mp4",
	}
}

func TestArchiveDeferredScrapesOriginalURL(t *testing.T) {
	cdn := &mockCDN{}
	scraper := &mockScraper{}
	a := New(cdn, scraper)

	v := tiktokVideo("1")
	res, err := a.Archive(context.Background(), v, ModeDeferred)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if res.Degraded {
		t.Error("unexpected degraded result")
	}
	if res.GUID == "" || res.IframeURL == "" || res.DirectURL == "" {
		t.Errorf("missing CDN fields: %+v", res)
	}
	if len(scraper.requests) != 1 || scraper.requests[0] != v.OriginalURL {
		t.Errorf("scrape requests = %v, want [%s]", scraper.requests, v.OriginalURL)
	}
}

func TestArchiveImmediateSkipsScrape(t *testing.T) {
	cdn := &mockCDN{}
	scraper := &mockScraper{}
	a := New(cdn, scraper)

	v := tiktokVideo("1")
	if _, err := a.Archive(context.Background(), v, ModeImmediate); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(scraper.requests) != 0 {
		t.Errorf("immediate mode scraped: %v", scraper.requests)
	}
	if len(cdn.uploads) != 1 || cdn.uploads[0] != v.VideoURL {
		t.Errorf("uploads = %v, want payload url", cdn.uploads)
	}
}

func TestArchiveCDNFailureDegrades(t *testing.T) {
	v := tiktokVideo("1")
	cdn := &mockCDN{failFor: map[string]bool{v.VideoURL: true}}
	a := New(cdn, &mockScraper{})

	res, err := a.Archive(context.Background(), v, ModeImmediate)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !res.Degraded {
		t.Fatal("expected degraded result on CDN failure")
	}
	if res.GUID != "" || res.IframeURL != "" || res.DirectURL != "" {
		t.Errorf("degraded result carries CDN fields: %+v", res)
	}
	if res.Video.OriginalURL == "" {
		t.Error("degraded result lost original url")
	}
}

func TestArchiveNoPlayableMedia(t *testing.T) {
	scraper := &mockScraper{results: map[string]*platform.ScrapeResult{
		"https://www.tiktok.com/@joe/video/1": {VideoURL: ""},
	}}
	a := New(&mockCDN{}, scraper)

	_, err := a.Archive(context.Background(), tiktokVideo("1"), ModeDeferred)
	if !errors.Is(err, ErrNoPlayableMedia) {
		t.Fatalf("err = %v, want ErrNoPlayableMedia", err)
	}
}

func TestArchiveImmediateInstagramPrefersDash(t *testing.T) {
	manifest := `<MPD><Period><AdaptationSet>
		<Representation bandwidth="800000" mimeType="video/mp4"><BaseURL>https://ig.example.com/high.mp4</BaseURL></Representation>
		<Representation bandwidth="200000" mimeType="video/mp4"><BaseURL>https://ig.example.com/low.mp4</BaseURL></Representation>
	</AdaptationSet></Period></MPD>`

	m := &platform.InstagramMedia{
		PK:                "9",
		Code:              "C9",
		VideoDashManifest: manifest,
		VideoVersions:     []platform.InstagramVideoVersion{{URL: "https://ig.example.com/versions.mp4"}},
	}
	v := platform.CanonicalVideo{
		Platform:        models.PlatformInstagram,
		PlatformVideoID: "9",
		OriginalURL:     "https://www.instagram.com/reel/C9/",
		VideoURL:        "https://ig.example.com/versions.mp4",
		Raw:             platform.RawVideo{Instagram: m},
	}

	cdn := &mockCDN{}
	a := New(cdn, &mockScraper{})
	if _, err := a.Archive(context.Background(), v, ModeImmediate); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(cdn.uploads) != 1 || cdn.uploads[0] != "https://ig.example.com/low.mp4" {
		t.Errorf("uploads = %v, want lowest-bandwidth rendition", cdn.uploads)
	}
}

func TestArchiveBatchIsolatesFailures(t *testing.T) {
	videos := make([]platform.CanonicalVideo, 7)
	for i := range videos {
		videos[i] = tiktokVideo(fmt.Sprintf("%d", i))
	}

	// Item 2 has no playable media, item 5 fails the scrape outright.
	scraper := &mockScraper{
		results: map[string]*platform.ScrapeResult{
			videos[2].OriginalURL: {VideoURL: ""},
		},
		errFor: map[string]error{
			videos[5].OriginalURL: errors.New("scrape blocked"),
		},
	}
	a := New(&mockCDN{}, scraper)

	results := a.ArchiveBatch(context.Background(), videos, ModeDeferred)
	if len(results) != 5 {
		t.Fatalf("ArchiveBatch returned %d results, want 5", len(results))
	}

	// Order of survivors follows input order.
	want := []string{"0", "1", "3", "4", "6"}
	for i, r := range results {
		if r.Video.PlatformVideoID != want[i] {
			t.Errorf("results[%d] = %s, want %s", i, r.Video.PlatformVideoID, want[i])
		}
	}
}

func TestArchiveBatchEmpty(t *testing.T) {
	a := New(&mockCDN{}, &mockScraper{})
	if results := a.ArchiveBatch(context.Background(), nil, ModeDeferred); len(results) != 0 {
		t.Errorf("ArchiveBatch(nil) = %v", results)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(models.PlatformInstagram) != ModeImmediate {
		t.Error("instagram should archive immediately")
	}
	if ModeFor(models.PlatformTikTok) != ModeDeferred {
		t.Error("tiktok should defer to scrape")
	}
}
