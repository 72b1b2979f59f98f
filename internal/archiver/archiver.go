package archiver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/creatorstation/reel-harvester/internal/bunny"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
)

// ErrNoPlayableMedia marks a post with no video to archive (carousels and
// image posts). It is a skip, not a failure.
var ErrNoPlayableMedia = errors.New("no playable media found")

// chunkSize bounds simultaneous outbound connections to the CDN and scraper
// during batch processing.
const chunkSize = 3

// Mode selects how the source media url is obtained.
type Mode int

const (
	// ModeDeferred re-scrapes the post by its original url at archival
	// time. Used for batch/background processing.
	ModeDeferred Mode = iota
	// ModeImmediate extracts the media url straight from the raw payload.
	// Used for the initial Instagram follow fetch, whose signed urls decay
	// within minutes and cannot wait for a scrape round trip.
	ModeImmediate
)

// CDNUploader stores media on the CDN.
type CDNUploader interface {
	StreamFromURL(ctx context.Context, sourceURL, filename string) (*bunny.UploadResult, error)
	UploadThumbnail(ctx context.Context, guid, thumbnailURL string) error
}

// MediaScraper resolves fresh media urls for a post url.
type MediaScraper interface {
	Scrape(ctx context.Context, postURL string) (*platform.ScrapeResult, error)
}

// Archiver streams source media to the CDN.
type Archiver struct {
	cdn     CDNUploader
	scraper MediaScraper
}

// New creates an Archiver.
func New(cdn CDNUploader, scraper MediaScraper) *Archiver {
	return &Archiver{cdn: cdn, scraper: scraper}
}

// Result is one archived video. Degraded means the CDN upload failed and
// the record falls back to the original platform url for playback.
type Result struct {
	Video        platform.CanonicalVideo
	GUID         string
	IframeURL    string
	DirectURL    string
	ThumbnailURL string
	Degraded     bool
}

// Archive stores one video's media on the CDN. A CDN failure degrades the
// result instead of dropping the video; ErrNoPlayableMedia is returned when
// the post has no video at all.
func (a *Archiver) Archive(ctx context.Context, v platform.CanonicalVideo, mode Mode) (*Result, error) {
	sourceURL, thumbnailURL, err := a.resolveSource(ctx, v, mode)
	if err != nil {
		return nil, err
	}
	if thumbnailURL == "" {
		thumbnailURL = v.ThumbnailURL
	}

	res := &Result{Video: v, ThumbnailURL: thumbnailURL}

	filename := bunny.Filename(v.Platform, v.PlatformVideoID)
	upload, err := a.cdn.StreamFromURL(ctx, sourceURL, filename)
	if err != nil {
		// The video is still stored downstream with original_url as its
		// only playable reference, never silently dropped.
		log.Printf("CDN upload failed for %s %s, storing degraded record: %v", v.Platform, v.PlatformVideoID, err)
		res.Degraded = true
		return res, nil
	}

	res.GUID = upload.GUID
	res.IframeURL = upload.IframeURL
	res.DirectURL = upload.DirectURL

	if thumbnailURL != "" {
		// Thumbnail failure never fails the video; it degrades to the CDN
		// default thumbnail.
		if err := a.cdn.UploadThumbnail(ctx, upload.GUID, thumbnailURL); err != nil {
			log.Printf("Thumbnail upload failed for %s: %v", upload.GUID, err)
		}
	}

	return res, nil
}

func (a *Archiver) resolveSource(ctx context.Context, v platform.CanonicalVideo, mode Mode) (string, string, error) {
	if mode == ModeImmediate {
		url := immediateSourceURL(v)
		if url == "" {
			return "", "", ErrNoPlayableMedia
		}
		return url, "", nil
	}

	scraped, err := a.scraper.Scrape(ctx, v.OriginalURL)
	if err != nil {
		return "", "", fmt.Errorf("scrape %s: %v", v.OriginalURL, err)
	}
	if scraped.VideoURL == "" {
		return "", "", ErrNoPlayableMedia
	}
	return scraped.VideoURL, scraped.ThumbnailURL, nil
}

// immediateSourceURL extracts a media url straight from the raw payload,
// preferring the DASH manifest's cheapest rendition over video_versions.
func immediateSourceURL(v platform.CanonicalVideo) string {
	if m := v.Raw.Instagram; m != nil {
		if url := lowestDashRepresentation(m.VideoDashManifest); url != "" {
			return url
		}
		if len(m.VideoVersions) > 0 {
			return m.VideoVersions[0].URL
		}
		return ""
	}
	return v.VideoURL
}

// ArchiveBatch processes videos in fixed-size chunks: items within a chunk
// run concurrently, chunks run one after another. Each item's failure is
// isolated; skips and failures are logged and excluded from the result set.
func (a *Archiver) ArchiveBatch(ctx context.Context, videos []platform.CanonicalVideo, mode Mode) []Result {
	results := make([]*Result, len(videos))

	for start := 0; start < len(videos); start += chunkSize {
		end := start + chunkSize
		if end > len(videos) {
			end = len(videos)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v := videos[i]
				res, err := a.Archive(ctx, v, mode)
				if err != nil {
					if errors.Is(err, ErrNoPlayableMedia) {
						log.Printf("Skipping %s %s: no playable media", v.Platform, v.PlatformVideoID)
					} else {
						log.Printf("Error archiving %s %s: %v", v.Platform, v.PlatformVideoID, err)
					}
					return
				}
				results[i] = res
			}(i)
		}
		wg.Wait()
	}

	out := make([]Result, 0, len(videos))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// ModeFor returns the archival mode used for a platform's initial follow
// fetch: Instagram's signed urls expire too quickly for a deferred scrape.
func ModeFor(p models.Platform) Mode {
	if p == models.PlatformInstagram {
		return ModeImmediate
	}
	return ModeDeferred
}
