package videos

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/creatorstation/reel-harvester/internal/bunny"
	"github.com/creatorstation/reel-harvester/internal/creators"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
	"github.com/creatorstation/reel-harvester/internal/transcription"
	"github.com/creatorstation/reel-harvester/pkg/video"
	"github.com/creatorstation/reel-harvester/pkg/web"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CDNUploader stores media on the CDN.
type CDNUploader interface {
	StreamFromURL(ctx context.Context, sourceURL, filename string) (*bunny.UploadResult, error)
	UploadThumbnail(ctx context.Context, guid, thumbnailURL string) error
	UploadThumbnailData(ctx context.Context, guid string, data []byte) error
}

// MediaScraper resolves fresh media urls for a post url.
type MediaScraper interface {
	Scrape(ctx context.Context, postURL string) (*platform.ScrapeResult, error)
}

// VideoInserter persists a single submitted video.
type VideoInserter interface {
	InsertVideo(ctx context.Context, video *models.CreatorVideo) (primitive.ObjectID, error)
}

// TranscriptionStarter detaches background enrichment for a stored video.
type TranscriptionStarter interface {
	Start(job transcription.Job)
}

// Service processes direct URL submissions: scrape, stream to the CDN,
// store, then detach transcription.
type Service struct {
	scraper        MediaScraper
	cdn            CDNUploader
	store          VideoInserter
	transcriptions TranscriptionStarter
}

// NewService creates the video submission service.
func NewService(scraper MediaScraper, cdn CDNUploader, store VideoInserter, transcriptions TranscriptionStarter) *Service {
	return &Service{
		scraper:        scraper,
		cdn:            cdn,
		store:          store,
		transcriptions: transcriptions,
	}
}

// ProcessResult is the foreground outcome of a submission; transcription
// continues in the background after it is returned.
type ProcessResult struct {
	VideoID   primitive.ObjectID
	IframeURL string
	DirectURL string
	Platform  models.Platform
}

// ProcessAndAdd archives one submitted video. Unlike batch archival there is
// no degraded fallback here: the caller asked for this specific video, so
// any stage failure surfaces as an error.
func (s *Service) ProcessAndAdd(ctx context.Context, body ProcessAndAddBody) (*ProcessResult, error) {
	p, ok := platform.DetectPlatformFromURL(body.VideoURL)
	if !ok {
		return nil, &creators.StageError{Status: fiber.StatusBadRequest, Message: "Unsupported video URL"}
	}

	scraped := scrapedFrom(body)
	if scraped == nil {
		fresh, err := s.scraper.Scrape(ctx, body.VideoURL)
		if err != nil {
			return nil, &creators.StageError{Status: fiber.StatusInternalServerError, Message: "Failed to scrape video", Err: err}
		}
		scraped = fresh
	}
	if scraped.VideoURL == "" {
		return nil, &creators.StageError{Status: fiber.StatusInternalServerError, Message: "No playable media found"}
	}

	videoID := platformVideoIDFromURL(body.VideoURL)
	upload, err := s.cdn.StreamFromURL(ctx, scraped.VideoURL, bunny.Filename(p, videoID))
	if err != nil {
		return nil, &creators.StageError{Status: fiber.StatusInternalServerError, Message: "Failed to stream video to CDN", Err: err}
	}

	thumbnailURL := body.ThumbnailURL
	if thumbnailURL == "" {
		thumbnailURL = scraped.ThumbnailURL
	}

	var buffer []byte
	if thumbnailURL != "" {
		if err := s.cdn.UploadThumbnail(ctx, upload.GUID, thumbnailURL); err != nil {
			log.Printf("Thumbnail upload failed for %s: %v", upload.GUID, err)
		}
	} else {
		// No still anywhere in the payload: grab a frame from the media
		// itself. The download is kept and handed to transcription so the
		// media is not fetched twice.
		buffer = s.frameThumbnail(ctx, upload.GUID, scraped.VideoURL)
	}

	title := body.Title
	if title == "" {
		title = scraped.Title
	}
	if title == "" {
		title = platform.TruncateTitle(scraped.Caption, 100)
	}

	video := &models.CreatorVideo{
		UserID:          body.UserID,
		CollectionID:    body.CollectionID,
		Platform:        p,
		PlatformVideoID: videoID,
		OriginalURL:     body.VideoURL,
		IframeURL:       upload.IframeURL,
		DirectURL:       upload.DirectURL,
		BunnyVideoGUID:  upload.GUID,
		ThumbnailURL:    thumbnailURL,
		Title:           title,
		Description:     scraped.Caption,
		Hashtags:        platform.ExtractHashtags(scraped.Caption),
	}

	id, err := s.store.InsertVideo(ctx, video)
	if err != nil {
		return nil, &creators.StageError{Status: fiber.StatusInternalServerError, Message: "Failed to store video", Err: err}
	}

	s.transcriptions.Start(transcription.Job{
		VideoID:   id,
		Buffer:    buffer,
		SourceURL: scraped.VideoURL,
		CDNURL:    upload.DirectURL,
		Title:     title,
		Caption:   scraped.Caption,
	})

	return &ProcessResult{
		VideoID:   id,
		IframeURL: upload.IframeURL,
		DirectURL: upload.DirectURL,
		Platform:  p,
	}, nil
}

// frameThumbnail downloads the media, sets a grabbed frame as the CDN
// thumbnail and returns the downloaded bytes. Every failure inside is
// non-fatal; a nil return just means transcription fetches the media itself.
func (s *Service) frameThumbnail(ctx context.Context, guid, mediaURL string) []byte {
	data, err := web.FetchMedia(mediaURL)
	if err != nil {
		log.Printf("Media download for frame thumbnail failed for %s: %v", guid, err)
		return nil
	}

	frame, err := video.Thumbnail(data)
	if err != nil {
		log.Printf("Frame grab failed for %s: %v", guid, err)
		return data
	}

	if err := s.cdn.UploadThumbnailData(ctx, guid, frame); err != nil {
		log.Printf("Thumbnail upload failed for %s: %v", guid, err)
	}
	return data
}

func scrapedFrom(body ProcessAndAddBody) *platform.ScrapeResult {
	if body.ScrapedData == nil {
		return nil
	}
	return &platform.ScrapeResult{
		VideoURL:     body.ScrapedData.VideoURL,
		ThumbnailURL: body.ScrapedData.ThumbnailURL,
		Caption:      body.ScrapedData.Caption,
		Title:        body.ScrapedData.Title,
		Author:       body.ScrapedData.Author,
	}
}

// platformVideoIDFromURL pulls the shortcode/video id out of a post URL,
// e.g. /reel/<code>/ or /@user/video/<id>.
func platformVideoIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		switch seg {
		case "reel", "reels", "p", "video":
			if i+1 < len(segments) {
				return segments[i+1]
			}
		}
	}
	if len(segments) > 0 && segments[len(segments)-1] != "" {
		return segments[len(segments)-1]
	}
	return rawURL
}
