package creators

import (
	"context"
	"fmt"
	"log"

	"github.com/creatorstation/reel-harvester/internal/archiver"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
	"github.com/creatorstation/reel-harvester/internal/transcription"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver resolves a raw username to a platform identity.
type Resolver interface {
	Resolve(ctx context.Context, username string, explicit models.Platform) (*platform.Identity, error)
}

// Fetcher retrieves recent raw videos for a resolved identity.
type Fetcher interface {
	FetchRecent(ctx context.Context, id platform.Identity) ([]platform.RawVideo, error)
}

// Archiver streams a batch of videos to the CDN.
type Archiver interface {
	ArchiveBatch(ctx context.Context, videos []platform.CanonicalVideo, mode archiver.Mode) []archiver.Result
}

// Store persists creators, follows and videos.
type Store interface {
	UpsertCreator(ctx context.Context, profile models.CreatorProfile) (primitive.ObjectID, error)
	StoreVideos(ctx context.Context, creatorID primitive.ObjectID, videos []models.CreatorVideo) ([]models.CreatorVideo, error)
	Follow(ctx context.Context, userID string, creatorID primitive.ObjectID, p models.Platform) (primitive.ObjectID, error)
	Unfollow(ctx context.Context, userID string, creatorID primitive.ObjectID) error
	GetFollowedCreators(ctx context.Context, userID string) ([]models.CreatorProfile, error)
	GetFollowedCreatorsVideos(ctx context.Context, userID string, limit int) ([]models.CreatorVideo, error)
}

// TranscriptionStarter detaches background enrichment for a stored video.
type TranscriptionStarter interface {
	Start(job transcription.Job)
}

// Service is the follow orchestrator: it sequences resolve, fetch,
// normalize, archive, store and follow for a single request, then detaches
// transcription for every stored video.
type Service struct {
	resolver       Resolver
	fetcher        Fetcher
	archiver       Archiver
	store          Store
	transcriptions TranscriptionStarter
}

// NewService creates the follow orchestrator.
func NewService(resolver Resolver, fetcher Fetcher, arch Archiver, store Store, transcriptions TranscriptionStarter) *Service {
	return &Service{
		resolver:       resolver,
		fetcher:        fetcher,
		archiver:       arch,
		store:          store,
		transcriptions: transcriptions,
	}
}

// FollowRequest is one follow action.
type FollowRequest struct {
	Username string
	Platform models.Platform
	UserID   string
}

// FollowResult is the consolidated outcome of a follow action. Videos may be
// fewer than fetched: posts without playable media are skipped.
type FollowResult struct {
	Creator  models.CreatorProfile
	Videos   []models.CreatorVideo
	FollowID primitive.ObjectID
}

// StageError maps a pipeline stage failure to an HTTP status while keeping
// the upstream error text for the response details field.
type StageError struct {
	Status  int
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FollowCreator runs the full follow workflow. Archival of all fetched
// videos completes (or fails per item) before this returns; transcription is
// deliberately not awaited and lands minutes later.
func (s *Service) FollowCreator(ctx context.Context, req FollowRequest) (*FollowResult, error) {
	identity, err := s.resolver.Resolve(ctx, req.Username, req.Platform)
	if err != nil {
		return nil, &StageError{Status: fiber.StatusBadRequest, Message: "Failed to resolve creator", Err: err}
	}

	raws, err := s.fetcher.FetchRecent(ctx, *identity)
	if err != nil {
		return nil, &StageError{Status: fiber.StatusBadRequest, Message: "Failed to fetch videos", Err: err}
	}

	canonical := platform.NormalizeAll(raws)

	results := s.archiver.ArchiveBatch(ctx, canonical, archiver.ModeFor(identity.Platform))
	log.Printf("Archived %d of %d fetched videos for %s @%s", len(results), len(canonical), identity.Platform, identity.Username)

	profile := profileFrom(*identity, canonical)
	creatorID, err := s.store.UpsertCreator(ctx, profile)
	if err != nil {
		return nil, &StageError{Status: fiber.StatusInternalServerError, Message: "Failed to store creator", Err: err}
	}
	profile.ID = creatorID

	videos := VideosFromResults(results)
	stored, err := s.store.StoreVideos(ctx, creatorID, videos)
	if err != nil {
		return nil, &StageError{Status: fiber.StatusInternalServerError, Message: "Failed to store videos", Err: err}
	}

	followID, err := s.store.Follow(ctx, req.UserID, creatorID, identity.Platform)
	if err != nil {
		return nil, &StageError{Status: fiber.StatusInternalServerError, Message: "Failed to create follow", Err: err}
	}

	// Detached on purpose: enrichment failure never rolls back archival,
	// and the response does not wait for it.
	for i := range stored {
		s.transcriptions.Start(transcription.Job{
			VideoID:   stored[i].ID,
			SourceURL: results[i].Video.VideoURL,
			CDNURL:    stored[i].DirectURL,
			Title:     stored[i].Title,
			Caption:   stored[i].Description,
		})
	}

	return &FollowResult{
		Creator:  profile,
		Videos:   stored,
		FollowID: followID,
	}, nil
}

// UnfollowCreator deactivates the follow relationship. The creator profile
// and its archived videos stay; a later re-follow reactivates the same
// document.
func (s *Service) UnfollowCreator(ctx context.Context, userID string, creatorID primitive.ObjectID) error {
	if err := s.store.Unfollow(ctx, userID, creatorID); err != nil {
		return &StageError{Status: fiber.StatusInternalServerError, Message: "Failed to unfollow creator", Err: err}
	}
	return nil
}

// profileFrom builds the creator profile, preferring resolver metadata and
// falling back to the author snapshot of the freshest video (the TikTok
// resolver does no remote lookup and carries none).
func profileFrom(identity platform.Identity, videos []platform.CanonicalVideo) models.CreatorProfile {
	profile := models.CreatorProfile{
		Platform:       identity.Platform,
		Username:       identity.Username,
		PlatformUserID: identity.PlatformUserID,
		DisplayName:    identity.DisplayName,
		FollowerCount:  identity.FollowerCount,
		IsVerified:     identity.IsVerified,
	}

	if profile.DisplayName == "" && len(videos) > 0 {
		author := videos[0].Author
		profile.DisplayName = author.DisplayName
		if profile.FollowerCount == 0 {
			profile.FollowerCount = author.FollowerCount
		}
		if !profile.IsVerified {
			profile.IsVerified = author.IsVerified
		}
	}

	return profile
}

// VideosFromResults converts archival results into storable video records.
// The refresh cron shares this mapping.
func VideosFromResults(results []archiver.Result) []models.CreatorVideo {
	videos := make([]models.CreatorVideo, 0, len(results))
	for _, r := range results {
		v := models.CreatorVideo{
			Platform:        r.Video.Platform,
			PlatformVideoID: r.Video.PlatformVideoID,
			OriginalURL:     r.Video.OriginalURL,
			ThumbnailURL:    r.ThumbnailURL,
			Title:           r.Video.Title,
			Description:     r.Video.Description,
			Hashtags:        r.Video.Hashtags,
			Duration:        r.Video.Duration,
			Metrics:         r.Video.Metrics,
			Author:          r.Video.Author,
			PublishedAt:     r.Video.PublishedAt,
		}
		// A degraded archival keeps original_url as the only playable
		// reference; the CDN fields stay absent.
		if !r.Degraded {
			v.IframeURL = r.IframeURL
			v.DirectURL = r.DirectURL
			v.BunnyVideoGUID = r.GUID
		}
		videos = append(videos, v)
	}
	return videos
}
