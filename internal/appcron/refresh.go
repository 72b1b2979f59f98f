package appcron

import (
	"context"
	"log"
	"time"

	"github.com/creatorstation/reel-harvester/internal/archiver"
	"github.com/creatorstation/reel-harvester/internal/creators"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
	"github.com/creatorstation/reel-harvester/internal/transcription"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const jobTimeout = 30 * time.Minute

// RefreshStore is the slice of the store the refresh job needs.
type RefreshStore interface {
	CreatorsWithActiveFollowers(ctx context.Context) ([]models.CreatorProfile, error)
	HasVideo(ctx context.Context, creatorID primitive.ObjectID, platformVideoID string) (bool, error)
	StoreVideos(ctx context.Context, creatorID primitive.ObjectID, videos []models.CreatorVideo) ([]models.CreatorVideo, error)
}

// Fetcher retrieves recent raw videos for a creator identity.
type Fetcher interface {
	FetchRecent(ctx context.Context, id platform.Identity) ([]platform.RawVideo, error)
}

// Archiver streams a batch of videos to the CDN.
type Archiver interface {
	ArchiveBatch(ctx context.Context, videos []platform.CanonicalVideo, mode archiver.Mode) []archiver.Result
}

// TranscriptionStarter detaches background enrichment for a stored video.
type TranscriptionStarter interface {
	Start(job transcription.Job)
}

// Refresher re-fetches recent videos for every creator with at least one
// active follower and archives anything not seen before.
type Refresher struct {
	store          RefreshStore
	fetcher        Fetcher
	archiver       Archiver
	transcriptions TranscriptionStarter
}

// NewRefresher creates the refresh job.
func NewRefresher(store RefreshStore, fetcher Fetcher, arch Archiver, transcriptions TranscriptionStarter) *Refresher {
	return &Refresher{
		store:          store,
		fetcher:        fetcher,
		archiver:       arch,
		transcriptions: transcriptions,
	}
}

// SetupRefreshCron schedules the refresh job to run every 6 hours.
func SetupRefreshCron(r *Refresher) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 */6 * * *", r.RunRefreshJob)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	c.Start()
	log.Println("Creator refresh cron job scheduled to run every 6 hours")
	return c
}

// MountController mounts the manual-run endpoint.
func MountController(router fiber.Router, r *Refresher) {
	router.Post("/refresh/run", func(c *fiber.Ctx) error {
		go r.RunRefreshJob()
		return c.JSON(fiber.Map{
			"message": "Creator refresh job started",
		})
	})
}

// RunRefreshJob refreshes all creators that have active followers. Each
// creator is processed in isolation so one bad account cannot stall the rest.
func (r *Refresher) RunRefreshJob() {
	log.Println("Starting creator refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	profiles, err := r.store.CreatorsWithActiveFollowers(ctx)
	if err != nil {
		log.Printf("Error listing creators to refresh: %v", err)
		return
	}

	log.Printf("Found %d creators to refresh", len(profiles))

	for _, profile := range profiles {
		r.refreshCreator(ctx, profile)
	}

	log.Println("Creator refresh job completed")
}

func (r *Refresher) refreshCreator(ctx context.Context, profile models.CreatorProfile) {
	log.Printf("Refreshing %s @%s", profile.Platform, profile.Username)

	identity := platform.Identity{
		Platform:       profile.Platform,
		Username:       profile.Username,
		PlatformUserID: profile.PlatformUserID,
	}

	raws, err := r.fetcher.FetchRecent(ctx, identity)
	if err != nil {
		log.Printf("Error fetching videos for @%s: %v", profile.Username, err)
		return
	}

	fresh := r.filterNew(ctx, profile.ID, platform.NormalizeAll(raws))
	if len(fresh) == 0 {
		log.Printf("No new videos for @%s", profile.Username)
		return
	}

	// Fetched source urls may already be stale by the time the job runs,
	// so re-scrape each post instead of trusting them.
	results := r.archiver.ArchiveBatch(ctx, fresh, archiver.ModeDeferred)
	if len(results) == 0 {
		log.Printf("No videos archived for @%s", profile.Username)
		return
	}

	stored, err := r.store.StoreVideos(ctx, profile.ID, creators.VideosFromResults(results))
	if err != nil {
		log.Printf("Error storing videos for @%s: %v", profile.Username, err)
		return
	}

	for i := range stored {
		r.transcriptions.Start(transcription.Job{
			VideoID:   stored[i].ID,
			SourceURL: results[i].Video.VideoURL,
			CDNURL:    stored[i].DirectURL,
			Title:     stored[i].Title,
			Caption:   stored[i].Description,
		})
	}

	log.Printf("Archived %d new videos for @%s", len(stored), profile.Username)
}

// filterNew drops videos already stored for the creator. A lookup failure
// counts as seen so a flaky read cannot cause a duplicate insert.
func (r *Refresher) filterNew(ctx context.Context, creatorID primitive.ObjectID, videos []platform.CanonicalVideo) []platform.CanonicalVideo {
	fresh := make([]platform.CanonicalVideo, 0, len(videos))
	for _, v := range videos {
		seen, err := r.store.HasVideo(ctx, creatorID, v.PlatformVideoID)
		if err != nil {
			log.Printf("Error checking video %s: %v", v.PlatformVideoID, err)
			continue
		}
		if !seen {
			fresh = append(fresh, v)
		}
	}
	return fresh
}
