package transcription

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultTimeout caps how long a background enrichment may run before the
// video is force-marked failed.
const defaultTimeout = 5 * time.Minute

// VideoUpdater persists the terminal transcription state of a video.
type VideoUpdater interface {
	UpdateVideoTranscription(ctx context.Context, videoID primitive.ObjectID, update models.TranscriptionUpdate) error
}

// Transcriber obtains a transcript from media.
type Transcriber interface {
	TranscribeBuffer(ctx context.Context, data []byte) (string, error)
	TranscribeURL(ctx context.Context, url string) (string, error)
}

// Job describes one stored video to enrich. Buffer, SourceURL and CDNURL are
// tried in that order; any of them may be absent.
type Job struct {
	VideoID   primitive.ObjectID
	Buffer    []byte
	SourceURL string
	CDNURL    string
	Title     string
	Caption   string
}

// Coordinator runs the fire-and-forget enrichment stage. Each started job
// transitions its video from pending to exactly one of completed or failed;
// the transition is guarded so a timeout firing and a late completion can
// never both write.
type Coordinator struct {
	videos      VideoUpdater
	transcriber Transcriber
	analyzer    Analyzer
	timeout     time.Duration
}

// NewCoordinator creates a Coordinator. A zero timeout means the default.
func NewCoordinator(videos VideoUpdater, transcriber Transcriber, analyzer Analyzer, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Coordinator{
		videos:      videos,
		transcriber: transcriber,
		analyzer:    analyzer,
		timeout:     timeout,
	}
}

// Start detaches the enrichment of one video. The caller never awaits it;
// failures are observable only through the persisted transcription status.
func (c *Coordinator) Start(job Job) {
	go c.run(job)
}

func (c *Coordinator) run(job Job) {
	taskID := uuid.NewString()[:8]
	log.Printf("[%s] Starting transcription for video %s", taskID, job.VideoID.Hex())

	// Exchange-once guard: whichever of timeout, failure or success flips
	// it first owns the single terminal write.
	var done atomic.Bool

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	timer := time.AfterFunc(c.timeout, func() {
		if done.CompareAndSwap(false, true) {
			log.Printf("[%s] Transcription timed out for video %s", taskID, job.VideoID.Hex())
			c.persist(taskID, job.VideoID, models.TranscriptionUpdate{Status: models.TranscriptionFailed})
		}
	})
	defer timer.Stop()

	update, err := c.process(ctx, job)
	if err != nil {
		if done.CompareAndSwap(false, true) {
			log.Printf("[%s] Transcription failed for video %s: %v", taskID, job.VideoID.Hex(), err)
			c.persist(taskID, job.VideoID, models.TranscriptionUpdate{Status: models.TranscriptionFailed})
		}
		return
	}

	if done.CompareAndSwap(false, true) {
		c.persist(taskID, job.VideoID, update)
		log.Printf("[%s] Transcription completed for video %s", taskID, job.VideoID.Hex())
	} else {
		log.Printf("[%s] Discarding late transcription result for video %s", taskID, job.VideoID.Hex())
	}
}

// process acquires a transcript and, when one exists, its script breakdown.
// Sources are tried in priority order: the in-memory buffer avoids a
// redundant fetch, the source url beats the CDN copy, and a video with no
// audio-bearing source at all degrades to a caption-only pseudo-transcript —
// a deliberate degraded success, not a failure.
func (c *Coordinator) process(ctx context.Context, job Job) (models.TranscriptionUpdate, error) {
	if len(job.Buffer) == 0 && job.SourceURL == "" && job.CDNURL == "" {
		pseudo := pseudoTranscript(job.Title, job.Caption)
		return models.TranscriptionUpdate{
			Status:     models.TranscriptionCompleted,
			Transcript: &pseudo,
			Components: &models.ScriptComponents{},
			ContentMetadata: &models.ContentMetadata{
				Source:      "caption",
				CaptionOnly: true,
			},
		}, nil
	}

	transcript, source, err := c.acquireTranscript(ctx, job)
	if err != nil {
		return models.TranscriptionUpdate{}, err
	}

	// Transcript acquisition succeeding is the success criterion; a failed
	// analysis still completes the video with empty components.
	components, err := c.analyzer.AnalyzeScript(ctx, transcript, job.Title)
	if err != nil {
		log.Printf("Script analysis failed for video %s: %v", job.VideoID.Hex(), err)
		components = &models.ScriptComponents{}
	}

	return models.TranscriptionUpdate{
		Status:          models.TranscriptionCompleted,
		Transcript:      &transcript,
		Components:      components,
		ContentMetadata: &models.ContentMetadata{Source: source},
	}, nil
}

func (c *Coordinator) acquireTranscript(ctx context.Context, job Job) (string, string, error) {
	var errs []string

	if len(job.Buffer) > 0 {
		text, err := c.transcriber.TranscribeBuffer(ctx, job.Buffer)
		if err == nil {
			return text, "buffer", nil
		}
		errs = append(errs, fmt.Sprintf("buffer: %v", err))
	}

	if job.SourceURL != "" {
		text, err := c.transcriber.TranscribeURL(ctx, job.SourceURL)
		if err == nil {
			return text, "source_url", nil
		}
		errs = append(errs, fmt.Sprintf("source url: %v", err))
	}

	if job.CDNURL != "" {
		text, err := c.transcriber.TranscribeURL(ctx, job.CDNURL)
		if err == nil {
			return text, "cdn_url", nil
		}
		errs = append(errs, fmt.Sprintf("cdn url: %v", err))
	}

	return "", "", fmt.Errorf("no transcript obtainable: %s", strings.Join(errs, "; "))
}

// persist runs on its own context: the job context may already be expired
// when the terminal write happens.
func (c *Coordinator) persist(taskID string, videoID primitive.ObjectID, update models.TranscriptionUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := c.videos.UpdateVideoTranscription(ctx, videoID, update); err != nil {
		log.Printf("[%s] Error persisting transcription state for video %s: %v", taskID, videoID.Hex(), err)
	}
}

func pseudoTranscript(title, caption string) string {
	parts := make([]string, 0, 2)
	if title = strings.TrimSpace(title); title != "" {
		parts = append(parts, title)
	}
	if caption = strings.TrimSpace(caption); caption != "" && caption != title {
		parts = append(parts, caption)
	}
	return strings.Join(parts, "\n\n")
}
