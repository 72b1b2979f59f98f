package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptionStatus tracks the background enrichment lifecycle of a stored
// video. The transition pending -> completed|failed happens exactly once and
// is never retried automatically.
type TranscriptionStatus string

const (
	TranscriptionPending   TranscriptionStatus = "pending"
	TranscriptionCompleted TranscriptionStatus = "completed"
	TranscriptionFailed    TranscriptionStatus = "failed"
)

// VideoMetrics holds platform engagement counters at fetch time.
type VideoMetrics struct {
	Views    int64 `json:"views" bson:"views"`
	Likes    int64 `json:"likes" bson:"likes"`
	Comments int64 `json:"comments" bson:"comments"`
	Shares   int64 `json:"shares" bson:"shares"`
	Saves    int64 `json:"saves" bson:"saves"`
}

// AuthorSnapshot is the creator identity as seen on the raw payload, frozen
// at fetch time.
type AuthorSnapshot struct {
	Username      string `json:"username" bson:"username"`
	DisplayName   string `json:"display_name,omitempty" bson:"display_name,omitempty"`
	FollowerCount int64  `json:"follower_count" bson:"follower_count"`
	IsVerified    bool   `json:"is_verified" bson:"is_verified"`
}

// ScriptComponents is the structured breakdown of a video script.
type ScriptComponents struct {
	Hook   string `json:"hook" bson:"hook"`
	Bridge string `json:"bridge" bson:"bridge"`
	Nugget string `json:"nugget" bson:"nugget"`
	WTA    string `json:"wta" bson:"wta"`
}

// ContentMetadata carries enrichment facts about where the transcript came
// from.
type ContentMetadata struct {
	Source      string `json:"source" bson:"source"`
	CaptionOnly bool   `json:"caption_only,omitempty" bson:"caption_only,omitempty"`
}

// CreatorVideo is one archived video in the creator_videos collection.
// The CDN fields (iframe_url, direct_url, bunny_video_guid) are optional:
// when absent the record is a degraded archival and original_url is the only
// playable reference.
type CreatorVideo struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CreatorID       primitive.ObjectID  `json:"creator_id,omitempty" bson:"creator_id,omitempty"`
	UserID          string              `json:"user_id,omitempty" bson:"user_id,omitempty"`
	CollectionID    string              `json:"collection_id,omitempty" bson:"collection_id,omitempty"`
	Platform        Platform            `json:"platform" bson:"platform"`
	PlatformVideoID string              `json:"platform_video_id" bson:"platform_video_id"`
	OriginalURL     string              `json:"original_url" bson:"original_url"`
	IframeURL       string              `json:"iframe_url,omitempty" bson:"iframe_url,omitempty"`
	DirectURL       string              `json:"direct_url,omitempty" bson:"direct_url,omitempty"`
	BunnyVideoGUID  string              `json:"bunny_video_guid,omitempty" bson:"bunny_video_guid,omitempty"`
	ThumbnailURL    string              `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	Title           string              `json:"title,omitempty" bson:"title,omitempty"`
	Description     string              `json:"description,omitempty" bson:"description,omitempty"`
	Hashtags        []string            `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	Duration        int                 `json:"duration" bson:"duration"`
	Metrics         VideoMetrics        `json:"metrics" bson:"metrics"`
	Author          AuthorSnapshot      `json:"author" bson:"author"`
	PublishedAt     time.Time           `json:"published_at" bson:"published_at"`
	FetchedAt       time.Time           `json:"fetched_at" bson:"fetched_at"`
	ProcessedAt     time.Time           `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	Status          TranscriptionStatus `json:"transcription_status" bson:"transcription_status"`
	Transcript      string              `json:"transcript,omitempty" bson:"transcript,omitempty"`
	Components      *ScriptComponents   `json:"components,omitempty" bson:"components,omitempty"`
	ContentMetadata *ContentMetadata    `json:"content_metadata,omitempty" bson:"content_metadata,omitempty"`
	VisualContext   string              `json:"visual_context,omitempty" bson:"visual_context,omitempty"`
}

// TranscriptionUpdate is a partial-field update applied to a video exactly
// once by the transcription coordinator. Nil pointers are not written, so
// unrelated fields are never overwritten.
type TranscriptionUpdate struct {
	Status          TranscriptionStatus
	Transcript      *string
	Components      *ScriptComponents
	ContentMetadata *ContentMetadata
	VisualContext   *string
}
