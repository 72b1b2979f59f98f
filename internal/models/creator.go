package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Platform identifies the social network a creator or video belongs to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// CreatorProfile represents a followed account in the creators collection.
// A profile is unique on (platform, platform_user_id); it is created on the
// first follow and merged/updated on every later fetch, never deleted.
type CreatorProfile struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Platform       Platform           `json:"platform" bson:"platform"`
	Username       string             `json:"username" bson:"username"`
	PlatformUserID string             `json:"platform_user_id" bson:"platform_user_id"`
	DisplayName    string             `json:"display_name,omitempty" bson:"display_name,omitempty"`
	FollowerCount  int64              `json:"follower_count" bson:"follower_count"`
	IsVerified     bool               `json:"is_verified" bson:"is_verified"`
	VideoCount     int64              `json:"video_count" bson:"video_count"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
	LastFetchedAt  time.Time          `json:"last_fetched_at" bson:"last_fetched_at"`
}

// FollowRelationship links a consuming user to a creator. At most one document
// exists per (user_id, creator_id); unfollow flips is_active instead of
// deleting so a re-follow reactivates the same document.
type FollowRelationship struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID               string             `json:"user_id" bson:"user_id"`
	CreatorID            primitive.ObjectID `json:"creator_id" bson:"creator_id"`
	Platform             Platform           `json:"platform" bson:"platform"`
	FollowedAt           time.Time          `json:"followed_at" bson:"followed_at"`
	IsActive             bool               `json:"is_active" bson:"is_active"`
	NotificationsEnabled bool               `json:"notifications_enabled" bson:"notifications_enabled"`
}
