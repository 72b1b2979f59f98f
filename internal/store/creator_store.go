package store

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorstation/reel-harvester/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	creatorsCollection = "creators"
	followsCollection  = "follows"
	videosCollection   = "creator_videos"

	// perCreatorLimit bounds the fan-out sub-query when merging followed
	// creators' videos.
	perCreatorLimit = 10
)

// Store persists creators, follow relationships and archived videos in the
// document store.
type Store struct {
	db *mongo.Database
}

// New creates a Store over a connected database.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// UpsertCreator looks a creator up by (platform, platform_user_id), merging
// fresh metadata into an existing profile or inserting a new one with a zero
// video count. Returns the creator document id.
func (s *Store) UpsertCreator(ctx context.Context, profile models.CreatorProfile) (primitive.ObjectID, error) {
	now := time.Now()

	filter := bson.M{
		"platform":         profile.Platform,
		"platform_user_id": profile.PlatformUserID,
	}
	update := bson.M{
		"$set": bson.M{
			"username":        profile.Username,
			"display_name":    profile.DisplayName,
			"follower_count":  profile.FollowerCount,
			"is_verified":     profile.IsVerified,
			"last_fetched_at": now,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{
			"platform":         profile.Platform,
			"platform_user_id": profile.PlatformUserID,
			"video_count":      int64(0),
			"created_at":       now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var updated models.CreatorProfile
	err := s.db.Collection(creatorsCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&updated)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("upsert creator: %v", err)
	}

	return updated.ID, nil
}

// StoreVideos writes all videos of one fetch cycle as a single batch insert,
// then bumps the creator's video counter by the inserted count. The counter
// moves via $inc on the creator document, an atomic read-modify-write, so
// concurrent fetch cycles on the same creator cannot lose updates.
func (s *Store) StoreVideos(ctx context.Context, creatorID primitive.ObjectID, videos []models.CreatorVideo) ([]models.CreatorVideo, error) {
	if len(videos) == 0 {
		return nil, nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(videos))
	for i := range videos {
		videos[i].CreatorID = creatorID
		videos[i].FetchedAt = now
		videos[i].Status = models.TranscriptionPending
		docs = append(docs, videos[i])
	}

	res, err := s.db.Collection(videosCollection).InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert videos: %v", err)
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			videos[i].ID = oid
		}
	}

	_, err = s.db.Collection(creatorsCollection).UpdateByID(ctx, creatorID, bson.M{
		"$inc": bson.M{"video_count": int64(len(res.InsertedIDs))},
		"$set": bson.M{"updated_at": now},
	})
	if err != nil {
		return nil, fmt.Errorf("update video count: %v", err)
	}

	return videos, nil
}

// InsertVideo stores a single video submitted outside the follow flow.
func (s *Store) InsertVideo(ctx context.Context, video *models.CreatorVideo) (primitive.ObjectID, error) {
	video.FetchedAt = time.Now()
	video.Status = models.TranscriptionPending

	res, err := s.db.Collection(videosCollection).InsertOne(ctx, video)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert video: %v", err)
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	video.ID = oid
	return oid, nil
}

// Follow records a user following a creator. Re-following an inactive
// relationship reactivates the same document; following an active one is a
// no-op. Both return the existing document id.
func (s *Store) Follow(ctx context.Context, userID string, creatorID primitive.ObjectID, p models.Platform) (primitive.ObjectID, error) {
	filter := bson.M{
		"user_id":    userID,
		"creator_id": creatorID,
	}
	update := bson.M{
		"$set": bson.M{"is_active": true},
		"$setOnInsert": bson.M{
			"user_id":               userID,
			"creator_id":            creatorID,
			"platform":              p,
			"followed_at":           time.Now(),
			"notifications_enabled": true,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rel models.FollowRelationship
	err := s.db.Collection(followsCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&rel)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("upsert follow: %v", err)
	}

	return rel.ID, nil
}

// Unfollow soft-deletes the relationship; the document survives so history
// is preserved and a re-follow reactivates it.
func (s *Store) Unfollow(ctx context.Context, userID string, creatorID primitive.ObjectID) error {
	_, err := s.db.Collection(followsCollection).UpdateOne(ctx,
		bson.M{"user_id": userID, "creator_id": creatorID},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("unfollow: %v", err)
	}
	return nil
}

// GetFollowedCreators returns the creator profiles a user actively follows.
func (s *Store) GetFollowedCreators(ctx context.Context, userID string) ([]models.CreatorProfile, error) {
	creatorIDs, err := s.activeCreatorIDs(ctx, bson.M{"user_id": userID, "is_active": true})
	if err != nil {
		return nil, err
	}
	if len(creatorIDs) == 0 {
		return []models.CreatorProfile{}, nil
	}

	cursor, err := s.db.Collection(creatorsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": creatorIDs}})
	if err != nil {
		return nil, fmt.Errorf("find creators: %v", err)
	}
	defer cursor.Close(ctx)

	var creators []models.CreatorProfile
	if err := cursor.All(ctx, &creators); err != nil {
		return nil, fmt.Errorf("decode creators: %v", err)
	}
	return creators, nil
}

// GetFollowedCreatorsVideos fans out per followed creator with a bounded
// sub-limit, then merges and re-sorts globally by publish time. A deliberate
// simplification given the absence of a cross-partition sorted index.
func (s *Store) GetFollowedCreatorsVideos(ctx context.Context, userID string, limit int) ([]models.CreatorVideo, error) {
	creatorIDs, err := s.activeCreatorIDs(ctx, bson.M{"user_id": userID, "is_active": true})
	if err != nil {
		return nil, err
	}

	lists := make([][]models.CreatorVideo, 0, len(creatorIDs))
	for _, creatorID := range creatorIDs {
		opts := options.Find().
			SetSort(bson.D{{Key: "published_at", Value: -1}}).
			SetLimit(perCreatorLimit)

		cursor, err := s.db.Collection(videosCollection).Find(ctx, bson.M{"creator_id": creatorID}, opts)
		if err != nil {
			return nil, fmt.Errorf("find videos for creator %s: %v", creatorID.Hex(), err)
		}

		var videos []models.CreatorVideo
		if err := cursor.All(ctx, &videos); err != nil {
			return nil, fmt.Errorf("decode videos: %v", err)
		}
		lists = append(lists, videos)
	}

	return MergeRecentVideos(lists, limit), nil
}

// CreatorsWithActiveFollowers returns every creator at least one user
// actively follows. Drives the background refresh job.
func (s *Store) CreatorsWithActiveFollowers(ctx context.Context) ([]models.CreatorProfile, error) {
	creatorIDs, err := s.activeCreatorIDs(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	if len(creatorIDs) == 0 {
		return nil, nil
	}

	cursor, err := s.db.Collection(creatorsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": creatorIDs}})
	if err != nil {
		return nil, fmt.Errorf("find creators: %v", err)
	}
	defer cursor.Close(ctx)

	var creators []models.CreatorProfile
	if err := cursor.All(ctx, &creators); err != nil {
		return nil, fmt.Errorf("decode creators: %v", err)
	}
	return creators, nil
}

// HasVideo reports whether a creator already has a video stored under the
// given platform video id.
func (s *Store) HasVideo(ctx context.Context, creatorID primitive.ObjectID, platformVideoID string) (bool, error) {
	count, err := s.db.Collection(videosCollection).CountDocuments(ctx,
		bson.M{"creator_id": creatorID, "platform_video_id": platformVideoID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count videos: %v", err)
	}
	return count > 0, nil
}

// UpdateVideoTranscription applies the coordinator's terminal state to a
// video. Only fields actually produced are written, so unrelated fields are
// never overwritten.
func (s *Store) UpdateVideoTranscription(ctx context.Context, videoID primitive.ObjectID, update models.TranscriptionUpdate) error {
	set := bson.M{
		"transcription_status": update.Status,
		"processed_at":         time.Now(),
	}
	if update.Transcript != nil {
		set["transcript"] = *update.Transcript
	}
	if update.Components != nil {
		set["components"] = update.Components
	}
	if update.ContentMetadata != nil {
		set["content_metadata"] = update.ContentMetadata
	}
	if update.VisualContext != nil {
		set["visual_context"] = *update.VisualContext
	}

	_, err := s.db.Collection(videosCollection).UpdateByID(ctx, videoID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update transcription: %v", err)
	}
	return nil
}

func (s *Store) activeCreatorIDs(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	raw, err := s.db.Collection(followsCollection).Distinct(ctx, "creator_id", filter)
	if err != nil {
		return nil, fmt.Errorf("distinct follows: %v", err)
	}

	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}
