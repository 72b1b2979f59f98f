package creators

import (
	"errors"
	"strconv"

	"github.com/creatorstation/reel-harvester/internal/models"
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultUserID is used when a follow request does not name a user.
const defaultUserID = "default"

// FollowBody is the follow request payload.
type FollowBody struct {
	Username string `json:"username"`
	Platform string `json:"platform"`
	UserID   string `json:"user_id"`
}

func (b FollowBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Username, v.Required),
		v.Field(&b.Platform, v.In(string(models.PlatformInstagram), string(models.PlatformTikTok))),
	)
}

// MountController mounts the creator-follow routes.
func MountController(router fiber.Router, svc *Service) {
	router.Post("/follow", handleFollow(svc))
	router.Get("/follow", handleFollowAlias(svc))
	router.Delete("/follow", handleUnfollow(svc))
	router.Get("/followed", handleFollowedCreators(svc))
	router.Get("/videos", handleFollowedVideos(svc))
}

func handleFollow(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FollowBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return followCreator(c, svc, body)
	}
}

// handleFollowAlias forwards query parameters to the same follow contract.
func handleFollowAlias(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := FollowBody{
			Username: c.Query("username"),
			Platform: c.Query("platform"),
			UserID:   c.Query("user_id"),
		}
		return followCreator(c, svc, body)
	}
}

func followCreator(c *fiber.Ctx, svc *Service, body FollowBody) error {
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	if body.UserID == "" {
		body.UserID = defaultUserID
	}

	result, err := svc.FollowCreator(c.Context(), FollowRequest{
		Username: body.Username,
		Platform: models.Platform(body.Platform),
		UserID:   body.UserID,
	})
	if err != nil {
		status := fiber.StatusInternalServerError
		message := "Failed to follow creator"
		details := err.Error()

		var stageErr *StageError
		if errors.As(err, &stageErr) {
			status = stageErr.Status
			message = stageErr.Message
			if stageErr.Err != nil {
				details = stageErr.Err.Error()
			}
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   message,
			"details": details,
		})
	}

	videos := make([]fiber.Map, 0, len(result.Videos))
	for _, video := range result.Videos {
		videoURL := video.DirectURL
		if videoURL == "" {
			videoURL = video.OriginalURL
		}
		videos = append(videos, fiber.Map{
			"id":            video.ID.Hex(),
			"thumbnail_url": video.ThumbnailURL,
			"video_url":     videoURL,
			"title":         video.Title,
			"metrics":       video.Metrics,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"creator": fiber.Map{
			"id":             result.Creator.ID.Hex(),
			"username":       result.Creator.Username,
			"platform":       result.Creator.Platform,
			"display_name":   result.Creator.DisplayName,
			"follower_count": result.Creator.FollowerCount,
		},
		"videos":    videos,
		"follow_id": result.FollowID.Hex(),
	})
}

func handleUnfollow(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creatorID, err := primitive.ObjectIDFromHex(c.Query("creator_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid creator_id",
			})
		}
		userID := c.Query("user_id", defaultUserID)

		if err := svc.UnfollowCreator(c.Context(), userID, creatorID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to unfollow creator",
				"details": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"success": true})
	}
}

func handleFollowedCreators(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Query("user_id", defaultUserID)

		creators, err := svc.store.GetFollowedCreators(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to load followed creators",
				"details": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"creators": creators,
		})
	}
}

func handleFollowedVideos(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Query("user_id", defaultUserID)
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil || limit <= 0 {
			limit = 50
		}

		videos, err := svc.store.GetFollowedCreatorsVideos(c.Context(), userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to load videos",
				"details": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"videos":  videos,
		})
	}
}
