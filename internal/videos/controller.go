package videos

import (
	"crypto/subtle"
	"errors"

	"github.com/creatorstation/reel-harvester/internal/creators"
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
)

// MountController mounts the internal-only video routes behind the shared
// secret guard.
func MountController(router fiber.Router, svc *Service, secret string) {
	router.Use(RequireInternalSecret(secret))
	router.Post("/process-and-add", handleProcessAndAdd(svc))
}

// RequireInternalSecret guards internal routes with a shared-secret header.
// This is service-to-service auth, not end-user auth.
func RequireInternalSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("x-internal-secret")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid internal secret",
			})
		}
		return c.Next()
	}
}

func handleProcessAndAdd(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProcessAndAddBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		if err := body.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		result, err := svc.ProcessAndAdd(c.Context(), body)
		if err != nil {
			status := fiber.StatusInternalServerError
			message := "Failed to process video"
			details := err.Error()

			var stageErr *creators.StageError
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

		return c.JSON(fiber.Map{
			"success":              true,
			"video_id":             result.VideoID.Hex(),
			"iframe":               result.IframeURL,
			"direct_url":           result.DirectURL,
			"platform":             result.Platform,
			"transcription_status": "processing",
		})
	}
}

// ProcessAndAddBody is the internal video submission payload. ScrapedData
// lets a caller that already scraped the post skip the scrape round trip.
type ProcessAndAddBody struct {
	VideoURL     string          `json:"video_url"`
	CollectionID string          `json:"collection_id"`
	UserID       string          `json:"user_id"`
	Title        string          `json:"title"`
	ThumbnailURL string          `json:"thumbnail_url"`
	ScrapedData  *ScrapedPayload `json:"scraped_data"`
}

// ScrapedPayload mirrors the unified scrape result shape.
type ScrapedPayload struct {
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Caption      string `json:"caption"`
	Title        string `json:"title"`
	Author       string `json:"author"`
}

func (b ProcessAndAddBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.VideoURL, v.Required, is.URL),
		v.Field(&b.UserID, v.Required),
	)
}
