package platform

import (
	"strings"

	"github.com/creatorstation/reel-harvester/internal/models"
)

// Identity is the resolved platform identity of a creator. For Instagram
// PlatformUserID is the numeric id returned by the resolver lookup; for
// TikTok the handle itself is the identity.
type Identity struct {
	Platform       models.Platform
	Username       string
	PlatformUserID string
	DisplayName    string
	FollowerCount  int64
	IsVerified     bool
}

// DetectPlatform guesses the platform from tokens in the username. This is a
// best-effort heuristic, not authoritative: ambiguous names default to
// Instagram and a mis-detection surfaces later as a recoverable fetch error.
func DetectPlatform(username string) models.Platform {
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(username, "@")))

	if strings.Contains(name, "insta") || strings.Contains(name, "ig") {
		return models.PlatformInstagram
	}
	if strings.Contains(name, "tiktok") || strings.Contains(name, "tt") {
		return models.PlatformTikTok
	}

	return models.PlatformInstagram
}

// DetectPlatformFromURL determines the platform from a video URL.
func DetectPlatformFromURL(url string) (models.Platform, bool) {
	switch {
	case strings.Contains(url, "instagram.com"):
		return models.PlatformInstagram, true
	case strings.Contains(url, "tiktok.com"):
		return models.PlatformTikTok, true
	}
	return "", false
}

// NormalizeUsername strips the leading @ and surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
