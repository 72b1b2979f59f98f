package store

import (
	"github.com/creatorstation/reel-harvester/internal/models"
	"golang.org/x/exp/slices"
)

// MergeRecentVideos flattens per-creator result lists, re-sorts globally by
// publish time descending and trims to limit.
func MergeRecentVideos(lists [][]models.CreatorVideo, limit int) []models.CreatorVideo {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]models.CreatorVideo, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	slices.SortStableFunc(merged, func(a, b models.CreatorVideo) int {
		switch {
		case a.PublishedAt.After(b.PublishedAt):
			return -1
		case a.PublishedAt.Before(b.PublishedAt):
			return 1
		default:
			return 0
		}
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
