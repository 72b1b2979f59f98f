package appcron

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/creatorstation/reel-harvester/internal/archiver"
	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
	"github.com/creatorstation/reel-harvester/internal/transcription"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockRefreshStore struct {
	mu       sync.Mutex
	profiles []models.CreatorProfile
	seen     map[string]bool
	seenErr  map[string]error
	stored   map[primitive.ObjectID][]models.CreatorVideo
	listErr  error
	storeErr error
}

func (m *mockRefreshStore) CreatorsWithActiveFollowers(ctx context.Context) ([]models.CreatorProfile, error) {
	return m.profiles, m.listErr
}

func (m *mockRefreshStore) HasVideo(ctx context.Context, creatorID primitive.ObjectID, platformVideoID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.seenErr[platformVideoID]; err != nil {
		return false, err
	}
	return m.seen[platformVideoID], nil
}

func (m *mockRefreshStore) StoreVideos(ctx context.Context, creatorID primitive.ObjectID, videos []models.CreatorVideo) ([]models.CreatorVideo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	for i := range videos {
		videos[i].ID = primitive.NewObjectID()
	}
	if m.stored == nil {
		m.stored = make(map[primitive.ObjectID][]models.CreatorVideo)
	}
	m.stored[creatorID] = videos
	return videos, nil
}

type mockFetcher struct {
	raws map[string][]platform.RawVideo
	err  error
}

func (m *mockFetcher) FetchRecent(ctx context.Context, id platform.Identity) ([]platform.RawVideo, error) {
	return m.raws[id.Username], m.err
}

type mockArchiver struct {
	mu    sync.Mutex
	modes []archiver.Mode
}

func (m *mockArchiver) ArchiveBatch(ctx context.Context, videos []platform.CanonicalVideo, mode archiver.Mode) []archiver.Result {
	m.mu.Lock()
	m.modes = append(m.modes, mode)
	m.mu.Unlock()
	results := make([]archiver.Result, 0, len(videos))
	for _, v := range videos {
		results = append(results, archiver.Result{Video: v, GUID: "g-" + v.PlatformVideoID})
	}
	return results
}

type mockStarter struct {
	mu   sync.Mutex
	jobs []transcription.Job
}

func (m *mockStarter) Start(job transcription.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

func tiktokRaw(id string) platform.RawVideo {
	item := &platform.TikTokItem{ID: id}
	item.Author.UniqueID = "joe"
	item.Video.PlayAddr = "https://tt/" + id + ".mp4"
	return platform.RawVideo{TikTok: item}
}

func TestRunRefreshJobSkipsSeenVideos(t *testing.T) {
	creatorID := primitive.NewObjectID()
	store := &mockRefreshStore{
		profiles: []models.CreatorProfile{{
			ID:       creatorID,
			Platform: models.PlatformTikTok,
			Username: "joe",
		}},
		seen: map[string]bool{"1": true},
	}
	fetcher := &mockFetcher{raws: map[string][]platform.RawVideo{
		"joe": {tiktokRaw("1"), tiktokRaw("2"), tiktokRaw("3")},
	}}
	arch := &mockArchiver{}
	starter := &mockStarter{}

	r := NewRefresher(store, fetcher, arch, starter)
	r.RunRefreshJob()

	stored := store.stored[creatorID]
	if len(stored) != 2 {
		t.Fatalf("stored %d videos, want 2 (one already seen)", len(stored))
	}
	if stored[0].PlatformVideoID != "2" || stored[1].PlatformVideoID != "3" {
		t.Errorf("stored = %s, %s", stored[0].PlatformVideoID, stored[1].PlatformVideoID)
	}

	if len(arch.modes) != 1 || arch.modes[0] != archiver.ModeDeferred {
		t.Errorf("modes = %v, want single deferred batch", arch.modes)
	}

	starter.mu.Lock()
	defer starter.mu.Unlock()
	if len(starter.jobs) != 2 {
		t.Errorf("started %d transcriptions, want 2", len(starter.jobs))
	}
}

func TestRunRefreshJobNoNewVideos(t *testing.T) {
	creatorID := primitive.NewObjectID()
	store := &mockRefreshStore{
		profiles: []models.CreatorProfile{{ID: creatorID, Platform: models.PlatformTikTok, Username: "joe"}},
		seen:     map[string]bool{"1": true},
	}
	fetcher := &mockFetcher{raws: map[string][]platform.RawVideo{"joe": {tiktokRaw("1")}}}
	arch := &mockArchiver{}

	r := NewRefresher(store, fetcher, arch, &mockStarter{})
	r.RunRefreshJob()

	if len(arch.modes) != 0 {
		t.Error("archiver called with nothing new to store")
	}
	if len(store.stored) != 0 {
		t.Errorf("stored = %v", store.stored)
	}
}

func TestRunRefreshJobIsolatesCreatorFailures(t *testing.T) {
	okID := primitive.NewObjectID()
	store := &mockRefreshStore{
		profiles: []models.CreatorProfile{
			{ID: primitive.NewObjectID(), Platform: models.PlatformTikTok, Username: "broken"},
			{ID: okID, Platform: models.PlatformTikTok, Username: "joe"},
		},
	}
	// "broken" has no feed entry so FetchRecent returns an empty batch;
	// force a harder failure with a lookup error on its dedup check.
	fetcher := &mockFetcher{raws: map[string][]platform.RawVideo{
		"joe": {tiktokRaw("5")},
	}}

	r := NewRefresher(store, fetcher, &mockArchiver{}, &mockStarter{})
	r.RunRefreshJob()

	if len(store.stored[okID]) != 1 {
		t.Errorf("healthy creator stored %d videos, want 1", len(store.stored[okID]))
	}
}

func TestFilterNewLookupErrorCountsAsSeen(t *testing.T) {
	creatorID := primitive.NewObjectID()
	store := &mockRefreshStore{
		seenErr: map[string]error{"1": errors.New("read timeout")},
	}
	r := NewRefresher(store, &mockFetcher{}, &mockArchiver{}, &mockStarter{})

	videos := []platform.CanonicalVideo{
		{PlatformVideoID: "1"},
		{PlatformVideoID: "2"},
	}
	fresh := r.filterNew(context.Background(), creatorID, videos)
	if len(fresh) != 1 || fresh[0].PlatformVideoID != "2" {
		t.Errorf("fresh = %v, want only the cleanly-unseen video", fresh)
	}
}
