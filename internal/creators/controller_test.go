package creators

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/creatorstation/reel-harvester/internal/models"
	"github.com/creatorstation/reel-harvester/internal/platform"
	"github.com/gofiber/fiber/v2"
)

func testApp(svc *Service) *fiber.App {
	app := fiber.New()
	MountController(app.Group("/creators"), svc)
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func workingService(store *mockStore) *Service {
	resolver := &mockResolver{identity: &platform.Identity{
		Platform: models.PlatformTikTok,
		Username: "joe",
	}}
	fetcher := &mockFetcher{raws: []platform.RawVideo{tiktokRaw("1")}}
	return NewService(resolver, fetcher, &mockArchiver{}, store, &mockStarter{})
}

func TestFollowEndpoint(t *testing.T) {
	store := newMockStore()
	app := testApp(workingService(store))

	req := httptest.NewRequest("POST", "/creators/follow",
		strings.NewReader(`{"username":"@joe","platform":"tiktok","user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	out := decodeBody(t, resp.Body)
	if out["success"] != true {
		t.Errorf("success = %v", out["success"])
	}
	if out["follow_id"] != store.followID.Hex() {
		t.Errorf("follow_id = %v", out["follow_id"])
	}
	creator := out["creator"].(map[string]interface{})
	if creator["username"] != "joe" {
		t.Errorf("creator = %v", creator)
	}
	videos := out["videos"].([]interface{})
	if len(videos) != 1 {
		t.Fatalf("videos = %d", len(videos))
	}
	video := videos[0].(map[string]interface{})
	if video["video_url"] != "https://direct/1" {
		t.Errorf("video_url = %v, want direct url preferred", video["video_url"])
	}
}

func TestFollowEndpointGETAlias(t *testing.T) {
	app := testApp(workingService(newMockStore()))

	resp, err := app.Test(httptest.NewRequest("GET", "/creators/follow?username=joe&platform=tiktok", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestFollowEndpointValidation(t *testing.T) {
	app := testApp(workingService(newMockStore()))

	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"platform":"tiktok"}`},
		{"bad platform", `{"username":"joe","platform":"youtube"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/creators/follow", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestFollowEndpointStageErrorStatus(t *testing.T) {
	resolver := &mockResolver{err: errAssert("unknown user")}
	svc := NewService(resolver, &mockFetcher{}, &mockArchiver{}, newMockStore(), &mockStarter{})
	app := testApp(svc)

	req := httptest.NewRequest("POST", "/creators/follow",
		strings.NewReader(`{"username":"ghost","platform":"tiktok"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400 from resolve stage", resp.StatusCode)
	}
	out := decodeBody(t, resp.Body)
	if out["error"] != "Failed to resolve creator" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestUnfollowEndpoint(t *testing.T) {
	store := newMockStore()
	app := testApp(workingService(store))

	resp, err := app.Test(httptest.NewRequest("DELETE",
		"/creators/follow?creator_id="+store.creatorID.Hex()+"&user_id=u1", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestUnfollowEndpointBadCreatorID(t *testing.T) {
	app := testApp(workingService(newMockStore()))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/creators/follow?creator_id=garbage", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

type errAssert string

func (e errAssert) Error() string { return string(e) }
