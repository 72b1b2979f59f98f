package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/creatorstation/reel-harvester/internal/config"
)

func TestTranscribeBuffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "ggml-large-v3-turbo" {
			t.Errorf("model = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("form file: %v", err)
		}
		json.NewEncoder(w).Encode(TranscriptionResponse{Text: "hello world"})
	}))
	defer srv.Close()

	w := NewWhisperClient(config.WhisperConfig{ServerURL: srv.URL, Model: "ggml-large-v3-turbo"})

	text, err := w.TranscribeBuffer(context.Background(), []byte("tiny mp3 payload"))
	if err != nil {
		t.Fatalf("TranscribeBuffer: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeBufferRejectsOversized(t *testing.T) {
	w := NewWhisperClient(config.WhisperConfig{ServerURL: "http://unused", Model: "m"})

	_, err := w.TranscribeBuffer(context.Background(), make([]byte, maxMediaBytes+1))
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("err = %v, want size rejection", err)
	}
}

func TestTranscribeBufferServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWhisperClient(config.WhisperConfig{ServerURL: srv.URL, Model: "m"})
	if _, err := w.TranscribeBuffer(context.Background(), []byte("payload")); err == nil {
		t.Error("expected error on server failure")
	}
}
