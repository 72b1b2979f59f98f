package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/creatorstation/reel-harvester/internal/config"
	"github.com/creatorstation/reel-harvester/pkg/convert"
	"github.com/creatorstation/reel-harvester/pkg/web"
)

const (
	// maxMediaBytes is the hard cap on media we will transcribe at all.
	maxMediaBytes = 100 * 1024 * 1024
	// directUploadLimit is the largest payload the transcription server
	// accepts as-is; bigger videos get their audio extracted first.
	directUploadLimit = 29 * 1024 * 1024
)

// TranscriptionResponse is the transcription server's reply.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// WhisperClient transcribes media through the whisper server.
type WhisperClient struct {
	serverURL string
	model     string
}

// NewWhisperClient creates a transcription client.
func NewWhisperClient(cfg config.WhisperConfig) *WhisperClient {
	return &WhisperClient{serverURL: cfg.ServerURL, model: cfg.Model}
}

// TranscribeBuffer transcribes an in-memory video. Oversized media is
// rejected; media above the direct-upload limit is converted to MP3 first.
func (w *WhisperClient) TranscribeBuffer(ctx context.Context, data []byte) (string, error) {
	if len(data) > maxMediaBytes {
		return "", fmt.Errorf("media too large to transcribe: %d bytes", len(data))
	}

	if len(data) >= directUploadLimit {
		mp3, err := convert.ConvertMP4ToMP3(data)
		if err != nil {
			return "", fmt.Errorf("error converting to MP3: %v", err)
		}
		data = mp3
	}

	return w.transcribeAudio(ctx, data)
}

// TranscribeURL downloads a media url and transcribes it. The size is
// checked with a HEAD request before downloading.
func (w *WhisperClient) TranscribeURL(ctx context.Context, url string) (string, error) {
	contentLength, err := web.MediaSize(url)
	if err != nil {
		return "", fmt.Errorf("error checking media size: %v", err)
	}
	if contentLength > maxMediaBytes {
		return "", fmt.Errorf("media too large to transcribe: %d bytes", contentLength)
	}

	data, err := web.FetchMedia(url)
	if err != nil {
		return "", fmt.Errorf("error downloading media: %v", err)
	}

	return w.TranscribeBuffer(ctx, data)
}

func (w *WhisperClient) transcribeAudio(ctx context.Context, audioData []byte) (string, error) {
	var b bytes.Buffer
	mw := multipart.NewWriter(&b)

	if err := mw.WriteField("model", w.model); err != nil {
		return "", err
	}

	fw, err := mw.CreateFormFile("file", "audio.mp3")
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(fw, bytes.NewReader(audioData)); err != nil {
		return "", err
	}

	mw.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", w.serverURL, &b)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to transcribe audio: %s", string(respBody))
	}

	var result TranscriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	return result.Text, nil
}
