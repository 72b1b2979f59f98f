package web

import (
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

var client = resty.New()

// FetchMedia downloads a media file into memory.
func FetchMedia(mediaURI string) ([]byte, error) {
	resp, err := client.R().SetHeader("User-Agent", "reel-harvester-fetchMedia").Get(mediaURI)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch media: %s, %s", resp.Status(), resp.String())
	}

	return resp.Body(), nil
}

// MediaSize returns the Content-Length of a media URL without downloading it.
// A zero result means the server did not report a length.
func MediaSize(mediaURI string) (int64, error) {
	resp, err := client.R().SetHeader("User-Agent", "reel-harvester-mediaSize").Head(mediaURI)
	if err != nil {
		return 0, err
	}

	contentLengthStr := resp.Header().Get("Content-Length")
	contentLength, _ := strconv.ParseInt(contentLengthStr, 10, 64)

	return contentLength, nil
}
