package convert

import (
	"bytes"
	"fmt"
	"os/exec"
)

// ConvertMP4ToMP3 extracts the audio track of an MP4 as MP3. Used to shrink
// large videos below the transcription service's upload limit.
func ConvertMP4ToMP3(input []byte) ([]byte, error) {
	// -i pipe:0 : Read input from stdin.
	// -f mp3    : Specify the output format as MP3.
	// pipe:1    : Write output to stdout.
	// -y        : Overwrite output files without asking.
	cmd := exec.Command(
		"ffmpeg",
		"-i", "pipe:0",
		"-f", "mp3",
		"pipe:1",
		"-y",
	)

	cmd.Stdin = bytes.NewReader(input)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %v, details: %s", err, stderr.String())
	}

	return out.Bytes(), nil
}
