package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg decodes containers without a native Go decoder (webm, ogg/opus,
// flac, mp4) by streaming through an ffmpeg child process over stdin/stdout.
type FFmpeg struct {
	path string
}

// NewFFmpeg locates the ffmpeg binary. It returns an error when the binary
// is not on PATH so callers can run without it.
func NewFFmpeg(path string) (*FFmpeg, error) {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("locating ffmpeg: %w", err)
	}
	return &FFmpeg{path: resolved}, nil
}

// Decode converts raw to canonical mono 16 kHz samples.
func (f *FFmpeg) Decode(ctx context.Context, raw []byte) ([]int16, error) {
	cmd := exec.CommandContext(ctx, f.path,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(Channels), "-ar", strconv.Itoa(SampleRate),
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(raw)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return bytesToInt16(stdout.Bytes()), nil
}
