// Package audio normalizes uploaded or fetched audio into the canonical form
// used as transcription input: 16 kHz mono signed 16-bit little-endian PCM in
// a WAV container. All conversion happens in memory.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadzzz/kisanvani/internal/errorsx"
)

// Canonical output parameters.
const (
	SampleRate = 16000
	Channels   = 1
	BitDepth   = 16
)

// Format is a detected audio container.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatWebM    Format = "webm"
	FormatOgg     Format = "ogg"
	FormatFLAC    Format = "flac"
	FormatMP4     Format = "mp4"
)

// Sniff identifies the container from its leading bytes. Browsers record
// webm/ogg even when the upload is named .mp3, so names are not trusted.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WAVE":
		return FormatWAV
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return FormatMP4
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// FormatFromHint maps a MIME type or file extension to a Format.
func FormatFromHint(hint string) Format {
	h := strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexByte(h, ';'); i >= 0 {
		h = h[:i]
	}
	h = strings.TrimPrefix(h, ".")
	switch h {
	case "wav", "wave", "audio/wav", "audio/wave", "audio/x-wav":
		return FormatWAV
	case "mp3", "mpeg", "audio/mpeg", "audio/mp3":
		return FormatMP3
	case "webm", "audio/webm", "video/webm":
		return FormatWebM
	case "ogg", "oga", "opus", "audio/ogg", "audio/opus", "video/ogg", "application/ogg":
		return FormatOgg
	case "flac", "audio/flac", "audio/x-flac":
		return FormatFLAC
	case "m4a", "mp4", "audio/mp4", "audio/m4a", "audio/x-m4a", "video/mp4":
		return FormatMP4
	}
	return FormatUnknown
}

// Canonical is normalized audio ready for transcription.
type Canonical struct {
	// WAV is a complete RIFF/WAVE file.
	WAV []byte
	// Source is the detected input container.
	Source Format
	// Samples is the number of mono samples in WAV.
	Samples int
}

// ContentType is the MIME type of the canonical audio.
func (c *Canonical) ContentType() string { return "audio/wav" }

// Normalizer converts raw audio into Canonical form. WAV and MP3 are decoded
// natively; other containers are piped through ffmpeg.
type Normalizer struct {
	ffmpeg   *FFmpeg
	maxBytes int64
	logger   *slog.Logger
}

// NewNormalizer builds a Normalizer. A nil ffmpeg disables non-native formats.
func NewNormalizer(ffmpeg *FFmpeg, maxBytes int64, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{ffmpeg: ffmpeg, maxBytes: maxBytes, logger: logger.With("component", "audio")}
}

// Normalize decodes raw audio and returns it as Canonical. The hint is a MIME
// type or extension used only when the bytes are not recognizable.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, hint string) (*Canonical, error) {
	if len(raw) == 0 {
		return nil, errorsx.New(errorsx.ReasonAudioDecode, "empty audio")
	}
	if n.maxBytes > 0 && int64(len(raw)) > n.maxBytes {
		return nil, errorsx.New(errorsx.ReasonBadRequest, fmt.Sprintf("audio exceeds %d bytes", n.maxBytes))
	}

	format := Sniff(raw)
	if format == FormatUnknown {
		format = FormatFromHint(hint)
	}

	var (
		pcm []int16
		err error
	)
	switch format {
	case FormatWAV:
		pcm, err = decodeWAV(raw)
	case FormatMP3:
		pcm, err = decodeMP3(raw)
	case FormatUnknown:
		return nil, errorsx.New(errorsx.ReasonUnsupportedFormat, "unrecognized audio format")
	default:
		if n.ffmpeg == nil {
			return nil, errorsx.New(errorsx.ReasonUnsupportedFormat, fmt.Sprintf("%s audio requires ffmpeg", format))
		}
		pcm, err = n.ffmpeg.Decode(ctx, raw)
	}
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("decoding %s audio: %w", format, err), errorsx.ReasonAudioDecode)
	}
	if len(pcm) == 0 {
		return nil, errorsx.New(errorsx.ReasonAudioDecode, "audio contains no samples")
	}

	n.logger.Debug("audio normalized", "format", format, "input_bytes", len(raw), "samples", len(pcm))
	return &Canonical{
		WAV:     EncodeWAV(int16ToBytes(pcm), SampleRate, Channels, BitDepth/8),
		Source:  format,
		Samples: len(pcm),
	}, nil
}
