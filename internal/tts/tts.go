// Package tts renders advice text as speech and stores the result as a
// retrievable audio artifact.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/kisanvani/internal/audiostore"
	"github.com/nadzzz/kisanvani/internal/errorsx"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g., "ml", "en") used to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "piper", "elevenlabs").
	Name() string

	// Synthesize renders text as a complete audio file.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is a complete audio file (WAV, MP3, ...).
	Audio []byte

	// ContentType is the MIME type of Audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz, when known.
	SampleRate int

	// Channels is the number of audio channels, when known.
	Channels int
}

// Artifact identifies stored synthesized speech.
type Artifact struct {
	Name        string
	ContentType string
	Size        int
}

// ErrEmptyText is returned for blank synthesis input.
var ErrEmptyText = errors.New("empty text for synthesis")

// Adapter synthesizes text and stores the audio under a generated name.
type Adapter struct {
	synth   Synthesizer
	store   *audiostore.Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewAdapter wires a synthesizer to a store.
func NewAdapter(synth Synthesizer, store *audiostore.Store, timeout time.Duration, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		synth:   synth,
		store:   store,
		timeout: timeout,
		logger:  logger.With("component", "tts", "backend", synth.Name()),
	}
}

// Synthesize renders text in language and returns the stored artifact.
// Every failure carries ReasonSynthesis (or ReasonTimeout).
func (a *Adapter) Synthesize(ctx context.Context, text, language string) (*Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errorsx.Wrap(ErrEmptyText, errorsx.ReasonSynthesis)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := a.synth.Synthesize(ctx, text, SynthesizeOpts{Language: language})
	if err != nil {
		reason := errorsx.ReasonSynthesis
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			reason = errorsx.ReasonTimeout
		}
		return nil, errorsx.Wrap(fmt.Errorf("%s synthesis: %w", a.synth.Name(), err), reason)
	}
	if res == nil || len(res.Audio) == 0 {
		return nil, errorsx.New(errorsx.ReasonSynthesis, "synthesizer returned no audio")
	}

	name, err := a.store.Save(res.Audio, audiostore.ExtForContentType(res.ContentType))
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("saving synthesized audio: %w", err), errorsx.ReasonSynthesis)
	}

	a.logger.Debug("synthesized", "language", language, "file", name, "bytes", len(res.Audio), "elapsed", time.Since(start))
	return &Artifact{Name: name, ContentType: res.ContentType, Size: len(res.Audio)}, nil
}

// Close releases the underlying synthesizer.
func (a *Adapter) Close() error { return a.synth.Close() }
