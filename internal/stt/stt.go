// Package stt defines speech recognition backends and the transcription
// adapter that retries an unrecognized utterance in a fallback language.
package stt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/errorsx"
)

// Status is the outcome kind of one recognition attempt.
type Status int

const (
	// Recognized means the service returned a non-empty transcript.
	Recognized Status = iota
	// NoMatch means the service worked but heard no speech it could
	// transcribe in the requested language.
	NoMatch
)

func (s Status) String() string {
	switch s {
	case Recognized:
		return "recognized"
	case NoMatch:
		return "no_match"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Outcome is the result of a single recognition attempt. Service level
// failures (network, quota, bad credentials) are returned as errors, never as
// an Outcome.
type Outcome struct {
	Status   Status
	Text     string
	Language string
}

// Recognizer transcribes canonical audio in one language.
type Recognizer interface {
	// Name returns the backend identifier (e.g., "deepgram", "whisper").
	Name() string

	Recognize(ctx context.Context, clip *audio.Canonical, language string) (Outcome, error)
}

// Transcript is the accepted result of Transcribe.
type Transcript struct {
	Text     string
	Language string
	// Fallback is true when the primary language produced no match.
	Fallback bool
}

// Adapter runs the primary/fallback transcription policy over a Recognizer.
type Adapter struct {
	rec      Recognizer
	primary  string
	fallback string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAdapter wraps rec. An empty fallback disables the second attempt; a
// zero timeout leaves deadlines to the caller's context.
func NewAdapter(rec Recognizer, primary, fallback string, timeout time.Duration, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		rec:      rec,
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger.With("component", "stt", "backend", rec.Name()),
	}
}

// Languages returns the configured primary and fallback codes.
func (a *Adapter) Languages() (primary, fallback string) { return a.primary, a.fallback }

// Transcribe recognizes clip in the primary language and, only when that
// attempt is a no-match, once more in the fallback language. A service error
// on either attempt ends the operation.
func (a *Adapter) Transcribe(ctx context.Context, clip *audio.Canonical) (*Transcript, error) {
	out, err := a.attempt(ctx, clip, a.primary)
	if err != nil {
		return nil, err
	}
	if out.Status == Recognized {
		return &Transcript{Text: out.Text, Language: languageOr(out.Language, a.primary)}, nil
	}

	if a.fallback == "" || a.fallback == a.primary {
		return nil, errorsx.New(errorsx.ReasonUnrecognizedSpeech, "could not understand the audio")
	}
	a.logger.Info("no match in primary language, retrying", "primary", a.primary, "fallback", a.fallback)

	out, err = a.attempt(ctx, clip, a.fallback)
	if err != nil {
		return nil, err
	}
	if out.Status == Recognized {
		return &Transcript{Text: out.Text, Language: languageOr(out.Language, a.fallback), Fallback: true}, nil
	}
	return nil, errorsx.New(errorsx.ReasonUnrecognizedSpeech,
		fmt.Sprintf("could not understand the audio in %s or %s", a.primary, a.fallback))
}

func (a *Adapter) attempt(ctx context.Context, clip *audio.Canonical, lang string) (Outcome, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := a.rec.Recognize(ctx, clip, lang)
	if err != nil {
		reason := errorsx.ReasonTranscriptionService
		if errorsx.Classify(err) == errorsx.ReasonTimeout || ctx.Err() == context.DeadlineExceeded {
			reason = errorsx.ReasonTimeout
		}
		a.logger.Warn("recognition failed", "language", lang, "error", err)
		return Outcome{}, errorsx.Wrap(fmt.Errorf("transcribing (%s): %w", lang, err), reason)
	}
	if out.Status == Recognized && strings.TrimSpace(out.Text) == "" {
		out.Status = NoMatch
	}
	out.Text = strings.TrimSpace(out.Text)
	a.logger.Debug("recognition attempt", "language", lang, "status", out.Status, "chars", len([]rune(out.Text)), "elapsed", time.Since(start))
	return out, nil
}

func languageOr(detected, requested string) string {
	if detected != "" {
		return detected
	}
	return requested
}
