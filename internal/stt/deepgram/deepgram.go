// Package deepgram implements stt.Recognizer with Deepgram's prerecorded
// transcription API.
package deepgram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/stt"
)

var initOnce sync.Once

// Recognizer sends canonical WAV to Deepgram in one request per attempt.
type Recognizer struct {
	model  string
	dg     *api.Client
	logger *slog.Logger
}

// New creates a Deepgram recognizer. host overrides the API host and may be
// empty.
func New(cfg config.DeepgramConfig, host string, logger *slog.Logger) (*Recognizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepgram: api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	initOnce.Do(client.InitWithDefault)

	c := client.NewREST(cfg.APIKey, &interfaces.ClientOptions{Host: host})
	return &Recognizer{
		model:  cfg.Model,
		dg:     api.New(c),
		logger: logger.With("component", "deepgram_stt"),
	}, nil
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "deepgram" }

// Recognize transcribes clip in the given language.
func (r *Recognizer) Recognize(ctx context.Context, clip *audio.Canonical, language string) (stt.Outcome, error) {
	opts := &interfaces.PreRecordedTranscriptionOptions{
		Model:       r.model,
		Language:    language,
		Punctuate:   true,
		SmartFormat: true,
	}

	res, err := r.dg.FromStream(ctx, bytes.NewReader(clip.WAV), opts)
	if err != nil {
		return stt.Outcome{}, fmt.Errorf("deepgram prerecorded: %w", err)
	}

	text, detected := transcriptFrom(res)
	if detected == "" {
		detected = language
	}

	r.logger.Debug("deepgram transcription", "language", detected, "chars", len([]rune(text)))
	if text == "" {
		return stt.Outcome{Status: stt.NoMatch, Language: language}, nil
	}
	return stt.Outcome{Status: stt.Recognized, Text: text, Language: detected}, nil
}

// transcriptFrom returns the first non-empty alternative and the language
// Deepgram detected on its channel, if any.
func transcriptFrom(res *msginterfaces.PreRecordedResponse) (text, detected string) {
	if res == nil || res.Results == nil {
		return "", ""
	}
	for _, ch := range res.Results.Channels {
		for _, alt := range ch.Alternatives {
			if t := strings.TrimSpace(alt.Transcript); t != "" {
				return t, ch.DetectedLanguage
			}
		}
	}
	return "", ""
}
