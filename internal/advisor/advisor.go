// Package advisor implements the turn pipeline: resolve the query text from
// its source, classify intent, build the prompt, call the completion service,
// record the turn and optionally speak the answer.
//
// A turn is recorded only after the completion call succeeds, so a failed or
// cancelled turn never leaves a partial entry in history.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/completion"
	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/extract"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/intent"
	"github.com/nadzzz/kisanvani/internal/message"
	"github.com/nadzzz/kisanvani/internal/prompt"
	"github.com/nadzzz/kisanvani/internal/redact"
	"github.com/nadzzz/kisanvani/internal/snapshot"
	"github.com/nadzzz/kisanvani/internal/stt"
	"github.com/nadzzz/kisanvani/internal/tts"
)

// Minimum meaningful lengths, in characters.
const (
	MinTranscriptChars = 3
	MinPageChars       = 10
)

// DefaultWindow is the number of past turns included in a prompt.
const DefaultWindow = 5

// Normalizer converts raw audio to canonical form.
type Normalizer interface {
	Normalize(ctx context.Context, raw []byte, hint string) (*audio.Canonical, error)
}

// Transcriber turns canonical audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip *audio.Canonical) (*stt.Transcript, error)
}

// Fetcher retrieves remote resources and reduces documents to text.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*extract.Resource, error)
	Text(res *extract.Resource) (string, error)
}

// Speaker renders text as a stored audio artifact.
type Speaker interface {
	Synthesize(ctx context.Context, text, language string) (*tts.Artifact, error)
}

// Options wires the orchestrator's collaborators. Speaker may be nil when
// speech output is disabled.
type Options struct {
	Normalizer  Normalizer
	Transcriber Transcriber
	Fetcher     Fetcher
	Completer   completion.Completer
	Speaker     Speaker
	History     *history.Store
	Snapshot    snapshot.Source
	Prompt      *prompt.Builder

	// Window is how many recent turns are shown to the model.
	Window int
	// ResponseLanguage is the language code used for synthesized speech.
	ResponseLanguage string
	// AudioBaseURL prefixes artifact names in AudioURL ("/audio" by default).
	AudioBaseURL string

	Redactor redact.Redactor
	Logger   *slog.Logger
	Now      func() time.Time
}

// Orchestrator coordinates a full advisory turn.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AudioBaseURL == "" {
		opts.AudioBaseURL = "/audio"
	}
	opts.AudioBaseURL = strings.TrimRight(opts.AudioBaseURL, "/")
	if opts.Prompt == nil {
		opts.Prompt = prompt.New(opts.ResponseLanguage)
	}
	return &Orchestrator{opts: opts, logger: opts.Logger.With("component", "advisor")}
}

// SpeechEnabled reports whether a speaker is configured.
func (o *Orchestrator) SpeechEnabled() bool { return o.opts.Speaker != nil }

// resolved is the query text of a turn and where it came from.
type resolved struct {
	text      string
	source    message.Source
	sourceURL string
}

// HandleTurn processes one turn. Client and service failures are returned as
// errors carrying an errorsx reason; synthesis failures are logged and leave
// the audio fields empty.
func (o *Orchestrator) HandleTurn(ctx context.Context, req *message.TurnRequest) (*message.AdviceResult, error) {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	src, err := req.Source()
	if err != nil {
		return nil, err
	}
	logger := o.logger.With("turn_id", req.ID, "source", src)
	logger.Info("turn started", "speak", req.Speak)

	q, err := o.resolve(ctx, req, src, logger)
	if err != nil {
		logger.Warn("query resolution failed", "reason", errorsx.Classify(err), "error", err)
		return nil, err
	}

	in := intent.Classify(q.text)
	window := o.opts.History.Recent(o.opts.Window)
	snap, err := o.opts.Snapshot.Snapshot(ctx)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("loading snapshot: %w", err), errorsx.ReasonAdviceGeneration)
	}
	logger.Info("query resolved", "intent", in, "query", o.opts.Redactor.Preview(q.text, 80), "context_turns", len(window))

	if err := ctx.Err(); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonTimeout)
	}

	text := o.opts.Prompt.Build(q.text, in, window, snap)
	response, err := o.opts.Completer.Complete(ctx, text)
	if err != nil {
		logger.Error("advice generation failed", "error", err)
		return nil, errorsx.Wrap(err, errorsx.ReasonAdviceGeneration)
	}

	now := o.opts.Now()
	o.opts.History.Append(history.Turn{Query: q.text, Response: response, Intent: in, Timestamp: now})

	result := &message.AdviceResult{
		Response:    response,
		Intent:      in,
		Timestamp:   now,
		ContextUsed: len(window) > 0,
	}
	if q.source != message.SourceText {
		result.TranscribedQuery = q.text
		result.SourceURL = q.sourceURL
	}

	if req.Speak {
		o.attachSpeech(ctx, result, logger)
	}

	logger.Info("turn complete", "intent", in, "audio", result.HasAudio(), "duration", time.Since(start))
	return result, nil
}

func (o *Orchestrator) resolve(ctx context.Context, req *message.TurnRequest, src message.Source, logger *slog.Logger) (*resolved, error) {
	switch src {
	case message.SourceAudio:
		text, err := o.transcribe(ctx, req.Audio, req.ContentType)
		if err != nil {
			return nil, err
		}
		return &resolved{text: text, source: src}, nil

	case message.SourceURL:
		return o.resolveURL(ctx, strings.TrimSpace(req.URL), logger)

	default:
		return &resolved{text: strings.TrimSpace(req.Text), source: src}, nil
	}
}

func (o *Orchestrator) resolveURL(ctx context.Context, rawURL string, logger *slog.Logger) (*resolved, error) {
	res, err := o.opts.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if res.Kind == extract.KindAudio {
		logger.Debug("remote resource is audio", "content_type", res.ContentType, "bytes", len(res.Body))
		text, err := o.transcribe(ctx, res.Body, res.ContentType)
		if err != nil {
			return nil, err
		}
		return &resolved{text: text, source: message.SourceURL, sourceURL: rawURL}, nil
	}

	text, err := o.opts.Fetcher.Text(res)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinPageChars {
		return nil, errorsx.New(errorsx.ReasonEmptyQuery, "could not extract meaningful text from the url")
	}
	return &resolved{text: text, source: message.SourceURL, sourceURL: rawURL}, nil
}

// transcribe normalizes and recognizes audio, rejecting transcripts too short
// to be a question.
func (o *Orchestrator) transcribe(ctx context.Context, raw []byte, hint string) (string, error) {
	tr, err := o.Transcribe(ctx, raw, hint)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(tr.Text) < MinTranscriptChars {
		return "", errorsx.New(errorsx.ReasonEmptyQuery, "transcript too short")
	}
	return tr.Text, nil
}

// Transcribe normalizes raw audio and runs the primary/fallback recognition
// policy. It backs the standalone speech-to-text operation.
func (o *Orchestrator) Transcribe(ctx context.Context, raw []byte, hint string) (*stt.Transcript, error) {
	clip, err := o.opts.Normalizer.Normalize(ctx, raw, hint)
	if err != nil {
		return nil, err
	}
	tr, err := o.opts.Transcriber.Transcribe(ctx, clip)
	if err != nil {
		return nil, err
	}
	tr.Text = strings.TrimSpace(tr.Text)
	return tr, nil
}

func (o *Orchestrator) attachSpeech(ctx context.Context, result *message.AdviceResult, logger *slog.Logger) {
	if o.opts.Speaker == nil {
		logger.Debug("speech requested but synthesis is disabled")
		return
	}
	art, err := o.opts.Speaker.Synthesize(ctx, result.Response, o.opts.ResponseLanguage)
	if err != nil {
		logger.Warn("synthesis failed, returning text only", "error", err)
		return
	}
	result.AudioFile = art.Name
	result.AudioURL = o.AudioURL(art.Name)
}

// Speak synthesizes arbitrary text. An empty language uses the response
// language.
func (o *Orchestrator) Speak(ctx context.Context, text, language string) (*tts.Artifact, error) {
	if o.opts.Speaker == nil {
		return nil, errorsx.New(errorsx.ReasonSynthesis, "speech synthesis is disabled")
	}
	if language == "" {
		language = o.opts.ResponseLanguage
	}
	return o.opts.Speaker.Synthesize(ctx, text, language)
}

// AudioURL is the retrieval locator for an artifact name.
func (o *Orchestrator) AudioURL(name string) string {
	return o.opts.AudioBaseURL + "/" + name
}

// History returns every recorded turn, oldest first.
func (o *Orchestrator) History() []history.Turn { return o.opts.History.All() }

// ClearHistory discards all recorded turns.
func (o *Orchestrator) ClearHistory() {
	o.opts.History.Clear()
	o.logger.Info("conversation history cleared")
}

// Snapshot returns the current domain snapshot.
func (o *Orchestrator) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	return o.opts.Snapshot.Snapshot(ctx)
}
