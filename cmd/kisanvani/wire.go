package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/kisanvani/internal/advisor"
	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/audiostore"
	"github.com/nadzzz/kisanvani/internal/completion"
	geminicompletion "github.com/nadzzz/kisanvani/internal/completion/gemini"
	mockcompletion "github.com/nadzzz/kisanvani/internal/completion/mock"
	openaicompletion "github.com/nadzzz/kisanvani/internal/completion/openai"
	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/extract"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/prompt"
	"github.com/nadzzz/kisanvani/internal/redact"
	"github.com/nadzzz/kisanvani/internal/snapshot"
	"github.com/nadzzz/kisanvani/internal/stt"
	deepgramstt "github.com/nadzzz/kisanvani/internal/stt/deepgram"
	whisperstt "github.com/nadzzz/kisanvani/internal/stt/whisper"
	"github.com/nadzzz/kisanvani/internal/translate"
	"github.com/nadzzz/kisanvani/internal/tts"
	elevenlabstts "github.com/nadzzz/kisanvani/internal/tts/elevenlabs"
	pipertts "github.com/nadzzz/kisanvani/internal/tts/piper"
)

// pipeline is the fully wired advisory service.
type pipeline struct {
	advisor    *advisor.Orchestrator
	translator *translate.Translator
	artifacts  *audiostore.Store
	uploads    *audiostore.Store
	speaker    *tts.Adapter // nil when speech is disabled
}

func (p *pipeline) Close() error {
	if p.speaker != nil {
		return p.speaker.Close()
	}
	return nil
}

// buildPipeline constructs every backend named by cfg.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	completer, err := newCompleter(ctx, cfg.Completion)
	if err != nil {
		return nil, err
	}
	client := completion.New(completer, cfg.Completion.Timeout, logger)
	logger.Info("completion backend ready", "backend", completer.Name())

	recognizer, err := newRecognizer(cfg.STT, logger)
	if err != nil {
		return nil, err
	}
	transcriber := stt.NewAdapter(recognizer, cfg.Language.Primary, cfg.Language.Fallback, cfg.STT.Timeout, logger)
	logger.Info("stt backend ready", "backend", recognizer.Name(),
		"primary", cfg.Language.Primary, "fallback", cfg.Language.Fallback)

	ffmpeg, err := audio.NewFFmpeg(cfg.Audio.FFmpegPath)
	if err != nil {
		logger.Warn("ffmpeg not available, only wav and mp3 input is accepted", "error", err)
		ffmpeg = nil
	}
	normalizer := audio.NewNormalizer(ffmpeg, cfg.Audio.MaxBytes, logger)

	artifacts, err := audiostore.New(cfg.Storage.AudioDir, "advice")
	if err != nil {
		return nil, fmt.Errorf("audio store: %w", err)
	}
	uploads, err := audiostore.New(cfg.Storage.UploadDir, "upload")
	if err != nil {
		return nil, fmt.Errorf("upload store: %w", err)
	}

	var speaker *tts.Adapter
	if cfg.TTS.Enabled {
		synth, err := newSynthesizer(cfg.TTS, logger)
		if err != nil {
			return nil, err
		}
		speaker = tts.NewAdapter(synth, artifacts, cfg.TTS.Timeout, logger)
		logger.Info("tts backend ready", "backend", synth.Name())
	} else {
		logger.Info("speech synthesis disabled")
	}

	snap := snapshot.Default()
	if cfg.Snapshot.File != "" {
		snap, err = snapshot.LoadFile(cfg.Snapshot.File)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded domain snapshot", "path", cfg.Snapshot.File)
	}

	opts := advisor.Options{
		Normalizer:       normalizer,
		Transcriber:      transcriber,
		Fetcher:          extract.New(cfg.Extract, logger),
		Completer:        client,
		History:          history.New(),
		Snapshot:         snapshot.NewStatic(snap),
		Prompt:           prompt.New(cfg.Language.Response),
		Window:           cfg.History.Window,
		ResponseLanguage: cfg.Language.Response,
		AudioBaseURL:     cfg.Server.PublicBaseURL + "/audio",
		Redactor:         redact.New(cfg.Privacy.RedactPII),
		Logger:           logger,
	}
	// A nil *tts.Adapter inside the interface would look enabled.
	if speaker != nil {
		opts.Speaker = speaker
	}

	return &pipeline{
		advisor:    advisor.New(opts),
		translator: translate.New(client),
		artifacts:  artifacts,
		uploads:    uploads,
		speaker:    speaker,
	}, nil
}

func newCompleter(ctx context.Context, cfg config.CompletionConfig) (completion.Completer, error) {
	switch cfg.Backend {
	case "gemini":
		return geminicompletion.New(ctx, cfg.Gemini)
	case "openai":
		return openaicompletion.New(cfg.OpenAI), nil
	case "mock":
		return mockcompletion.New(), nil
	}
	return nil, fmt.Errorf("unknown completion backend: %q", cfg.Backend)
}

func newRecognizer(cfg config.STTConfig, logger *slog.Logger) (stt.Recognizer, error) {
	switch cfg.Backend {
	case "deepgram":
		return deepgramstt.New(cfg.Deepgram, "", logger)
	case "whisper":
		return whisperstt.New(cfg.Whisper, logger), nil
	}
	return nil, fmt.Errorf("unknown stt backend: %q", cfg.Backend)
}

func newSynthesizer(cfg config.TTSConfig, logger *slog.Logger) (tts.Synthesizer, error) {
	switch cfg.Backend {
	case "piper":
		return pipertts.New(cfg.Piper, logger), nil
	case "elevenlabs":
		return elevenlabstts.New(cfg.ElevenLabs, logger)
	}
	return nil, fmt.Errorf("unknown tts backend: %q", cfg.Backend)
}
