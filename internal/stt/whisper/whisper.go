// Package whisper implements stt.Recognizer against an OpenAI-compatible
// /v1/audio/transcriptions endpoint (OpenAI, faster-whisper-server,
// whisper.cpp server).
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/stt"
)

// Recognizer posts canonical WAV as a multipart upload.
type Recognizer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a Whisper recognizer from config.
func New(cfg config.WhisperConfig, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{},
		logger:   logger.With("component", "whisper_stt"),
	}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "whisper" }

// Recognize transcribes clip in the given language.
func (r *Recognizer) Recognize(ctx context.Context, clip *audio.Canonical, language string) (stt.Outcome, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return stt.Outcome{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(clip.WAV)); err != nil {
		return stt.Outcome{}, fmt.Errorf("writing audio: %w", err)
	}
	if r.model != "" {
		_ = writer.WriteField("model", r.model)
	}
	if language != "" {
		_ = writer.WriteField("language", language)
	}
	_ = writer.WriteField("response_format", "verbose_json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return stt.Outcome{}, fmt.Errorf("creating request: %w", err)
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return stt.Outcome{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return stt.Outcome{}, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return stt.Outcome{}, fmt.Errorf("decoding transcription: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	detected := languageCode(result.Language, language)
	r.logger.Debug("transcription complete", "chars", len([]rune(text)), "language", detected)
	if text == "" {
		return stt.Outcome{Status: stt.NoMatch, Language: language}, nil
	}
	return stt.Outcome{Status: stt.Recognized, Text: text, Language: detected}, nil
}

// whisperLanguages maps the language names some servers report to codes.
var whisperLanguages = map[string]string{
	"malayalam": "ml", "english": "en", "hindi": "hi", "telugu": "te", "tamil": "ta", "kannada": "kn",
}

// languageCode returns the detected language as a code, or requested when
// the server reported nothing usable.
func languageCode(detected, requested string) string {
	d := strings.ToLower(strings.TrimSpace(detected))
	if code, ok := whisperLanguages[d]; ok {
		return code
	}
	if len(d) == 2 {
		return d
	}
	return requested
}
