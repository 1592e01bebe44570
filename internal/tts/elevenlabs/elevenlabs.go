// Package elevenlabs implements tts.Synthesizer with the ElevenLabs
// stream-input WebSocket API, collecting the stream into one audio file.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/tts"
)

// Synthesizer opens one WebSocket per request.
type Synthesizer struct {
	cfg    config.ElevenLabsConfig
	dialer websocket.Dialer
	logger *slog.Logger
}

// New creates an ElevenLabs synthesizer from config.
func New(cfg config.ElevenLabsConfig, logger *slog.Logger) (*Synthesizer, error) {
	if cfg.APIKey == "" || cfg.VoiceID == "" {
		return nil, errors.New("elevenlabs: api_key and voice_id are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "wss://api.elevenlabs.io"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		cfg:    cfg,
		dialer: websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: 10 * time.Second},
		logger: logger.With("component", "elevenlabs_tts"),
	}, nil
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "elevenlabs" }

func (s *Synthesizer) streamURL() string {
	q := url.Values{}
	if s.cfg.ModelID != "" {
		q.Set("model_id", s.cfg.ModelID)
	}
	if s.cfg.OutputFormat != "" {
		q.Set("output_format", s.cfg.OutputFormat)
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(s.cfg.VoiceID) + "/stream-input?" + q.Encode()
}

// contentType derives the MIME type from an output_format such as
// "mp3_44100_128" or "pcm_16000".
func (s *Synthesizer) contentType() string {
	switch {
	case s.cfg.OutputFormat == "", strings.HasPrefix(s.cfg.OutputFormat, "mp3"):
		return "audio/mpeg"
	case strings.HasPrefix(s.cfg.OutputFormat, "ulaw"):
		return "audio/basic"
	default:
		return "application/octet-stream"
	}
}

type streamMessage struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Synthesize sends text, ends the input stream and gathers audio chunks until
// the server marks the final one.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, tts.ErrEmptyText
	}

	conn, resp, err := s.dialer.DialContext(ctx, s.streamURL(), http.Header{"xi-api-key": []string{s.cfg.APIKey}})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connecting to elevenlabs: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("connecting to elevenlabs: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	messages := []map[string]any{
		{"text": " ", "voice_settings": map[string]any{"stability": 0.5, "similarity_boost": 0.8}},
		{"text": text + " ", "try_trigger_generation": true},
		{"text": ""}, // end of input
	}
	for _, m := range messages {
		if err := conn.WriteJSON(m); err != nil {
			return nil, s.wrapIOError(ctx, "sending text", err)
		}
	}

	var out bytes.Buffer
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && out.Len() > 0 {
				break
			}
			return nil, s.wrapIOError(ctx, "reading audio", err)
		}
		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("elevenlabs non-json frame", "bytes", len(data))
			continue
		}
		if msg.Error != "" {
			return nil, fmt.Errorf("elevenlabs error: %s: %s", msg.Error, msg.Message)
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("decoding audio chunk: %w", err)
			}
			out.Write(chunk)
		}
		if msg.IsFinal {
			break
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.logger.Debug("elevenlabs synthesis complete", "language", opts.Language, "bytes", out.Len())
	return &tts.SynthesizeResult{Audio: out.Bytes(), ContentType: s.contentType(), Channels: 1}, nil
}

func (s *Synthesizer) wrapIOError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Close is a no-op; connections are per-request.
func (s *Synthesizer) Close() error { return nil }
