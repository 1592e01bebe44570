// Package completion defines the text completion collaborator used to
// generate advice and translations.
//
// Model output is treated as untrusted free text: callers never parse it as
// structured data.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/kisanvani/internal/errorsx"
)

// Completer turns a prompt into text.
type Completer interface {
	// Name returns the backend identifier (e.g., "gemini", "openai").
	Name() string

	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion is returned when a backend produces no text.
var ErrEmptyCompletion = errors.New("completion returned empty text")

// Client applies the per-call timeout and error classification to a backend.
// It never retries: a repeated model call costs money and may duplicate
// content.
type Client struct {
	backend Completer
	timeout time.Duration
	logger  *slog.Logger
}

// New wraps backend. A zero timeout leaves deadlines to the caller.
func New(backend Completer, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backend: backend,
		timeout: timeout,
		logger:  logger.With("component", "completion", "backend", backend.Name()),
	}
}

// Name returns the wrapped backend identifier.
func (c *Client) Name() string { return c.backend.Name() }

// Complete calls the backend once. Failures carry ReasonAdviceGeneration, or
// ReasonTimeout when the deadline expired.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.backend.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		c.logger.Error("completion failed", "error", err, "elapsed", time.Since(start))
		reason := errorsx.ReasonAdviceGeneration
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			reason = errorsx.ReasonTimeout
		}
		return "", errorsx.Wrap(fmt.Errorf("%s completion: %w", c.backend.Name(), err), reason)
	}

	c.logger.Debug("completion done", "prompt_chars", len([]rune(prompt)), "response_chars", len([]rune(text)), "elapsed", time.Since(start))
	return strings.TrimSpace(text), nil
}
