// Package gemini implements completion.Completer with the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/nadzzz/kisanvani/internal/config"
)

// Completer calls Models.GenerateContent with a single text prompt.
type Completer struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

// New creates a Gemini completer from config.
func New(ctx context.Context, cfg config.GeminiConfig) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Completer{
		client:          client,
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "gemini" }

// Complete generates text for prompt.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: c.maxOutputTokens,
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}
