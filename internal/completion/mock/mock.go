// Package mock provides an offline completion backend for development and
// demos without API keys.
package mock

import (
	"context"
	"fmt"
	"strings"
)

// Completer echoes the farmer query found in the prompt.
type Completer struct{}

// New returns a mock completer.
func New() *Completer { return &Completer{} }

// Name returns the backend identifier.
func (c *Completer) Name() string { return "mock" }

// Complete returns a canned answer that quotes the last "Farmer Query:" line.
func (c *Completer) Complete(_ context.Context, prompt string) (string, error) {
	query := prompt
	if i := strings.LastIndex(prompt, "Farmer Query:"); i >= 0 {
		query = prompt[i+len("Farmer Query:"):]
		if j := strings.IndexByte(query, '\n'); j >= 0 {
			query = query[:j]
		}
	}
	return fmt.Sprintf("(mock) Advice for %q: check local conditions and consult the agriculture officer.", strings.TrimSpace(query)), nil
}
