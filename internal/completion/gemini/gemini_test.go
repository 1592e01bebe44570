package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/kisanvani/internal/config"
)

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), config.GeminiConfig{Model: "gemini-2.0-flash"})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), config.GeminiConfig{APIKey: "test-key", Model: "gemini-2.0-flash", Temperature: 0.4})
	if err != nil {
		t.Skipf("gemini client unavailable: %v", err)
	}
	assert.Equal(t, "gemini", c.Name())
	assert.Equal(t, "gemini-2.0-flash", c.model)
}
