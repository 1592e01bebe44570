// Package translate converts text between languages using the completion
// service.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/nadzzz/kisanvani/internal/completion"
	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/prompt"
)

// Translator asks a completer for a plain translation.
type Translator struct {
	completer completion.Completer
}

// New creates a Translator.
func New(c completion.Completer) *Translator {
	return &Translator{completer: c}
}

// Translate returns text rendered from source into target language codes.
// An empty source lets the model detect it. Identical languages return the
// input unchanged.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errorsx.New(errorsx.ReasonEmptyQuery, "no text to translate")
	}
	if target == "" {
		return "", errorsx.New(errorsx.ReasonBadRequest, "target language is required")
	}
	if strings.EqualFold(source, target) {
		return text, nil
	}

	out, err := t.completer.Complete(ctx, buildPrompt(text, source, target))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func buildPrompt(text, source, target string) string {
	from := "the source language"
	if source != "" {
		from = prompt.LanguageName(source)
	}
	to := prompt.LanguageName(target)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following text from %s to %s.\n", from, to)
	fmt.Fprintf(&sb, "Write the translation in %s script. Return only the translation, without quotes or notes.\n\n", to)
	sb.WriteString("Text:\n")
	sb.WriteString(text)
	return sb.String()
}
