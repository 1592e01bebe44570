// Package message defines the data types flowing through the advisory
// pipeline: the inbound turn request and the per-turn result record.
package message

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/intent"
)

// Source names where a turn's query text comes from.
type Source string

const (
	SourceText  Source = "text"
	SourceAudio Source = "audio"
	SourceURL   Source = "url"
)

// TurnRequest is an incoming turn from any transport. Exactly one of Text,
// Audio or URL carries the query.
type TurnRequest struct {
	// ID is a unique identifier for this turn (UUID).
	ID string `json:"id,omitempty"`

	// Text is an inline query.
	Text string `json:"query,omitempty"`

	// Audio is a recorded query. Nil for text or URL turns.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type or file extension of Audio, used only when
	// the bytes themselves are not recognizable.
	ContentType string `json:"content_type,omitempty"`

	// URL locates remote audio or a web page holding the query.
	URL string `json:"url,omitempty"`

	// Speak requests synthesized speech for the answer.
	Speak bool `json:"speak,omitempty"`
}

// Source returns the single populated query source. No source is an empty
// query; more than one is a malformed request.
func (r *TurnRequest) Source() (Source, error) {
	var found []Source
	if len(r.Audio) > 0 {
		found = append(found, SourceAudio)
	}
	if strings.TrimSpace(r.URL) != "" {
		found = append(found, SourceURL)
	}
	if strings.TrimSpace(r.Text) != "" {
		found = append(found, SourceText)
	}
	switch len(found) {
	case 0:
		return "", errorsx.New(errorsx.ReasonEmptyQuery, "query is empty")
	case 1:
		return found[0], nil
	}
	return "", errorsx.New(errorsx.ReasonBadRequest, "provide exactly one of query, audio or url")
}

// AdviceResult is the outcome of one turn.
type AdviceResult struct {
	Response         string        `json:"response"`
	Intent           intent.Intent `json:"intent"`
	Timestamp        time.Time     `json:"-"`
	AudioFile        string        `json:"audio_file,omitempty"`
	AudioURL         string        `json:"audio_url,omitempty"`
	TranscribedQuery string        `json:"transcribed_query,omitempty"`
	SourceURL        string        `json:"source_url,omitempty"`
	ContextUsed      bool          `json:"context_used"`
}

// HasAudio reports whether synthesized speech is attached.
func (r *AdviceResult) HasAudio() bool { return r.AudioFile != "" }

// MarshalJSON renders Timestamp as "YYYY-MM-DD HH:MM:SS".
func (r AdviceResult) MarshalJSON() ([]byte, error) {
	type alias AdviceResult
	return json.Marshal(struct {
		alias
		Timestamp string `json:"timestamp"`
	}{alias: alias(r), Timestamp: r.Timestamp.Format(history.TimestampLayout)})
}

// TurnView is the wire form of a stored history turn.
type TurnView struct {
	Query     string        `json:"query"`
	Response  string        `json:"response"`
	Intent    intent.Intent `json:"intent"`
	Timestamp string        `json:"timestamp"`
}

// ViewTurns converts stored turns for output.
func ViewTurns(turns []history.Turn) []TurnView {
	out := make([]TurnView, 0, len(turns))
	for _, t := range turns {
		out = append(out, TurnView{
			Query:     t.Query,
			Response:  t.Response,
			Intent:    t.Intent,
			Timestamp: t.Timestamp.Format(history.TimestampLayout),
		})
	}
	return out
}
