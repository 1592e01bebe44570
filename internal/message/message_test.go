package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/intent"
)

func TestSource(t *testing.T) {
	tests := []struct {
		name   string
		req    TurnRequest
		want   Source
		reason errorsx.Reason
	}{
		{"text", TurnRequest{Text: "rice price"}, SourceText, ""},
		{"audio", TurnRequest{Audio: []byte{1}}, SourceAudio, ""},
		{"url", TurnRequest{URL: "https://example.com"}, SourceURL, ""},
		{"nothing", TurnRequest{}, "", errorsx.ReasonEmptyQuery},
		{"whitespace", TurnRequest{Text: " \t\n"}, "", errorsx.ReasonEmptyQuery},
		{"whitespace text with url", TurnRequest{Text: "  ", URL: "https://example.com"}, SourceURL, ""},
		{"two sources", TurnRequest{Text: "q", URL: "https://example.com"}, "", errorsx.ReasonBadRequest},
		{"three sources", TurnRequest{Text: "q", URL: "u", Audio: []byte{1}}, "", errorsx.ReasonBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Source()
			if tt.reason != "" {
				assert.Equal(t, tt.reason, errorsx.ReasonOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdviceResultJSON(t *testing.T) {
	r := AdviceResult{
		Response:  "Sell now.",
		Intent:    intent.Market,
		Timestamp: time.Date(2024, 6, 1, 9, 5, 3, 0, time.Local),
	}
	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "2024-06-01 09:05:03", got["timestamp"])
	assert.Equal(t, "market", got["intent"])
	assert.Equal(t, false, got["context_used"])
	assert.NotContains(t, got, "audio_file")
	assert.NotContains(t, got, "audio_url")
	assert.NotContains(t, got, "transcribed_query")
	assert.NotContains(t, got, "source_url")
}

func TestViewTurns(t *testing.T) {
	ts := time.Date(2024, 6, 1, 9, 5, 3, 0, time.Local)
	views := ViewTurns([]history.Turn{{Query: "q", Response: "r", Intent: intent.Weather, Timestamp: ts}})
	require.Len(t, views, 1)
	assert.Equal(t, TurnView{Query: "q", Response: "r", Intent: intent.Weather, Timestamp: "2024-06-01 09:05:03"}, views[0])
	assert.NotNil(t, ViewTurns(nil))
}
