package deepgram

import (
	"testing"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest/interfaces"
	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/kisanvani/internal/config"
)

func TestTranscriptFrom(t *testing.T) {
	res := &msginterfaces.PreRecordedResponse{
		Results: &msginterfaces.Result{Channels: []msginterfaces.Channel{{
			DetectedLanguage: "ml",
			Alternatives: []msginterfaces.Alternative{
				{Transcript: "  "},
				{Transcript: " what is the price of rice ", Confidence: 0.93},
			},
		}}},
	}
	text, detected := transcriptFrom(res)
	assert.Equal(t, "what is the price of rice", text)
	assert.Equal(t, "ml", detected)
}

func TestTranscriptFromEmpty(t *testing.T) {
	text, _ := transcriptFrom(&msginterfaces.PreRecordedResponse{
		Results: &msginterfaces.Result{Channels: []msginterfaces.Channel{{
			Alternatives: []msginterfaces.Alternative{{Transcript: ""}},
		}}},
	})
	assert.Empty(t, text)

	text, _ = transcriptFrom(&msginterfaces.PreRecordedResponse{})
	assert.Empty(t, text)

	text, _ = transcriptFrom(nil)
	assert.Empty(t, text)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(config.DeepgramConfig{Model: "nova-2"}, "", nil)
	assert.Error(t, err)
}
