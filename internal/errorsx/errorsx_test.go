package errorsx

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonAdviceGeneration)
	assert.Equal(t, ReasonAdviceGeneration, ReasonOf(err))
	assert.True(t, HasReason(err, ReasonAdviceGeneration))
	assert.Equal(t, "boom", err.Error())
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonUnrecognizedSpeech)
	second := Wrap(fmt.Errorf("turn: %w", first), ReasonAdviceGeneration)
	assert.Equal(t, ReasonUnrecognizedSpeech, ReasonOf(second))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ReasonSynthesis))
	assert.Equal(t, ReasonUnknown, ReasonOf(nil))
}

func TestClassifyTimeoutWins(t *testing.T) {
	err := Wrap(fmt.Errorf("generate: %w", context.DeadlineExceeded), ReasonAdviceGeneration)
	assert.Equal(t, ReasonTimeout, Classify(err))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(Classify(err)))
}

func TestStatusSplitsClientAndServer(t *testing.T) {
	for _, r := range []Reason{ReasonEmptyQuery, ReasonUnsupportedFormat, ReasonBadRequest} {
		assert.True(t, IsClient(r), r)
		assert.Less(t, HTTPStatus(r), 500, r)
	}
	for _, r := range []Reason{ReasonTranscriptionService, ReasonAdviceGeneration, ReasonSynthesis, ReasonUnknown} {
		assert.False(t, IsClient(r), r)
		assert.GreaterOrEqual(t, HTTPStatus(r), 500, r)
	}
}
