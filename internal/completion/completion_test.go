package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/errorsx"
)

type fakeBackend struct {
	text  string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, _ string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func TestCompleteTrims(t *testing.T) {
	b := &fakeBackend{text: "  നെല്ല് ഇപ്പോൾ വിൽക്കുക.\n"}
	out, err := New(b, 0, nil).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "നെല്ല് ഇപ്പോൾ വിൽക്കുക.", out)
}

func TestCompleteErrorNotRetried(t *testing.T) {
	b := &fakeBackend{err: errors.New("quota")}
	_, err := New(b, 0, nil).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, errorsx.ReasonAdviceGeneration, errorsx.ReasonOf(err))
	assert.Equal(t, 1, b.calls)
}

func TestCompleteEmpty(t *testing.T) {
	_, err := New(&fakeBackend{text: "   "}, 0, nil).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.Equal(t, errorsx.ReasonAdviceGeneration, errorsx.ReasonOf(err))
}

func TestCompleteTimeout(t *testing.T) {
	b := &fakeBackend{text: "late", delay: time.Second}
	_, err := New(b, 10*time.Millisecond, nil).Complete(context.Background(), "p")
	assert.Equal(t, errorsx.ReasonTimeout, errorsx.ReasonOf(err))
}
