package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/audiostore"
	"github.com/nadzzz/kisanvani/internal/errorsx"
)

type fakeSynth struct {
	res  *SynthesizeResult
	err  error
	opts SynthesizeOpts
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) Synthesize(_ context.Context, _ string, opts SynthesizeOpts) (*SynthesizeResult, error) {
	f.opts = opts
	return f.res, f.err
}

func (f *fakeSynth) Close() error { return nil }

func newStore(t *testing.T) *audiostore.Store {
	t.Helper()
	s, err := audiostore.New(t.TempDir(), "advice")
	require.NoError(t, err)
	return s
}

func TestAdapterStoresAudio(t *testing.T) {
	store := newStore(t)
	synth := &fakeSynth{res: &SynthesizeResult{Audio: []byte("mp3bytes"), ContentType: "audio/mpeg"}}
	a := NewAdapter(synth, store, 0, nil)

	art, err := a.Synthesize(context.Background(), "നമസ്കാരം", "ml")
	require.NoError(t, err)
	assert.Equal(t, "ml", synth.opts.Language)
	assert.Equal(t, ".mp3", filepath.Ext(art.Name))
	assert.Equal(t, 8, art.Size)

	p, err := store.Path(art.Name)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3bytes"), data)
}

func TestAdapterErrors(t *testing.T) {
	store := newStore(t)

	_, err := NewAdapter(&fakeSynth{}, store, 0, nil).Synthesize(context.Background(), "  ", "ml")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, errorsx.ReasonSynthesis, errorsx.ReasonOf(err))

	_, err = NewAdapter(&fakeSynth{err: errors.New("voice missing")}, store, 0, nil).Synthesize(context.Background(), "text", "ml")
	assert.Equal(t, errorsx.ReasonSynthesis, errorsx.ReasonOf(err))

	_, err = NewAdapter(&fakeSynth{res: &SynthesizeResult{}}, store, 0, nil).Synthesize(context.Background(), "text", "ml")
	assert.Equal(t, errorsx.ReasonSynthesis, errorsx.ReasonOf(err))
}
