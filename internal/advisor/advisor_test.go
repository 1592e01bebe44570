package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/extract"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/intent"
	"github.com/nadzzz/kisanvani/internal/message"
	"github.com/nadzzz/kisanvani/internal/snapshot"
	"github.com/nadzzz/kisanvani/internal/stt"
	"github.com/nadzzz/kisanvani/internal/tts"
)

type fakeNormalizer struct{ err error }

func (f *fakeNormalizer) Normalize(_ context.Context, raw []byte, _ string) (*audio.Canonical, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &audio.Canonical{WAV: raw, Source: audio.FormatWAV}, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, *audio.Canonical) (*stt.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stt.Transcript{Text: f.text, Language: "ml"}, nil
}

type fakeFetcher struct {
	res  *extract.Resource
	text string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*extract.Resource, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.res
	res.URL = rawURL
	return &res, nil
}

func (f *fakeFetcher) Text(*extract.Resource) (string, error) { return f.text, nil }

type recordingCompleter struct {
	mu      sync.Mutex
	prompts []string
	err     error
	reply   func(n int) string
}

func (r *recordingCompleter) Name() string { return "recording" }

func (r *recordingCompleter) Complete(_ context.Context, p string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
	if r.err != nil {
		return "", r.err
	}
	if r.reply != nil {
		return r.reply(len(r.prompts)), nil
	}
	return fmt.Sprintf("answer %d", len(r.prompts)), nil
}

type fakeSpeaker struct {
	err  error
	lang string
}

func (f *fakeSpeaker) Synthesize(_ context.Context, _ string, language string) (*tts.Artifact, error) {
	f.lang = language
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Artifact{Name: "advice-20240601-090503-abc.mp3", ContentType: "audio/mpeg"}, nil
}

type harness struct {
	orch      *Orchestrator
	completer *recordingCompleter
	store     *history.Store
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{completer: &recordingCompleter{}, store: history.New()}
	opts := Options{
		Normalizer:       &fakeNormalizer{},
		Transcriber:      &fakeTranscriber{text: "നെല്ലിന്റെ വില എത്ര"},
		Fetcher:          &fakeFetcher{res: &extract.Resource{Kind: extract.KindDocument}, text: "Paddy prices rose this week in Kurnool."},
		Completer:        h.completer,
		History:          h.store,
		Snapshot:         snapshot.NewStatic(snapshot.Default()),
		ResponseLanguage: "ml",
		Now:              func() time.Time { return time.Date(2024, 6, 1, 9, 5, 3, 0, time.Local) },
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.orch = New(opts)
	return h
}

func TestSequentialTurnsCarryContext(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.orch.HandleTurn(ctx, &message.TurnRequest{Text: "What is the rice price?"})
	require.NoError(t, err)
	assert.Equal(t, intent.Market, first.Intent)
	assert.False(t, first.ContextUsed)

	second, err := h.orch.HandleTurn(ctx, &message.TurnRequest{Text: "Should I irrigate today?"})
	require.NoError(t, err)
	assert.True(t, second.ContextUsed)

	turns := h.store.All()
	require.Len(t, turns, 2)
	assert.Equal(t, "What is the rice price?", turns[0].Query)
	assert.Equal(t, "Should I irrigate today?", turns[1].Query)

	require.Len(t, h.completer.prompts, 2)
	assert.NotContains(t, h.completer.prompts[0], "PREVIOUS CONVERSATION")
	assert.Contains(t, h.completer.prompts[1], "Farmer: What is the rice price?\nAssistant: answer 1\n")
}

func TestWindowLimitsContext(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	for i := 1; i <= 7; i++ {
		_, err := h.orch.HandleTurn(ctx, &message.TurnRequest{Text: fmt.Sprintf("question number %d", i)})
		require.NoError(t, err)
	}
	_, err := h.orch.HandleTurn(ctx, &message.TurnRequest{Text: "final question"})
	require.NoError(t, err)

	last := h.completer.prompts[len(h.completer.prompts)-1]
	assert.NotContains(t, last, "Farmer: question number 1\n")
	assert.NotContains(t, last, "Farmer: question number 2\n")
	for i := 3; i <= 7; i++ {
		assert.Contains(t, last, fmt.Sprintf("Farmer: question number %d\n", i))
	}
	assert.Less(t, strings.Index(last, "question number 3"), strings.Index(last, "question number 7"))
}

func TestEmptyQueries(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, nil)
	_, err := h.orch.HandleTurn(ctx, &message.TurnRequest{Text: "   \n\t"})
	assert.Equal(t, errorsx.ReasonEmptyQuery, errorsx.ReasonOf(err))

	h = newHarness(t, func(o *Options) { o.Transcriber = &fakeTranscriber{text: "ok"} })
	_, err = h.orch.HandleTurn(ctx, &message.TurnRequest{Audio: []byte("RIFF")})
	assert.Equal(t, errorsx.ReasonEmptyQuery, errorsx.ReasonOf(err), "2-character transcript")

	h = newHarness(t, func(o *Options) { o.Transcriber = &fakeTranscriber{text: "എത്ര"} })
	_, err = h.orch.HandleTurn(ctx, &message.TurnRequest{Audio: []byte("RIFF")})
	assert.NoError(t, err, "3-character transcript proceeds")

	h = newHarness(t, func(o *Options) {
		o.Fetcher = &fakeFetcher{res: &extract.Resource{Kind: extract.KindDocument}, text: "123456789"}
	})
	_, err = h.orch.HandleTurn(ctx, &message.TurnRequest{URL: "https://example.com/a"})
	assert.Equal(t, errorsx.ReasonEmptyQuery, errorsx.ReasonOf(err), "9-character page")
	assert.Empty(t, h.completer.prompts)

	h = newHarness(t, func(o *Options) {
		o.Fetcher = &fakeFetcher{res: &extract.Resource{Kind: extract.KindDocument}, text: "1234567890"}
	})
	res, err := h.orch.HandleTurn(ctx, &message.TurnRequest{URL: "https://example.com/a"})
	require.NoError(t, err, "10-character page proceeds")
	assert.Equal(t, "1234567890", res.TranscribedQuery)
	assert.Equal(t, "https://example.com/a", res.SourceURL)
}

func TestMultipleSourcesRejected(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Text: "q", URL: "https://example.com"})
	assert.Equal(t, errorsx.ReasonBadRequest, errorsx.ReasonOf(err))
}

func TestAudioTurnEchoesTranscript(t *testing.T) {
	speaker := &fakeSpeaker{}
	h := newHarness(t, func(o *Options) { o.Speaker = speaker })

	res, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Audio: []byte("RIFF...."), Speak: true})
	require.NoError(t, err)
	assert.Equal(t, "നെല്ലിന്റെ വില എത്ര", res.TranscribedQuery)
	assert.Equal(t, intent.Market, res.Intent)
	assert.Empty(t, res.SourceURL)
	assert.Equal(t, "advice-20240601-090503-abc.mp3", res.AudioFile)
	assert.Equal(t, "/audio/advice-20240601-090503-abc.mp3", res.AudioURL)
	assert.Equal(t, "ml", speaker.lang)
}

func TestRemoteAudioIsTranscribed(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Fetcher = &fakeFetcher{res: &extract.Resource{Kind: extract.KindAudio, ContentType: "audio/mpeg", Body: []byte("ID3")}}
		o.Transcriber = &fakeTranscriber{text: "കീടം ആക്രമണം"}
	})
	res, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{URL: "https://example.com/q.mp3"})
	require.NoError(t, err)
	assert.Equal(t, "കീടം ആക്രമണം", res.TranscribedQuery)
	assert.Equal(t, intent.PestDisease, res.Intent)
	assert.Equal(t, "https://example.com/q.mp3", res.SourceURL)
}

func TestSynthesisFailureKeepsText(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Speaker = &fakeSpeaker{err: errorsx.New(errorsx.ReasonSynthesis, "tts down")} })

	res, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Text: "weather tomorrow?", Speak: true})
	require.NoError(t, err)
	assert.Equal(t, "answer 1", res.Response)
	assert.False(t, res.HasAudio())
	assert.Empty(t, res.AudioURL)
	assert.Equal(t, 1, h.store.Len())
}

func TestSpeakWithoutSpeaker(t *testing.T) {
	h := newHarness(t, nil)
	res, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Text: "weather tomorrow?", Speak: true})
	require.NoError(t, err)
	assert.False(t, res.HasAudio())

	_, err = h.orch.Speak(context.Background(), "hello", "")
	assert.Equal(t, errorsx.ReasonSynthesis, errorsx.ReasonOf(err))
}

func TestCompletionFailureRecordsNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.completer.err = errors.New("model unavailable")

	_, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Text: "rice price"})
	require.Error(t, err)
	assert.Equal(t, errorsx.ReasonAdviceGeneration, errorsx.ReasonOf(err))
	assert.Zero(t, h.store.Len())
}

func TestCancelledBeforeCompletion(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orch.HandleTurn(ctx, &message.TurnRequest{Text: "rice price"})
	require.Error(t, err)
	assert.Empty(t, h.completer.prompts)
	assert.Zero(t, h.store.Len())
}

func TestTranscriptionErrorsPropagate(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Transcriber = &fakeTranscriber{err: errorsx.New(errorsx.ReasonUnrecognizedSpeech, "no speech")}
	})
	_, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Audio: []byte("RIFF")})
	assert.Equal(t, errorsx.ReasonUnrecognizedSpeech, errorsx.ReasonOf(err))

	h = newHarness(t, func(o *Options) {
		o.Normalizer = &fakeNormalizer{err: errorsx.New(errorsx.ReasonUnsupportedFormat, "bad")}
	})
	_, err = h.orch.HandleTurn(context.Background(), &message.TurnRequest{Audio: []byte("????")})
	assert.Equal(t, errorsx.ReasonUnsupportedFormat, errorsx.ReasonOf(err))

	h = newHarness(t, func(o *Options) {
		o.Fetcher = &fakeFetcher{err: errorsx.New(errorsx.ReasonContentExtraction, "404")}
	})
	_, err = h.orch.HandleTurn(context.Background(), &message.TurnRequest{URL: "https://example.com/missing"})
	assert.Equal(t, errorsx.ReasonContentExtraction, errorsx.ReasonOf(err))
}

func TestConcurrentTurns(t *testing.T) {
	h := newHarness(t, nil)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Text: fmt.Sprintf("question %d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.store.Len())
}

func TestHistoryAndClear(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.orch.HandleTurn(context.Background(), &message.TurnRequest{Text: "rice price"})
	require.NoError(t, err)
	assert.Len(t, h.orch.History(), 1)
	h.orch.ClearHistory()
	assert.Empty(t, h.orch.History())
}
