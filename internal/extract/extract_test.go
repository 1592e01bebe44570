package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/errorsx"
)

const page = `<!doctype html>
<html><head><title>Paddy care</title><style>body{color:red}</style>
<script>var tracking = true;</script></head>
<body>
<header><a href="/">Home</a> | <a href="/about">About</a></header>
<nav><ul><li>Menu item</li></ul></nav>
<main>
  <h1>Brown plant hopper</h1>
  <p>Drain the field   for
     three days.</p>
  <noscript>enable js</noscript>
  <p>Spray neem oil at dusk.</p>
</main>
<footer>Copyright 2024</footer>
</body></html>`

func TestHTMLText(t *testing.T) {
	text, err := HTMLText([]byte(page), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Brown plant hopper Drain the field for three days. Spray neem oil at dusk.", text)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("അ", 5001)
	out := Truncate(long, 5000)
	assert.Equal(t, strings.Repeat("അ", 5000)+TruncationMarker, out)

	exact := strings.Repeat("a", 5000)
	assert.Equal(t, exact, Truncate(exact, 5000))

	short := "short page"
	assert.Equal(t, short, Truncate(short, 5000))
}

func TestIsAudio(t *testing.T) {
	assert.True(t, IsAudio("audio/mpeg", "/x"))
	assert.True(t, IsAudio("application/octet-stream", "/clips/q.MP3"))
	assert.True(t, IsAudio("", "/clips/q.webm"))
	assert.False(t, IsAudio("text/html", "/clips/page.mp3"))
	assert.False(t, IsAudio("", "/article"))
	assert.True(t, IsAudio("video/webm", "/uploads/upload-1.webm"))
	assert.True(t, IsAudio("video/ogg; codecs=opus", "/q"))
	assert.True(t, IsAudio("image/x-unknown", "/clips/q.ogg"))
	assert.False(t, IsAudio("application/json", "/clips/q.mp3"))
}

func newExtractor(timeout time.Duration) *Extractor {
	return New(config.ExtractConfig{Timeout: timeout, MaxChars: 5000, MaxBytes: 1 << 20, UserAgent: "kisanvani-test"}, nil)
}

func TestFetchDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kisanvani-test", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	e := newExtractor(time.Second)
	res, err := e.Fetch(context.Background(), srv.URL+"/pest")
	require.NoError(t, err)
	assert.Equal(t, KindDocument, res.Kind)

	text, err := e.Text(res)
	require.NoError(t, err)
	assert.Contains(t, text, "Spray neem oil at dusk.")
	assert.NotContains(t, text, "Copyright")
}

func TestFetchLongDocumentIsTruncated(t *testing.T) {
	body := strings.Repeat("word ", 3000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	e := newExtractor(time.Second)
	res, err := e.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	text, err := e.Text(res)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text, TruncationMarker))
	assert.Equal(t, 5000, len([]rune(strings.TrimSuffix(text, TruncationMarker))))
}

func TestFetchAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3\x04"))
	}))
	defer srv.Close()

	res, err := newExtractor(time.Second).Fetch(context.Background(), srv.URL+"/q.mp3")
	require.NoError(t, err)
	assert.Equal(t, KindAudio, res.Kind)
	assert.Equal(t, []byte("ID3\x04"), res.Body)
}

func TestFetchServedWebMIsAudio(t *testing.T) {
	dir := t.TempDir()
	recording := append([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x01, 0x02}, []byte("webm cluster bytes")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upload-x.webm"), recording, 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, path.Base(r.URL.Path)))
	}))
	defer srv.Close()

	res, err := newExtractor(time.Second).Fetch(context.Background(), srv.URL+"/uploads/upload-x.webm")
	require.NoError(t, err)
	assert.Equal(t, "video/webm", res.ContentType)
	assert.Equal(t, KindAudio, res.Kind)
	assert.Equal(t, recording, res.Body)
}

func TestFetchSniffsMislabelledAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("OggS\x00\x02 voice note"))
	}))
	defer srv.Close()

	res, err := newExtractor(time.Second).Fetch(context.Background(), srv.URL+"/download")
	require.NoError(t, err)
	assert.Equal(t, KindAudio, res.Kind)
}

func TestFetchErrors(t *testing.T) {
	e := newExtractor(50 * time.Millisecond)

	_, err := e.Fetch(context.Background(), "ftp://example.com/file")
	assert.Equal(t, errorsx.ReasonBadRequest, errorsx.ReasonOf(err))

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	_, err = e.Fetch(context.Background(), notFound.URL)
	assert.Equal(t, errorsx.ReasonContentExtraction, errorsx.ReasonOf(err))

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	_, err = e.Fetch(context.Background(), slow.URL)
	assert.Equal(t, errorsx.ReasonTimeout, errorsx.ReasonOf(err))
}
