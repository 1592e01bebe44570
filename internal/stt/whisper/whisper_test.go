package whisper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/audio"
	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/stt"
)

var clip = &audio.Canonical{WAV: audio.EncodeWAV(make([]byte, 64), 16000, 1, 2), Samples: 32}

func TestRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ml", r.FormValue("language"))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.wav", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, clip.WAV, data)
		_, _ = w.Write([]byte(`{"text":" മഴ എപ്പോൾ വരും "}`))
	}))
	defer srv.Close()

	r := New(config.WhisperConfig{Endpoint: srv.URL, APIKey: "k", Model: "whisper-1"}, nil)
	out, err := r.Recognize(context.Background(), clip, "ml")
	require.NoError(t, err)
	assert.Equal(t, stt.Recognized, out.Status)
	assert.Equal(t, "മഴ എപ്പോൾ വരും", out.Text)
	assert.Equal(t, "ml", out.Language)
}

func TestRecognizeReportsDetectedLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.FormValue("language"))
		_, _ = w.Write([]byte(`{"text":"will it rain tomorrow","language":"english"}`))
	}))
	defer srv.Close()

	out, err := New(config.WhisperConfig{Endpoint: srv.URL}, nil).Recognize(context.Background(), clip, "")
	require.NoError(t, err)
	assert.Equal(t, stt.Recognized, out.Status)
	assert.Equal(t, "en", out.Language)
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "ml", languageCode("Malayalam", "en"))
	assert.Equal(t, "hi", languageCode("hi", "ml"))
	assert.Equal(t, "ml", languageCode("", "ml"))
	assert.Equal(t, "ml", languageCode("klingon", "ml"))
}

func TestRecognizeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	out, err := New(config.WhisperConfig{Endpoint: srv.URL}, nil).Recognize(context.Background(), clip, "ml")
	require.NoError(t, err)
	assert.Equal(t, stt.NoMatch, out.Status)
}

func TestRecognizeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(config.WhisperConfig{Endpoint: srv.URL}, nil).Recognize(context.Background(), clip, "ml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
