package piper

import (
	"bufio"
	"context"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/tts"
)

// fakeWyoming accepts one connection, records the synthesize event and
// replies with the given events.
func fakeWyoming(t *testing.T, reply func(c net.Conn)) (addr string, got chan wyomingEvent) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got = make(chan wyomingEvent, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		evt, _, err := readEvent(bufio.NewReader(c))
		if err != nil {
			return
		}
		got <- *evt
		reply(c)
	}()
	return ln.Addr().String(), got
}

func TestSynthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	addr, got := fakeWyoming(t, func(c net.Conn) {
		_ = writeEvent(c, wyomingEvent{Type: "audio-start", Data: map[string]any{"rate": 16000, "channels": 1, "width": 2}}, nil)
		_ = writeEvent(c, wyomingEvent{Type: "audio-chunk"}, pcm[:4])
		_ = writeEvent(c, wyomingEvent{Type: "audio-chunk"}, pcm[4:])
		_ = writeEvent(c, wyomingEvent{Type: "audio-stop"}, nil)
	})

	s := New(config.PiperConfig{Endpoint: "tcp://" + addr}, nil)
	res, err := s.Synthesize(context.Background(), "നമസ്കാരം", tts.SynthesizeOpts{Language: "ml"})
	require.NoError(t, err)

	evt := <-got
	assert.Equal(t, "synthesize", evt.Type)
	assert.Equal(t, "നമസ്കാരം", evt.Data["text"])
	assert.Equal(t, map[string]any{"name": "ml_IN-meera-medium"}, evt.Data["voice"])

	assert.Equal(t, "audio/wav", res.ContentType)
	assert.Equal(t, 16000, res.SampleRate)
	require.Len(t, res.Audio, 44+len(pcm))
	assert.Equal(t, "RIFF", string(res.Audio[:4]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(res.Audio[24:]))
	assert.Equal(t, pcm, res.Audio[44:])
}

func TestSynthesizeServerError(t *testing.T) {
	addr, _ := fakeWyoming(t, func(c net.Conn) {
		_ = writeEvent(c, wyomingEvent{Type: "error", Data: map[string]any{"text": "voice not found"}}, nil)
	})

	_, err := New(config.PiperConfig{Endpoint: addr}, nil).Synthesize(context.Background(), "hi", tts.SynthesizeOpts{Language: "xx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voice not found")
}

func TestVoiceAndEndpointSelection(t *testing.T) {
	s := New(config.PiperConfig{
		Endpoint:  "default:10200",
		Endpoints: map[string]string{"te": "tcp://telugu:10200"},
		Voices:    map[string]string{"ml": "ml_IN-arjun-medium"},
	}, nil)
	assert.Equal(t, "ml_IN-arjun-medium", s.voices["ml"])
	assert.Equal(t, "en_US-lessac-medium", s.voices["en"])
	assert.Equal(t, "telugu:10200", s.endpoints["te"])
	assert.Equal(t, "default:10200", s.endpoint)

	_, err := New(config.PiperConfig{}, nil).Synthesize(context.Background(), "hi", tts.SynthesizeOpts{Language: "ml"})
	assert.ErrorContains(t, err, "no piper endpoint")

	_, err = s.Synthesize(context.Background(), "", tts.SynthesizeOpts{})
	assert.ErrorIs(t, err, tts.ErrEmptyText)
}
