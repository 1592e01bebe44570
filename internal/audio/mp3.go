package audio

import (
	"bytes"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// decodeMP3 decodes MP3 to canonical samples. go-mp3 always yields 16-bit
// stereo at the stream's native rate.
func decodeMP3(raw []byte) ([]int16, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	mono := downmix(bytesToInt16(pcm), 2)
	return resample(mono, dec.SampleRate(), SampleRate), nil
}
