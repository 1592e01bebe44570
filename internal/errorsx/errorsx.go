// Package errorsx attaches machine-readable reasons to errors crossing a
// service boundary so that transports can render one consistent envelope.
package errorsx

import (
	"context"
	"errors"
	"net/http"
)

// Reason is a short machine-readable failure kind.
type Reason string

const (
	ReasonUnknown Reason = "unknown"

	// Client input errors.
	ReasonEmptyQuery        Reason = "empty_query"
	ReasonUnsupportedFormat Reason = "unsupported_format"
	ReasonBadRequest        Reason = "bad_request"
	ReasonNotFound          Reason = "not_found"

	// Speech path.
	ReasonTranscriptionService Reason = "transcription_service"
	ReasonUnrecognizedSpeech   Reason = "unrecognized_speech"
	ReasonAudioDecode          Reason = "audio_decode"

	// Remote content.
	ReasonContentExtraction Reason = "content_extraction"

	// Completion service.
	ReasonAdviceGeneration Reason = "advice_generation"

	// Synthesis is non-fatal inside a turn.
	ReasonSynthesis Reason = "synthesis"

	ReasonTimeout Reason = "timeout"
)

// ReasonedError wraps an error with a reason code.
type ReasonedError struct {
	Err    error
	Reason Reason
}

func (e ReasonedError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return e.Err.Error()
}

func (e ReasonedError) Unwrap() error {
	return e.Err
}

// New returns a reasoned error with the given message.
func New(reason Reason, msg string) error {
	return ReasonedError{Err: errors.New(msg), Reason: reason}
}

// Wrap attaches a reason code to an error. It is a no-op if err is nil or
// already carries a reason; the innermost reason wins.
func Wrap(err error, reason Reason) error {
	if err == nil {
		return nil
	}
	var re ReasonedError
	if errors.As(err, &re) {
		return err
	}
	return ReasonedError{Err: err, Reason: reason}
}

// ReasonOf extracts the reason code attached to err.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	var re ReasonedError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ReasonUnknown
}

// HasReason returns true if err carries the given reason code.
func HasReason(err error, reason Reason) bool {
	return ReasonOf(err) == reason
}

// Classify returns the reason used for the client-visible envelope.
// A deadline anywhere in the chain is reported as a timeout regardless of
// which service hit it.
func Classify(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonOf(err)
}

// IsClient reports whether reason describes bad caller input.
func IsClient(reason Reason) bool {
	switch reason {
	case ReasonEmptyQuery, ReasonUnsupportedFormat, ReasonBadRequest,
		ReasonNotFound, ReasonUnrecognizedSpeech, ReasonAudioDecode:
		return true
	}
	return false
}

// HTTPStatus maps a reason to the status code the HTTP transport returns.
func HTTPStatus(reason Reason) int {
	switch reason {
	case ReasonEmptyQuery, ReasonBadRequest:
		return http.StatusBadRequest
	case ReasonUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case ReasonNotFound:
		return http.StatusNotFound
	case ReasonUnrecognizedSpeech, ReasonAudioDecode:
		return http.StatusUnprocessableEntity
	case ReasonTimeout:
		return http.StatusGatewayTimeout
	case ReasonContentExtraction:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
