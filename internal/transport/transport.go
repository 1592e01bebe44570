// Package transport defines the interface for pluggable request transports.
//
// Each transport (HTTP, gRPC) implements Transport and drives the same
// advisory Service. The service does not care how a turn arrived.
package transport

import (
	"context"

	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/message"
	"github.com/nadzzz/kisanvani/internal/snapshot"
	"github.com/nadzzz/kisanvani/internal/stt"
	"github.com/nadzzz/kisanvani/internal/tts"
)

// Service is the advisory pipeline exposed by transports. It is implemented
// by *advisor.Orchestrator.
type Service interface {
	// HandleTurn runs one advisory turn.
	HandleTurn(ctx context.Context, req *message.TurnRequest) (*message.AdviceResult, error)

	// Transcribe runs speech recognition only.
	Transcribe(ctx context.Context, raw []byte, hint string) (*stt.Transcript, error)

	// Speak synthesizes text into a stored artifact.
	Speak(ctx context.Context, text, language string) (*tts.Artifact, error)

	// AudioURL returns the retrieval locator for an artifact name.
	AudioURL(name string) string

	History() []history.Turn
	ClearHistory()
	Snapshot(ctx context.Context) (snapshot.Snapshot, error)
	SpeechEnabled() bool
}

// Translator converts text between language codes.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting requests and serves them with svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
