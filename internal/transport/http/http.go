// Package http implements the HTTP transport for kisanvani.
//
// It serves the JSON API used by the web frontend: advisory turns from text,
// recorded audio or a URL, standalone speech and translation helpers, audio
// upload and retrieval, conversation history and the domain snapshot.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/kisanvani/internal/audiostore"
	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/health"
	"github.com/nadzzz/kisanvani/internal/transport"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 25 << 20

// multipartMemory is how much of a multipart form is held in memory.
const multipartMemory = 32 << 20

// Options configures the HTTP transport.
type Options struct {
	Port int

	// PublicBaseURL prefixes upload locators. Empty yields relative paths.
	PublicBaseURL string

	// AllowedExtension is the only file extension accepted by /upload-audio.
	AllowedExtension string

	// MaxBodyBytes limits every request body.
	MaxBodyBytes int64

	// PrimaryLanguage is the default source language for translation.
	PrimaryLanguage string

	// Translator backs /api/translate and the English gloss of
	// /api/speech-to-text. Nil disables both.
	Translator transport.Translator

	// Uploads holds files posted to /upload-audio.
	Uploads *audiostore.Store
	// Artifacts holds synthesized speech served under /audio/.
	Artifacts *audiostore.Store

	// Health, when set, reports readiness in GET /health.
	Health *health.Server

	Logger *slog.Logger
	Now    func() time.Time
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	opts   Options
	logger *slog.Logger
	server *http.Server
}

// New creates a new HTTP transport.
func New(opts Options) *Transport {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.AllowedExtension == "" {
		opts.AllowedExtension = ".mp3"
	}
	if opts.PrimaryLanguage == "" {
		opts.PrimaryLanguage = "ml"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Transport{opts: opts, logger: opts.Logger.With("component", "http")}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the route table for svc.
func (t *Transport) Handler(svc transport.Service) http.Handler {
	mux := http.NewServeMux()

	// Advisory turns.
	mux.HandleFunc("POST /api/advise", t.handleAdvise(svc))
	mux.HandleFunc("POST /api/chat", t.handleChat(svc, false))
	mux.HandleFunc("POST /api/chat-with-audio", t.handleChat(svc, true))
	mux.HandleFunc("POST /api/url_to_response", t.handleURLToResponse(svc))

	// Speech and translation helpers.
	mux.HandleFunc("POST /api/speech-to-text", t.handleSpeechToText(svc))
	mux.HandleFunc("POST /api/text-to-speech", t.handleTextToSpeech(svc))
	mux.HandleFunc("POST /api/translate", t.handleTranslate)

	// Files.
	mux.HandleFunc("POST /upload-audio", t.handleUpload)
	mux.HandleFunc("GET /uploads/{name}", t.serveFrom(t.opts.Uploads))
	mux.HandleFunc("GET /audio/{name}", t.serveFrom(t.opts.Artifacts))

	// Session and reference data.
	mux.HandleFunc("GET /api/history", t.handleHistory(svc))
	mux.HandleFunc("POST /api/clear", t.handleClear(svc))
	mux.HandleFunc("GET /api/profile", t.snapshotPart(svc, profilePart))
	mux.HandleFunc("GET /api/market", t.snapshotPart(svc, marketPart))
	mux.HandleFunc("GET /api/weather", t.snapshotPart(svc, weatherPart))
	mux.HandleFunc("GET /api/pest-alerts", t.snapshotPart(svc, pestPart))
	mux.HandleFunc("GET /api/schemes", t.snapshotPart(svc, schemesPart))
	mux.HandleFunc("GET /api/help", t.handleHelp)
	mux.HandleFunc("GET /health", t.handleHealth(svc))

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return t.withCORS(t.limitBody(mux))
}

// Listen starts the HTTP server and serves requests with svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           t.Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	t.logger.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		t.logger.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// withCORS allows the browser frontend on another origin to call the API.
func (t *Transport) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Transport) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, t.opts.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the failure envelope for every route.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status its reason maps to.
func (t *Transport) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error:  fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			Reason: string(errorsx.ReasonBadRequest),
		})
		return
	}

	reason := errorsx.Classify(err)
	status := errorsx.HTTPStatus(reason)
	if status >= http.StatusInternalServerError {
		t.logger.Error("request failed", "path", r.URL.Path, "reason", reason, "error", err)
	} else {
		t.logger.Warn("request rejected", "path", r.URL.Path, "reason", reason, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Reason: string(reason)})
}

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errorsx.Wrap(fmt.Errorf("invalid json: %w", err), errorsx.ReasonBadRequest)
	}
	return nil
}

// publicURL prefixes path with the configured public base URL.
func (t *Transport) publicURL(path string) string {
	return t.opts.PublicBaseURL + path
}
