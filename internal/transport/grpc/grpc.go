// Package grpc implements the gRPC transport for kisanvani.
//
// The Advisory service is described by a hand-written ServiceDesc and
// carried over a JSON codec, so no generated stubs are needed. Clients pick
// the codec with the "json" content subtype. The standard grpc.health.v1
// service is registered next to it and uses the default proto codec.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/message"
	"github.com/nadzzz/kisanvani/internal/transport"
)

// ServiceName is the fully qualified Advisory service name.
const ServiceName = "kisanvani.Advisory"

const adviseMethod = "/" + ServiceName + "/Advise"

// AdviseRequest carries exactly one of Query, URL or Audio.
type AdviseRequest struct {
	Query       string `json:"query,omitempty"`
	URL         string `json:"url,omitempty"`
	Audio       []byte `json:"audio,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Speak       bool   `json:"speak,omitempty"`
}

// AdviseResponse mirrors the HTTP success body.
type AdviseResponse struct {
	Response         string `json:"response"`
	Intent           string `json:"intent"`
	Timestamp        string `json:"timestamp"`
	AudioFile        string `json:"audio_file,omitempty"`
	AudioURL         string `json:"audio_url,omitempty"`
	TranscribedQuery string `json:"transcribed_query,omitempty"`
	SourceURL        string `json:"source_url,omitempty"`
	ContextUsed      bool   `json:"context_used"`
}

func responseFrom(r *message.AdviceResult) *AdviseResponse {
	return &AdviseResponse{
		Response:         r.Response,
		Intent:           string(r.Intent),
		Timestamp:        r.Timestamp.Format(history.TimestampLayout),
		AudioFile:        r.AudioFile,
		AudioURL:         r.AudioURL,
		TranscribedQuery: r.TranscribedQuery,
		SourceURL:        r.SourceURL,
		ContextUsed:      r.ContextUsed,
	}
}

// advisoryServer is the handler type registered for ServiceName.
type advisoryServer interface {
	Advise(ctx context.Context, req *AdviseRequest) (*AdviseResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*advisoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Advise", Handler: adviseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kisanvani/advisory.json",
}

func adviseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AdviseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(advisoryServer).Advise(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: adviseMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(advisoryServer).Advise(ctx, req.(*AdviseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// server adapts a transport.Service to advisoryServer.
type server struct {
	svc    transport.Service
	logger *slog.Logger
}

func (s *server) Advise(ctx context.Context, req *AdviseRequest) (*AdviseResponse, error) {
	result, err := s.svc.HandleTurn(ctx, &message.TurnRequest{
		Text:        req.Query,
		URL:         req.URL,
		Audio:       req.Audio,
		ContentType: req.ContentType,
		Speak:       req.Speak,
	})
	if err != nil {
		s.logger.Warn("advise failed", "reason", errorsx.Classify(err), "error", err)
		return nil, statusFor(err)
	}
	return responseFrom(result), nil
}

// statusFor maps an errorsx reason to a gRPC status.
func statusFor(err error) error {
	reason := errorsx.Classify(err)
	var code codes.Code
	switch {
	case reason == errorsx.ReasonTimeout:
		code = codes.DeadlineExceeded
	case errorsx.IsClient(reason):
		code = codes.InvalidArgument
	default:
		code = codes.Internal
	}
	return status.Error(code, fmt.Sprintf("%s: %v", reason, err))
}

// Options configures the gRPC transport.
type Options struct {
	Port   int
	Logger *slog.Logger
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	logger *slog.Logger
	health *health.Server

	mu     sync.Mutex
	server *grpc.Server
}

// New creates a new gRPC transport.
func New(opts Options) *Transport {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Transport{
		port:   opts.Port,
		logger: opts.Logger.With("component", "grpc"),
		health: health.NewServer(),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// SetServing flips the reported health of the Advisory service.
func (t *Transport) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus("", st)
	t.health.SetServingStatus(ServiceName, st)
}

// Listen starts the gRPC server on the configured port.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	t.logger.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, svc)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	srv := grpc.NewServer()
	srv.RegisterService(&serviceDesc, &server{svc: svc, logger: t.logger})
	healthpb.RegisterHealthServer(srv, t.health)
	t.mu.Lock()
	t.server = srv
	t.mu.Unlock()
	t.SetServing(true)

	go func() {
		<-ctx.Done()
		t.logger.Info("grpc transport shutting down")
		t.health.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.health.Shutdown()
	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
	return nil
}
