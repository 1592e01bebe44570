package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/intent"
	"github.com/nadzzz/kisanvani/internal/message"
	"github.com/nadzzz/kisanvani/internal/transport"
)

// fakeService answers turns with a fixed reply or a fixed error. Methods
// other than HandleTurn are not used by this transport.
type fakeService struct {
	transport.Service

	mu   sync.Mutex
	last *message.TurnRequest
	err  error
}

func (f *fakeService) HandleTurn(_ context.Context, req *message.TurnRequest) (*message.AdviceResult, error) {
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, err := req.Source(); err != nil {
		return nil, err
	}
	return &message.AdviceResult{
		Response:    "Sell after the harvest festival.",
		Intent:      intent.Market,
		Timestamp:   time.Date(2024, 6, 1, 9, 5, 3, 0, time.Local),
		AudioFile:   "advice-20240601-090503-1.mp3",
		AudioURL:    "/audio/advice-20240601-090503-1.mp3",
		ContextUsed: true,
	}, nil
}

func (f *fakeService) lastRequest() *message.TurnRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func startServer(t *testing.T, svc transport.Service) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	tr := New(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, svc) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	client, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAdviseText(t *testing.T) {
	svc := &fakeService{}
	client := startServer(t, svc)

	resp, err := client.Advise(context.Background(), &AdviseRequest{Query: "When should I sell cotton?", Speak: true})
	require.NoError(t, err)

	assert.Equal(t, "market", resp.Intent)
	assert.Equal(t, "2024-06-01 09:05:03", resp.Timestamp)
	assert.Equal(t, "/audio/advice-20240601-090503-1.mp3", resp.AudioURL)
	assert.True(t, resp.ContextUsed)

	got := svc.lastRequest()
	assert.Equal(t, "When should I sell cotton?", got.Text)
	assert.True(t, got.Speak)
}

func TestAdviseAudioBytesSurviveCodec(t *testing.T) {
	svc := &fakeService{}
	client := startServer(t, svc)

	clip := []byte{0x49, 0x44, 0x33, 0x00, 0xff, 0x10}
	_, err := client.Advise(context.Background(), &AdviseRequest{Audio: clip, ContentType: "audio/mpeg"})
	require.NoError(t, err)

	got := svc.lastRequest()
	assert.Equal(t, clip, got.Audio)
	assert.Equal(t, "audio/mpeg", got.ContentType)
}

func TestAdviseErrorCodes(t *testing.T) {
	cases := map[string]struct {
		err  error
		req  *AdviseRequest
		code codes.Code
	}{
		"empty query": {
			req:  &AdviseRequest{},
			code: codes.InvalidArgument,
		},
		"unrecognized speech": {
			err:  errorsx.New(errorsx.ReasonUnrecognizedSpeech, "no match"),
			req:  &AdviseRequest{Audio: []byte{1}},
			code: codes.InvalidArgument,
		},
		"timeout": {
			err:  errorsx.Wrap(fmt.Errorf("completion: %w", context.DeadlineExceeded), errorsx.ReasonAdviceGeneration),
			req:  &AdviseRequest{Query: "x"},
			code: codes.DeadlineExceeded,
		},
		"completion failure": {
			err:  errorsx.New(errorsx.ReasonAdviceGeneration, "model unavailable"),
			req:  &AdviseRequest{Query: "x"},
			code: codes.Internal,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := startServer(t, &fakeService{err: tc.err})
			_, err := client.Advise(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, status.Code(err))
		})
	}
}

func TestHealthService(t *testing.T) {
	client := startServer(t, &fakeService{})
	hc := healthpb.NewHealthClient(client.Conn())

	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName}, grpc.CallContentSubtype("proto"))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
