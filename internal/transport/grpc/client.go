package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote Advisory service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target. Extra options are appended after the defaults,
// which select plaintext transport and the JSON codec.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	conn, err := grpc.NewClient(target, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Advise runs one remote turn.
func (c *Client) Advise(ctx context.Context, req *AdviseRequest) (*AdviseResponse, error) {
	out := new(AdviseResponse)
	if err := c.conn.Invoke(ctx, adviseMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Conn exposes the underlying connection, e.g. for health checks.
func (c *Client) Conn() *grpc.ClientConn { return c.conn }

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }
