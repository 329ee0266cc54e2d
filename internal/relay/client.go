// Package relay delivers notifications to the chat relay over gRPC. The
// relay owns message parsing, channel binding, and user identity; this side
// only pushes events. Payloads travel as google.protobuf.Struct values so
// the two processes share no generated stubs.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/danwhitfield/war-coach/internal/notify"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region method
// sendNotificationMethod is the full gRPC method name the relay serves.
const sendNotificationMethod = "/warcoach.Relay/SendNotification"

// #endregion method

// #region invoker
// invoker is the slice of grpc.ClientConn the client needs. Tests inject a
// fake; production uses a real connection.
type invoker interface {
	Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error
}

// #endregion invoker

// #region client-struct
// Client wraps the gRPC connection to the chat relay.
type Client struct {
	conn *grpc.ClientConn
	inv  invoker
}

// #endregion client-struct

// #region constructor
// NewClient connects to the chat relay gRPC server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, inv: conn}, nil
}

// NewClientWithInvoker creates a Client with an injected invoker.
// Used for testing without a real gRPC connection.
func NewClientWithInvoker(inv invoker) *Client {
	return &Client{inv: inv}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region send
// Send pushes one notification to the relay. Implements notify.Notifier.
func (c *Client) Send(ctx context.Context, n notify.Notification) error {
	req, err := encodeNotification(n)
	if err != nil {
		return err
	}
	reply := &structpb.Struct{}
	if err := c.inv.Invoke(ctx, sendNotificationMethod, req, reply); err != nil {
		return fmt.Errorf("send notification rpc: %w", err)
	}
	if f, ok := reply.Fields["ok"]; ok && !f.GetBoolValue() {
		return fmt.Errorf("relay rejected notification %s: %s", n.ID, reply.Fields["error"].GetStringValue())
	}
	return nil
}

// #endregion send

// #region encoding
// encodeNotification maps a notification to the relay's Struct payload.
func encodeNotification(n notify.Notification) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{
		"id":         n.ID,
		"checkpoint": n.Checkpoint,
		"channel_id": n.ChannelID,
		"message":    n.Message,
		"at":         n.At.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("encode notification %s: %w", n.ID, err)
	}
	return req, nil
}

// #endregion encoding

var _ notify.Notifier = (*Client)(nil)
