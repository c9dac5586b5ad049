// Package waapi implements a client for the Wwise authoring API: JSON
// request/response envelopes over one persistent WebSocket connection to
// the editor process.
package waapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the editor's loopback authoring endpoint.
const DefaultEndpoint = "127.0.0.1:8080"

// connectTimeout bounds the WebSocket handshake. Calls after connect have
// no timeout: a hung editor hangs the caller, which is accepted behavior.
const connectTimeout = 10 * time.Second

// ErrNotConnected is returned by Call when no connection is established.
var ErrNotConnected = errors.New("waapi: not connected")

// request is the wire envelope for a single authoring-API call.
type request struct {
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Args    any    `json:"args,omitempty"`
	Options any    `json:"options,omitempty"`
}

// response carries either a return payload (an array of rows, or a
// project-info shaped object) or a call error.
type response struct {
	ID     uint64          `json:"id"`
	Return json.RawMessage `json:"return,omitempty"`
	Error  *CallError      `json:"error,omitempty"`
}

// A CallError is an error reported by the editor for a single call.
type CallError struct {
	URI     string `json:"uri"`
	Message string `json:"message"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("waapi: %s: %s", e.URI, e.Message)
}

// A Client is a connection-oriented authoring-API facade for exactly one
// editor process. All calls pass through a single-slot gate: the editor
// transport is not assumed to handle concurrent requests, so concurrent
// callers are served strictly one at a time in arrival order. The gate is
// not reentrant; issuing a nested Call from inside a pending call's
// completion path deadlocks.
type Client struct {
	endpoint string
	log      *slog.Logger

	// gate serializes all traffic to the editor.
	gate sync.Mutex

	mu           sync.Mutex
	conn         *websocket.Conn
	connected    bool
	onDisconnect func()

	seq atomic.Uint64
}

// NewClient returns a disconnected client for the given host:port
// endpoint.
func NewClient(endpoint string, log *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, log: log}
}

// SetOnDisconnect registers a callback fired once whenever the transport
// drops. Must be set before Connect.
func (c *Client) SetOnDisconnect(fn func()) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// Connected reports whether a connection is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect establishes the WebSocket connection. It is idempotent: when
// already connected it returns immediately without reconnecting. On
// failure no half-open handle is kept, so a later retry starts clean.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: connectTimeout}
	conn, _, err := dialer.DialContext(ctx, "ws://"+c.endpoint+"/waapi", nil)
	if err != nil {
		return fmt.Errorf("waapi: connect %s: %w", c.endpoint, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("connected to authoring API", "endpoint", c.endpoint)
	return nil
}

// Disconnect closes the transport if currently connected; otherwise it is
// a logged no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		c.log.Debug("disconnect ignored, not connected")
		return nil
	}
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}

// Call issues one request and waits for its response. At most one call is
// in flight across the whole process. There is no cooperative
// cancellation once the request is written; a dropped connection surfaces
// as an error on the in-flight or a subsequent call.
func (c *Client) Call(ctx context.Context, method string, args, options any) (json.RawMessage, error) {
	c.gate.Lock()
	defer c.gate.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	conn, connected := c.conn, c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return nil, ErrNotConnected
	}

	req := request{ID: c.seq.Add(1), Method: method, Args: args, Options: options}
	if err := conn.WriteJSON(req); err != nil {
		c.drop(conn, err)
		return nil, fmt.Errorf("waapi: %s: %w", method, err)
	}

	var resp response
	for {
		if err := conn.ReadJSON(&resp); err != nil {
			c.drop(conn, err)
			return nil, fmt.Errorf("waapi: %s: %w", method, err)
		}
		if resp.ID == req.ID {
			break
		}
		// Response left over from an earlier aborted call; discard.
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Return, nil
}

// drop tears down a failed connection: the public connected flag is
// reset, the handle is discarded rather than reused, and the disconnect
// callback fires. The next Connect builds a fresh handle.
func (c *Client) drop(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn || conn == nil {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.connected = false
	cb := c.onDisconnect
	c.mu.Unlock()

	conn.Close()
	c.log.Warn("authoring API transport dropped", "error", cause)
	if cb != nil {
		cb()
	}
}
