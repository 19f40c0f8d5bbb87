package stream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coder/websocket"
)

type coderWebsocketConn struct {
	conn *websocket.Conn
}

// newCoderWebsocketConn creates a new coder websocket connection
func newCoderWebsocketConn(ctx context.Context, u url.URL) (conn, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, dialWait)
	defer cancel()
	//nolint:bodyclose // According to its docs: you never need to close resp.Body yourself
	conn, _, err := websocket.Dial(ctxWithTimeout, u.String(), &websocket.DialOptions{
		CompressionMode: websocket.CompressionContextTakeover,
		HTTPHeader:      dialHeader(),
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	// Disable read limit: a timescale_update with a large bar count can be huge.
	conn.SetReadLimit(-1)

	return &coderWebsocketConn{
		conn: conn,
	}, nil
}

// close closes the websocket connection
func (c *coderWebsocketConn) close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// readMessage blocks until it reads a single message
func (c *coderWebsocketConn) readMessage(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// writeMessage writes a single message
func (c *coderWebsocketConn) writeMessage(ctx context.Context, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	return c.conn.Write(writeCtx, websocket.MessageText, data)
}
