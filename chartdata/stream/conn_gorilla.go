package stream

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type gorillaWebsocketConn struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

// newGorillaWebsocketConn creates a new gorilla websocket connection
func newGorillaWebsocketConn(ctx context.Context, u url.URL) (conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  dialWait,
		EnableCompression: true,
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), dialHeader())
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return &gorillaWebsocketConn{
		conn: conn,
	}, nil
}

// close closes the websocket connection
func (c *gorillaWebsocketConn) close() error {
	c.writeMu.Lock()
	//nolint:errcheck // best-effort close notification
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// readMessage blocks until it reads a single message
func (c *gorillaWebsocketConn) readMessage(ctx context.Context) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// writeMessage writes a single message
func (c *gorillaWebsocketConn) writeMessage(_ context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
