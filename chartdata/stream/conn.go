package stream

import (
	"context"
	"net/http"
	"time"
)

// conn represents a websocket connection between the server and the client
type conn interface {
	// close closes the websocket connection
	close() error
	// readMessage blocks until it reads a single message
	readMessage(ctx context.Context) (data []byte, err error)
	// writeMessage writes a single message
	writeMessage(ctx context.Context, data []byte) error
}

var (
	dialWait  = 3 * time.Second // Time allowed to complete the websocket handshake
	writeWait = 5 * time.Second // Time allowed to write a message to the peer
)

// dialHeader returns the fixed header set the server requires on the
// websocket handshake. The Connection/Upgrade/Sec-WebSocket-* headers are
// produced by the websocket library itself and must not be set here.
func dialHeader() http.Header {
	h := http.Header{}
	h.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	h.Set("Accept-Language", "en-US,en;q=0.9,fa;q=0.8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Origin", "https://www.tradingview.com")
	h.Set("Pragma", "no-cache")
	h.Set("User-Agent", userAgent)
	return h
}
