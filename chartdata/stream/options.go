package stream

import (
	"context"
	"net/url"
	"time"
)

// Option is a configuration option for the ChartClient
type Option interface {
	apply(*options)
}

type options struct {
	logger          Logger
	streamURL       string
	authToken       string
	resolver        StudyResolver
	reconnectLimit  int
	reconnectDelay  time.Duration
	reconnectFactor float64
	packetLimit     int
	bufferSize      int

	// for testing only
	connCreator func(ctx context.Context, u url.URL) (conn, error)
}

// defaultOptions are the default options for a client.
// Don't change this in a backward incompatible way!
func defaultOptions() *options {
	return &options{
		logger:          DefaultLogger(),
		streamURL:       defaultStreamURL,
		authToken:       unauthorizedToken,
		resolver:        nil,
		reconnectLimit:  5,
		reconnectDelay:  time.Second,
		reconnectFactor: 2,
		packetLimit:     15,
		bufferSize:      100,
		connCreator:     newCoderWebsocketConn,
	}
}

type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(o *options) {
	fo.f(o)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithLogger configures the logger
func WithLogger(logger Logger) Option {
	return newFuncOption(func(o *options) {
		o.logger = logger
	})
}

// WithStreamURL configures the websocket URL
func WithStreamURL(url string) Option {
	return newFuncOption(func(o *options) {
		o.streamURL = url
	})
}

// WithAuthToken configures the bearer token sent with set_auth_token.
// Without it the stream runs as an anonymous session.
func WithAuthToken(token string) Option {
	return newFuncOption(func(o *options) {
		if token != "" {
			o.authToken = token
		}
	})
}

// WithStudyResolver configures the collaborator that supplies create_study
// payloads for the subscription's indicators.
func WithStudyResolver(resolver StudyResolver) Option {
	return newFuncOption(func(o *options) {
		o.resolver = resolver
	})
}

// WithReconnectSettings configures how many consecutive connection errors
// should be accepted, the initial delay between retries and the factor the
// delay is multiplied by after every failed attempt. A limit of 0 keeps the
// default cap; reconnecting forever is not supported.
func WithReconnectSettings(limit int, delay time.Duration, factor float64) Option {
	return newFuncOption(func(o *options) {
		if limit > 0 {
			o.reconnectLimit = limit
		}
		if delay > 0 {
			o.reconnectDelay = delay
		}
		if factor >= 1 {
			o.reconnectFactor = factor
		}
	})
}

// WithPacketLimit configures how many packets Collect inspects before giving
// up on series that have not materialized. This is a packet-count ceiling,
// not a wall-clock timeout; bound Collect with a context for the latter.
func WithPacketLimit(limit int) Option {
	return newFuncOption(func(o *options) {
		if limit > 0 {
			o.packetLimit = limit
		}
	})
}

// WithBufferSize sets the size of the decoded packet buffer between the
// connection reader and the consumer.
func WithBufferSize(size int) Option {
	return newFuncOption(func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	})
}

// WithGorillaWebsocket switches the underlying connection to the
// gorilla/websocket implementation.
func WithGorillaWebsocket() Option {
	return newFuncOption(func(o *options) {
		o.connCreator = newGorillaWebsocketConn
	})
}

func withConnCreator(connCreator func(ctx context.Context, u url.URL) (conn, error)) Option {
	return newFuncOption(func(o *options) {
		o.connCreator = connCreator
	})
}
