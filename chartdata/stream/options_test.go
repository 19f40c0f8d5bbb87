package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	assert.Equal(t, defaultStreamURL, o.streamURL)
	assert.Equal(t, unauthorizedToken, o.authToken)
	assert.Equal(t, 5, o.reconnectLimit)
	assert.Equal(t, time.Second, o.reconnectDelay)
	assert.Equal(t, float64(2), o.reconnectFactor)
	assert.Equal(t, 15, o.packetLimit)
	assert.Equal(t, 100, o.bufferSize)
	require.NotNil(t, o.logger)
	require.NotNil(t, o.connCreator)
	assert.Nil(t, o.resolver)
}

func TestOptionsApply(t *testing.T) {
	logger := DefaultLogger()
	resolver := &fakeResolver{}
	o := defaultOptions()
	for _, opt := range []Option{
		WithLogger(logger),
		WithStreamURL("wss://example.com/socket"),
		WithAuthToken("real-token"),
		WithStudyResolver(resolver),
		WithReconnectSettings(7, 250*time.Millisecond, 1.5),
		WithPacketLimit(42),
		WithBufferSize(8),
	} {
		opt.apply(o)
	}

	assert.Same(t, logger, o.logger)
	assert.Equal(t, "wss://example.com/socket", o.streamURL)
	assert.Equal(t, "real-token", o.authToken)
	assert.Same(t, resolver, o.resolver)
	assert.Equal(t, 7, o.reconnectLimit)
	assert.Equal(t, 250*time.Millisecond, o.reconnectDelay)
	assert.Equal(t, 1.5, o.reconnectFactor)
	assert.Equal(t, 42, o.packetLimit)
	assert.Equal(t, 8, o.bufferSize)
}

func TestOptionsRejectNonsenseValues(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithAuthToken(""),
		WithReconnectSettings(0, 0, 0),
		WithPacketLimit(0),
		WithBufferSize(-1),
	} {
		opt.apply(o)
	}

	assert.Equal(t, unauthorizedToken, o.authToken)
	assert.Equal(t, 5, o.reconnectLimit)
	assert.Equal(t, time.Second, o.reconnectDelay)
	assert.Equal(t, float64(2), o.reconnectFactor)
	assert.Equal(t, 15, o.packetLimit)
	assert.Equal(t, 100, o.bufferSize)
}
