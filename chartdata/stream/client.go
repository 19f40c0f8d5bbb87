package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mnwato/tradingview-scraper/chartdata"
	"github.com/mnwato/tradingview-scraper/internal/ctxtime"
)

// ConnectionState is the lifecycle phase of a ChartClient.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateHandshaking
	StateSubscribed
	StateStreaming
	StateReconnecting
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateSubscribed:
		return "subscribed"
	case StateStreaming:
		return "streaming"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ChartClient streams chart data for a single subscription and handles
// communication both ways: decoded packets flow out on Packets, heartbeats
// are echoed back internally.
//
// After constructing, Connect() must be called before anything is received.
// Connect keeps the connection alive and reestablishes it until a configured
// number of retries has been exceeded. Every reconnect opens fresh server
// sessions and replays the subscription, so the stream resumes without
// consumer involvement.
//
// Terminated() returns a channel that the client sends an error to when it
// has terminated. A client can not be reused once it has terminated!
type ChartClient interface {
	// Connect establishes a connection and reestablishes it when errors occur
	// as long as the configured number of retries has not been exceeded.
	//
	// It blocks until the connection has been established for the first time
	// (or it failed to do so).
	//
	// Should only be called once!
	Connect(ctx context.Context) error
	// Packets returns the channel of decoded inbound packets. It is closed
	// when the client terminates.
	Packets() <-chan Packet
	// Terminated returns a channel that the client sends an error to when it
	// has terminated. The channel is also closed upon termination.
	Terminated() <-chan error
	// State returns the current connection state.
	State() ConnectionState
	// Collect consumes packets until the subscription's bar series and every
	// indicator series arrived, or until the configured packet limit. See
	// the method documentation for the exact contract.
	Collect(ctx context.Context) (*chartdata.StreamResult, error)
}

type client struct {
	logger Logger

	sub       Subscription
	streamURL string
	authToken string
	resolver  StudyResolver

	reconnectLimit  int
	reconnectDelay  time.Duration
	reconnectFactor float64
	packetLimit     int
	bufferSize      int

	connectOnce    sync.Once
	terminatedChan chan error
	packets        chan Packet
	state          atomic.Int32

	connCreator func(ctx context.Context, u url.URL) (conn, error)
}

var _ ChartClient = (*client)(nil)

// NewChartClient returns a new ChartClient streaming sub, with default
// configurations modified by opts.
func NewChartClient(sub Subscription, opts ...Option) ChartClient {
	c := &client{
		sub:            sub,
		terminatedChan: make(chan error, 1),
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}
	c.configure(*o)
	return c
}

func (c *client) configure(o options) {
	c.logger = o.logger
	c.streamURL = o.streamURL
	c.authToken = o.authToken
	c.resolver = o.resolver
	if c.resolver == nil && len(c.sub.Indicators) > 0 {
		c.resolver = chartdata.DefaultClient
	}
	c.reconnectLimit = o.reconnectLimit
	c.reconnectDelay = o.reconnectDelay
	c.reconnectFactor = o.reconnectFactor
	c.packetLimit = o.packetLimit
	c.bufferSize = o.bufferSize
	c.packets = make(chan Packet, o.bufferSize)
	c.connCreator = o.connCreator
}

func (c *client) Connect(ctx context.Context) error {
	if err := c.sub.validate(); err != nil {
		return err
	}
	u, err := url.Parse(c.streamURL)
	if err != nil {
		return err
	}
	err = ErrConnectCalledMultipleTimes
	c.connectOnce.Do(func() {
		err = c.connectAndMaintainConnection(ctx, *u)
		if err != nil {
			c.terminatedChan <- err
			close(c.terminatedChan)
			close(c.packets)
			c.state.Store(int32(StateClosed))
		}
	})
	return err
}

func (c *client) connectAndMaintainConnection(ctx context.Context, u url.URL) error {
	initialResultCh := make(chan error)
	go c.maintainConnection(ctx, u, initialResultCh)
	return <-initialResultCh
}

func (c *client) Packets() <-chan Packet {
	return c.packets
}

func (c *client) Terminated() <-chan error {
	return c.terminatedChan
}

func (c *client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// maintainConnection dials u, starts the reader and heartbeat writer
// goroutines and recreates everything if there was an error, as long as
// reconnectLimit consecutive connection initialization errors don't occur.
// Every attempt uses fresh session ids. It sends the first connection
// initialization's result to initialResultCh.
func (c *client) maintainConnection(ctx context.Context, u url.URL, initialResultCh chan<- error) {
	var connError error
	failedAttemptsInARow := 0
	connectedAtLeastOnce := false

	defer func() {
		c.state.Store(int32(StateClosed))
		// if we haven't connected at least once then Connect closes the channels
		if connectedAtLeastOnce {
			close(c.terminatedChan)
			close(c.packets)
		}
	}()

	sendError := func(err error) {
		if !connectedAtLeastOnce {
			initialResultCh <- err
		} else {
			c.terminatedChan <- err
		}
	}

	for {
		select {
		case <-ctx.Done():
			if !connectedAtLeastOnce {
				if connError == nil {
					c.logger.Warnf("chartstream: cancelled before connection could be established")
					initialResultCh <- errors.New("cancelled before connection could be established")
				} else {
					c.logger.Warnf("chartstream: cancelled before connection could be established, last error: %v", connError)
					initialResultCh <- fmt.Errorf("cancelled before connection could be established, last error: %w", connError)
				}
			} else {
				c.terminatedChan <- nil
			}
			return
		default:
			if c.reconnectLimit != 0 && failedAttemptsInARow >= c.reconnectLimit {
				c.logger.Errorf("chartstream: max reconnect limit has been reached, last error: %v", connError)
				sendError(fmt.Errorf("%w, last error: %v", ErrConnectionExhausted, connError))
				return
			}
			if failedAttemptsInARow > 0 {
				delay := c.reconnectDelay
				for i := 1; i < failedAttemptsInARow; i++ {
					delay = time.Duration(float64(delay) * c.reconnectFactor)
				}
				if err := ctxtime.Sleep(ctx, delay); err != nil {
					continue
				}
			}
			failedAttemptsInARow++
			if connectedAtLeastOnce {
				c.state.Store(int32(StateReconnecting))
			} else {
				c.state.Store(int32(StateConnecting))
			}
			c.logger.Infof("chartstream: connecting to %s, attempt %d/%d ...", u.Host, failedAttemptsInARow, c.reconnectLimit)
			conn, err := c.connCreator(ctx, u)
			if err != nil {
				connError = err
				c.logger.Warnf("chartstream: failed to connect, error: %v", err)
				continue
			}

			c.logger.Infof("chartstream: established connection")
			c.state.Store(int32(StateHandshaking))
			// The server refuses reused session ids, so every attempt gets
			// fresh ones.
			sess := newSession()
			if err := c.initialize(ctx, conn, sess); err != nil {
				connError = err
				conn.close()
				if isErrorIrrecoverable(err) {
					c.logger.Errorf("chartstream: irrecoverable error during connection initialization: %v", err)
					sendError(fmt.Errorf("irrecoverable error during connection initialization: %w", err))
					return
				}
				c.logger.Warnf("chartstream: connection setup failed, error: %v", err)
				continue
			}
			c.logger.Infof("chartstream: finished connection setup")
			c.state.Store(int32(StateSubscribed))
			connError = nil
			if !connectedAtLeastOnce {
				initialResultCh <- nil
				connectedAtLeastOnce = true
			}
			failedAttemptsInARow = 0

			echo := make(chan []byte, 1)
			wg := sync.WaitGroup{}
			wg.Add(2)
			closeCh := make(chan struct{})
			go c.connReader(ctx, conn, &wg, closeCh, echo)
			go c.connWriter(ctx, conn, &wg, closeCh, echo)
			wg.Wait()
			if ctx.Err() != nil {
				c.logger.Infof("chartstream: disconnected")
			} else {
				c.logger.Warnf("chartstream: connection lost")
			}
		}
	}
}

// isErrorIrrecoverable returns whether the error is irrecoverable and further
// retries should not take place
func isErrorIrrecoverable(err error) bool {
	return errors.Is(err, ErrNoStudyResolver) || errors.Is(err, chartdata.ErrStudyNotFound)
}

// connReader reads from conn, echoes heartbeats through echo and sends every
// decoded packet to c.packets. It is also responsible for closing closeCh
// which terminates connWriter.
func (c *client) connReader(
	ctx context.Context,
	conn conn,
	wg *sync.WaitGroup,
	closeCh chan<- struct{},
	echo chan<- []byte,
) {
	defer func() {
		close(closeCh)
		conn.close()
		wg.Done()
	}()

	for {
		msg, err := conn.readMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Errorf("chartstream: reading from conn failed, error: %v", err)
			}
			return
		}
		// The first inbound frame of any kind marks the stream live.
		c.state.CompareAndSwap(int32(StateSubscribed), int32(StateStreaming))
		raw := string(msg)
		// Heartbeats are echoed back byte for byte, counter included. They
		// never reach the consumer.
		if isHeartbeat(raw) {
			select {
			case echo <- msg:
			case <-ctx.Done():
				return
			}
			continue
		}
		for _, frame := range splitFrames(raw) {
			pkt, err := parsePacket(frame)
			if err != nil {
				c.logger.Warnf("chartstream: dropping malformed frame, error: %v", err)
				continue
			}
			select {
			case c.packets <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}
}

// connWriter writes the heartbeat echoes from echo back to conn.
func (c *client) connWriter(
	ctx context.Context,
	conn conn,
	wg *sync.WaitGroup,
	closeCh <-chan struct{},
	echo <-chan []byte,
) {
	defer func() {
		conn.close()
		wg.Done()
	}()

	for {
		select {
		case <-closeCh:
			return
		case <-ctx.Done():
			return
		case msg := <-echo:
			if err := conn.writeMessage(ctx, msg); err != nil {
				if ctx.Err() == nil {
					c.logger.Errorf("chartstream: writing to conn failed, error: %v", err)
				}
				return
			}
		}
	}
}
