package stream

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnectCalledMultipleTimes is returned when Connect has been called multiple times on a single client
	ErrConnectCalledMultipleTimes = errors.New("tried to call Connect multiple times")
	// ErrConnectionExhausted is returned when the reconnect attempt cap has
	// been reached without reestablishing the stream
	ErrConnectionExhausted = errors.New("max reconnect limit has been reached")
	// ErrMissingSymbol is returned when a client is constructed without a symbol
	ErrMissingSymbol = errors.New("no symbol configured")
	// ErrBadBarCount is returned for a zero or negative bar count
	ErrBadBarCount = errors.New("bar count must be positive")
	// ErrIncompleteIndicator is returned when an indicator id or version is
	// given without its counterpart
	ErrIncompleteIndicator = errors.New("indicator id and version must be provided together")
	// ErrNoStudyResolver is returned when indicators are requested but no
	// study resolver is configured
	ErrNoStudyResolver = errors.New("indicators requested but no study resolver configured")
)

// DataNotFoundError is returned by Collect when the packet limit is reached
// before the requested series materialized. Missing names the indicators
// that never produced data.
type DataNotFoundError struct {
	Packets int
	Missing []string
	NoBars  bool
}

func (e *DataNotFoundError) Error() string {
	if e.NoBars {
		return fmt.Sprintf("no OHLC packet found within the first %d packets", e.Packets)
	}
	return fmt.Sprintf("no data for indicators %s within the first %d packets",
		strings.Join(e.Missing, ", "), e.Packets)
}

// serverError is a protocol_error or critical_error packet from the server.
type serverError struct {
	method string
	detail string
}

func (e serverError) Error() string {
	return fmt.Sprintf("server %s: %s", e.method, e.detail)
}
