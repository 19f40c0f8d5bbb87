package stream

import (
	"strconv"

	"github.com/mnwato/tradingview-scraper/chartdata"
)

const (
	// seriesID and symbolRef are the local identifiers the chart session
	// uses for the single OHLCV series and its resolved symbol.
	seriesID  = "sds_1"
	symbolRef = "sds_sym_1"

	// studySlotBase is the first server-side study slot; the k-th indicator
	// occupies slot "st"+(studySlotBase+k).
	studySlotBase = 9

	// defaultResolution is the series resolution requested on the wire;
	// coarser timeframes are produced by client-side resampling.
	defaultResolution = "1"
)

// Indicator identifies a Pine script study by its id and version.
type Indicator struct {
	ID      string
	Version string
}

// Subscription describes one symbol stream. It is immutable for the
// lifetime of a stream request and re-sent as-is after every reconnect.
type Subscription struct {
	// Symbol in "EXCHANGE:SYMBOL" form.
	Symbol string
	// Timeframe is the resampling target, e.g. "1m", "5m", "4h".
	Timeframe string
	// Resolution overrides the series resolution sent on the wire.
	// Defaults to "1" (one-minute source bars).
	Resolution string
	// BarCount is the number of source bars to request.
	BarCount int
	// Indicators are attached as studies, in order.
	Indicators []Indicator
}

func (s Subscription) resolution() string {
	if s.Resolution == "" {
		return defaultResolution
	}
	return s.Resolution
}

// StudySlot returns the server-side slot name assigned to the k-th
// indicator. Slot assignment is a function of indicator position only, never
// of packet arrival order.
func StudySlot(k int) string {
	return "st" + strconv.Itoa(studySlotBase+k)
}

// StudySlots maps each slot name to the indicator id occupying it. The
// mapping is deterministic and stable across reconnects: a reconnect
// re-requests the same slot with the same indicator.
func (s Subscription) StudySlots() map[string]string {
	slots := make(map[string]string, len(s.Indicators))
	for i, ind := range s.Indicators {
		slots[StudySlot(i)] = ind.ID
	}
	return slots
}

// validate rejects malformed subscriptions before any network I/O.
func (s Subscription) validate() error {
	if s.Symbol == "" {
		return ErrMissingSymbol
	}
	if _, _, err := chartdata.SplitSymbol(s.Symbol); err != nil {
		return err
	}
	if s.Timeframe != "" {
		if _, err := chartdata.TimeframeMinutes(s.Timeframe); err != nil {
			return err
		}
	}
	if s.BarCount <= 0 {
		return ErrBadBarCount
	}
	for _, ind := range s.Indicators {
		if ind.ID == "" || ind.Version == "" {
			return ErrIncompleteIndicator
		}
	}
	return nil
}
