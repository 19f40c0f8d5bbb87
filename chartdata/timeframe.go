package chartdata

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedTimeframe is returned for a timeframe code outside the
// supported table.
var ErrUnsupportedTimeframe = errors.New("unsupported timeframe")

var timeframeMinutes = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"2h":  120,
	"4h":  240,
	"1d":  1440,
	"1w":  10080,
	"1M":  302400,
}

// TimeframeMinutes converts a timeframe code such as "5m" or "4h" to its
// length in minutes.
func TimeframeMinutes(code string) (int, error) {
	m, ok := timeframeMinutes[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTimeframe, code)
	}
	return m, nil
}

// Timeframes returns the supported timeframe codes, shortest first.
func Timeframes() []string {
	codes := make([]string, 0, len(timeframeMinutes))
	for code := range timeframeMinutes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return timeframeMinutes[codes[i]] < timeframeMinutes[codes[j]]
	})
	return codes
}
