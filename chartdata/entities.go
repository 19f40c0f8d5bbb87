package chartdata

// Bar is a single OHLCV candle from a chart series.
//
// Timestamp is in unix seconds. Volume is nil when the server omitted the
// sixth value of the series entry, which is legitimate for some symbols.
type Bar struct {
	Index     int
	Timestamp float64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    *float64
}

// IndicatorPoint is one value row of a server-computed study series.
//
// Values are keyed positionally: Values[0] is conventionally the smoothing
// value, Values[1] the close/primary value, the rest are study-specific.
type IndicatorPoint struct {
	Index     int
	Timestamp float64
	Values    []float64
}

// QuoteData is the payload of a qsd packet for one symbol.
type QuoteData struct {
	Symbol string
	Status string
	Values map[string]interface{}
}

// StreamResult is the outcome of a batch stream request.
//
// Missing names the indicators that never produced a series before the
// packet limit was reached. Free-tier backends silently cap the number of
// concurrently streamable studies, so a populated Missing next to populated
// Indicators is an expected outcome, not a failure.
type StreamResult struct {
	Bars       []Bar
	Indicators map[string][]IndicatorPoint
	Missing    []string
}

// VolumePtr is a convenience for building Bar literals.
func VolumePtr(v float64) *float64 {
	return &v
}
