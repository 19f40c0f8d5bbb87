package stream

import (
	"encoding/json"

	"github.com/mnwato/tradingview-scraper/chartdata"
)

// Method names observed from the server. Packets with any other method
// (including none at all, like the initial session hello) fall through as
// unknown and are passed along untouched.
const (
	MethodTimescaleUpdate = "timescale_update"
	MethodDataUpdate      = "du"
	MethodSeriesLoading   = "series_loading"
	MethodSeriesCompleted = "series_completed"
	MethodSymbolResolved  = "symbol_resolved"
	MethodQuoteData       = "qsd"
	MethodQuoteCompleted  = "quote_completed"
	MethodStudyLoading    = "study_loading"
	MethodStudyCompleted  = "study_completed"
	MethodProtocolError   = "protocol_error"
	MethodCriticalError   = "critical_error"
)

// Packet is one decoded protocol unit: {"m": method, "p": params}. Params is
// kept raw because its shape varies per method.
type Packet struct {
	Method string          `json:"m"`
	Params json.RawMessage `json:"p"`
}

// IsError reports whether the packet is a server-side error notification.
func (p Packet) IsError() bool {
	return p.Method == MethodProtocolError || p.Method == MethodCriticalError
}

func (p Packet) toError() error {
	return serverError{method: p.Method, detail: string(p.Params)}
}

func parsePacket(frame string) (Packet, error) {
	var pkt Packet
	if err := json.Unmarshal([]byte(frame), &pkt); err != nil {
		return Packet{}, err
	}
	return pkt, nil
}

// seriesEntry mirrors the {i, v} rows of series and study payloads.
type seriesEntry struct {
	Index  int       `json:"i"`
	Values []float64 `json:"v"`
}

// paramsBody returns p[1] of the packet as a key-indexed object, or false
// when the params array has no such element.
func paramsBody(pkt Packet) (map[string]json.RawMessage, bool) {
	var params []json.RawMessage
	if err := json.Unmarshal(pkt.Params, &params); err != nil || len(params) < 2 {
		return nil, false
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(params[1], &body); err != nil {
		return nil, false
	}
	return body, true
}

// ExtractBars converts a timescale_update packet into OHLCV bars. Packets
// with any other method yield nil. A series entry whose value array has no
// sixth element produces a bar without volume; it is not an error.
func ExtractBars(pkt Packet) []chartdata.Bar {
	if pkt.Method != MethodTimescaleUpdate {
		return nil
	}
	body, ok := paramsBody(pkt)
	if !ok {
		return nil
	}
	var node struct {
		Series []seriesEntry `json:"s"`
	}
	if err := json.Unmarshal(body[seriesID], &node); err != nil {
		return nil
	}
	bars := make([]chartdata.Bar, 0, len(node.Series))
	for _, e := range node.Series {
		if len(e.Values) < 5 {
			continue
		}
		b := chartdata.Bar{
			Index:     e.Index,
			Timestamp: e.Values[0],
			Open:      e.Values[1],
			High:      e.Values[2],
			Low:       e.Values[3],
			Close:     e.Values[4],
		}
		if len(e.Values) > 5 {
			v := e.Values[5]
			b.Volume = &v
		}
		bars = append(bars, b)
	}
	return bars
}

// minStudyPoints guards against partial incremental updates: a du payload
// whose point array is not longer than this is not yet a full series and is
// skipped.
const minStudyPoints = 10

// ExtractStudies converts a du (delta update) packet into indicator point
// series, keyed by indicator id via the slot mapping. Slots missing from the
// packet, structurally mismatched slot payloads and not-yet-complete series
// are skipped rather than failing the extraction.
func ExtractStudies(pkt Packet, slots map[string]string) map[string][]chartdata.IndicatorPoint {
	if pkt.Method != MethodDataUpdate {
		return nil
	}
	body, ok := paramsBody(pkt)
	if !ok {
		return nil
	}
	out := make(map[string][]chartdata.IndicatorPoint)
	for slot, indicatorID := range slots {
		raw, ok := body[slot]
		if !ok {
			continue
		}
		var node struct {
			Points []seriesEntry `json:"st"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			continue
		}
		if len(node.Points) <= minStudyPoints {
			continue
		}
		points := make([]chartdata.IndicatorPoint, 0, len(node.Points))
		for _, e := range node.Points {
			if len(e.Values) < 1 {
				continue
			}
			points = append(points, chartdata.IndicatorPoint{
				Index:     e.Index,
				Timestamp: e.Values[0],
				Values:    e.Values[1:],
			})
		}
		out[indicatorID] = points
	}
	return out
}

// ExtractQuote converts a qsd packet into per-symbol quote fields.
func ExtractQuote(pkt Packet) (chartdata.QuoteData, bool) {
	if pkt.Method != MethodQuoteData {
		return chartdata.QuoteData{}, false
	}
	var params []json.RawMessage
	if err := json.Unmarshal(pkt.Params, &params); err != nil || len(params) < 2 {
		return chartdata.QuoteData{}, false
	}
	var quote struct {
		Name   string                 `json:"n"`
		Status string                 `json:"s"`
		Values map[string]interface{} `json:"v"`
	}
	if err := json.Unmarshal(params[1], &quote); err != nil {
		return chartdata.QuoteData{}, false
	}
	return chartdata.QuoteData{
		Symbol: quote.Name,
		Status: quote.Status,
		Values: quote.Values,
	}, true
}
