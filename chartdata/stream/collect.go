package stream

import (
	"context"

	"github.com/mnwato/tradingview-scraper/chartdata"
)

// Collect consumes packets until the bar series and every indicator series
// arrived, then returns them resampled to the subscription's timeframe.
//
// The first non-empty timescale_update delivers the bars; each indicator is
// taken from the first du packet carrying a full series for its slot. If the
// packet limit is reached with bars but without some indicators, Collect
// returns the partial result with Missing populated and a nil error: free
// accounts cap concurrent studies and a partial outcome is expected. With no
// bars at all it returns a *DataNotFoundError. A server protocol_error or
// critical_error fails the collection immediately.
//
// The limit counts packets, not time; bound ctx for a wall-clock timeout.
func (c *client) Collect(ctx context.Context) (*chartdata.StreamResult, error) {
	var bars []chartdata.Bar
	indicators := make(map[string][]chartdata.IndicatorPoint)
	slots := c.sub.StudySlots()

	inspected := 0
	for inspected < c.packetLimit {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case pkt, ok := <-c.packets:
			if !ok {
				// Stream terminated; surface its error if it had one.
				if err := <-c.terminatedChan; err != nil {
					return nil, err
				}
				return c.finish(bars, indicators, inspected)
			}
			inspected++
			if pkt.IsError() {
				return nil, pkt.toError()
			}
			if len(bars) == 0 {
				if b := ExtractBars(pkt); len(b) > 0 {
					bars = b
				}
			}
			for id, points := range ExtractStudies(pkt, slots) {
				if _, ok := indicators[id]; !ok {
					indicators[id] = points
				}
			}
			if len(bars) > 0 && len(indicators) == len(slots) {
				return c.finish(bars, indicators, inspected)
			}
		}
	}
	return c.finish(bars, indicators, inspected)
}

func (c *client) finish(
	bars []chartdata.Bar,
	indicators map[string][]chartdata.IndicatorPoint,
	inspected int,
) (*chartdata.StreamResult, error) {
	if len(bars) == 0 {
		return nil, &DataNotFoundError{Packets: inspected, NoBars: true}
	}

	if c.sub.Timeframe != "" {
		minutes, err := chartdata.TimeframeMinutes(c.sub.Timeframe)
		if err != nil {
			return nil, err
		}
		if minutes > 1 {
			bars, err = chartdata.ResampleBars(bars, minutes)
			if err != nil {
				return nil, err
			}
			for id, points := range indicators {
				resampled, err := chartdata.ResamplePoints(points, minutes)
				if err != nil {
					return nil, err
				}
				indicators[id] = resampled
			}
		}
	}

	var missing []string
	for _, ind := range c.sub.Indicators {
		if _, ok := indicators[ind.ID]; !ok {
			missing = append(missing, ind.ID)
		}
	}
	return &chartdata.StreamResult{
		Bars:       bars,
		Indicators: indicators,
		Missing:    missing,
	}, nil
}
