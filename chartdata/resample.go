package chartdata

import (
	"errors"
	"sort"
)

// ErrBadResampleTarget is returned when the resample target is below one
// minute.
var ErrBadResampleTarget = errors.New("resample target must be at least one minute")

// ResampleBars aggregates ordered one-minute bars into buckets of
// targetMinutes source bars each.
//
// A target of 1 is the identity. Per bucket: open is the first bar's open,
// close the last bar's close, high/low the extrema, timestamp the first
// bar's timestamp and index the bucket's position in the output. Volume is
// summed only when every bar in the bucket carries one, otherwise it is
// omitted. A trailing group shorter than the target is still emitted as a
// final, smaller bucket.
func ResampleBars(bars []Bar, targetMinutes int) ([]Bar, error) {
	if targetMinutes < 1 {
		return nil, ErrBadResampleTarget
	}
	if targetMinutes == 1 {
		return bars, nil
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var (
		out     []Bar
		group   Bar
		volume  float64
		withVol bool
		count   int
	)
	flush := func() {
		if withVol {
			v := volume
			group.Volume = &v
		} else {
			group.Volume = nil
		}
		group.Index = len(out)
		out = append(out, group)
		count = 0
	}
	for _, b := range sorted {
		if count == 0 {
			group = b
			volume = 0
			withVol = b.Volume != nil
			if withVol {
				volume = *b.Volume
			}
		} else {
			if b.High > group.High {
				group.High = b.High
			}
			if b.Low < group.Low {
				group.Low = b.Low
			}
			group.Close = b.Close
			if b.Volume == nil {
				withVol = false
			} else if withVol {
				volume += *b.Volume
			}
		}
		count++
		if count == targetMinutes {
			flush()
		}
	}
	if count > 0 {
		flush()
	}
	return out, nil
}

// ResamplePoints aggregates indicator points with the same bucketing rule as
// ResampleBars. The bucket keeps the first point's timestamp; all values are
// positional study outputs with no aggregation rule of their own, so the
// latest point's values win.
func ResamplePoints(points []IndicatorPoint, targetMinutes int) ([]IndicatorPoint, error) {
	if targetMinutes < 1 {
		return nil, ErrBadResampleTarget
	}
	if targetMinutes == 1 {
		return points, nil
	}

	sorted := make([]IndicatorPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var (
		out   []IndicatorPoint
		group IndicatorPoint
		count int
	)
	flush := func() {
		group.Index = len(out)
		out = append(out, group)
		count = 0
	}
	for _, p := range sorted {
		if count == 0 {
			group = p
		} else {
			group.Values = p.Values
		}
		count++
		if count == targetMinutes {
			flush()
		}
	}
	if count > 0 {
		flush()
	}
	return out, nil
}
