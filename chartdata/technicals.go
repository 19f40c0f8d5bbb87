package chartdata

import (
	"errors"

	movingaverage "github.com/RobinUS2/golang-moving-average"
)

// ErrNoBars is returned by technical helpers when given an empty series.
var ErrNoBars = errors.New("no bars")

// SMA computes a simple moving average over the bar closes with the given
// window. The returned slice is aligned with bars; entries before the window
// has filled are averages of the bars seen so far.
func SMA(bars []Bar, window int) ([]float64, error) {
	if window < 1 {
		return nil, errors.New("window must be positive")
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	ma := movingaverage.New(window)
	out := make([]float64, len(bars))
	for i, b := range bars {
		ma.Add(b.Close)
		out[i] = ma.Avg()
	}
	return out, nil
}

// AverageVolume is the average traded volume over a bar series, together
// with the number of bars that carried a volume value.
type AverageVolume struct {
	Average float64
	Bars    int
}

// ADTV calculates the average traded volume over bars. Bars without a volume
// value are skipped.
func ADTV(bars []Bar) (*AverageVolume, error) {
	var (
		total float64
		count int
	)
	for _, b := range bars {
		if b.Volume == nil {
			continue
		}
		total += *b.Volume
		count++
	}
	if count == 0 {
		return &AverageVolume{}, nil
	}
	return &AverageVolume{
		Average: total / float64(count),
		Bars:    count,
	}, nil
}
