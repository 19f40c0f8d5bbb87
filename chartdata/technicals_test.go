package chartdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	bars := []Bar{
		{Close: 1}, {Close: 2}, {Close: 3}, {Close: 4},
	}
	out, err := SMA(bars, 2)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 1.5, out[1])
	assert.Equal(t, 2.5, out[2])
	assert.Equal(t, 3.5, out[3])
}

func TestSMAErrors(t *testing.T) {
	_, err := SMA(nil, 3)
	assert.ErrorIs(t, err, ErrNoBars)
	_, err = SMA([]Bar{{Close: 1}}, 0)
	assert.Error(t, err)
}

func TestADTV(t *testing.T) {
	bars := []Bar{
		{Volume: VolumePtr(100)},
		{Volume: nil},
		{Volume: VolumePtr(200)},
	}
	avg, err := ADTV(bars)
	require.NoError(t, err)
	assert.Equal(t, 150.0, avg.Average)
	assert.Equal(t, 2, avg.Bars)
}

func TestADTVNoVolumes(t *testing.T) {
	avg, err := ADTV([]Bar{{}, {}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg.Average)
	assert.Equal(t, 0, avg.Bars)
}
