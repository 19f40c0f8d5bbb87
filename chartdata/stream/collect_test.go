package stream

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedClient(t *testing.T, sub Subscription, opts ...Option) (ChartClient, *mockConn, context.CancelFunc) {
	t.Helper()
	connection := newMockConn()
	opts = append(opts, withConnCreator(func(_ context.Context, _ url.URL) (conn, error) {
		return connection, nil
	}))
	c := NewChartClient(sub, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Connect(ctx))
	return c, connection, cancel
}

func feed(conn *mockConn, payload string) {
	conn.readCh <- encodeFrame(payload)
}

func minuteBarsPayload(n int) string {
	rows := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			rows += ","
		}
		rows += fmt.Sprintf(`{"i":%d,"v":[%d,%d,%d,%d,%d,10]}`,
			i, 1700000000+60*i, i+1, i+3, i, i+2)
	}
	return fmt.Sprintf(`{"m":"timescale_update","p":["cs_x",{"sds_1":{"s":[%s]}}]}`, rows)
}

func studyPayload(slot string, n int) string {
	return fmt.Sprintf(`{"m":"du","p":["cs_x",{"%s":{"st":[%s]}}]}`, slot, studyRows(n))
}

func TestCollectBarsAndIndicators(t *testing.T) {
	sub := testSubscription()
	sub.Indicators = []Indicator{{ID: "STD;RSI", Version: "31.0"}}
	c, conn, cancel := connectedClient(t, sub, WithStudyResolver(&fakeResolver{}))
	defer cancel()
	defer conn.close()

	feed(conn, `{"m":"symbol_resolved","p":["cs_x"]}`)
	feed(conn, minuteBarsPayload(10))
	feed(conn, studyPayload("st9", 20))

	ctx, cancelCollect := context.WithTimeout(context.Background(), time.Second)
	defer cancelCollect()
	result, err := c.Collect(ctx)
	require.NoError(t, err)

	// ten one-minute bars resampled to 5m make two buckets
	require.Len(t, result.Bars, 2)
	first := result.Bars[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, float64(1700000000), first.Timestamp)
	assert.Equal(t, float64(1), first.Open)
	assert.Equal(t, float64(7), first.High)
	assert.Equal(t, float64(0), first.Low)
	assert.Equal(t, float64(6), first.Close)
	require.NotNil(t, first.Volume)
	assert.Equal(t, float64(50), *first.Volume)

	require.Contains(t, result.Indicators, "STD;RSI")
	assert.Len(t, result.Indicators["STD;RSI"], 4)
	assert.Empty(t, result.Missing)
}

func TestCollectPartialIndicators(t *testing.T) {
	sub := testSubscription()
	sub.Indicators = []Indicator{
		{ID: "STD;RSI", Version: "31.0"},
		{ID: "STD;MACD", Version: "2.0"},
	}
	c, conn, cancel := connectedClient(t, sub,
		WithStudyResolver(&fakeResolver{}),
		WithPacketLimit(3))
	defer cancel()
	defer conn.close()

	feed(conn, minuteBarsPayload(5))
	feed(conn, studyPayload("st9", 20))
	feed(conn, `{"m":"study_loading","p":["cs_x"]}`)

	ctx, cancelCollect := context.WithTimeout(context.Background(), time.Second)
	defer cancelCollect()
	result, err := c.Collect(ctx)
	require.NoError(t, err)

	require.Len(t, result.Bars, 1)
	assert.Contains(t, result.Indicators, "STD;RSI")
	assert.Equal(t, []string{"STD;MACD"}, result.Missing)
}

func TestCollectNoBars(t *testing.T) {
	c, conn, cancel := connectedClient(t, testSubscription(), WithPacketLimit(3))
	defer cancel()
	defer conn.close()

	feed(conn, `{"m":"symbol_resolved","p":["cs_x"]}`)
	feed(conn, `{"m":"series_loading","p":["cs_x"]}`)
	feed(conn, `{"m":"quote_completed","p":["qs_x"]}`)

	ctx, cancelCollect := context.WithTimeout(context.Background(), time.Second)
	defer cancelCollect()
	_, err := c.Collect(ctx)

	var notFound *DataNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, notFound.NoBars)
	assert.Equal(t, 3, notFound.Packets)
}

func TestCollectServerError(t *testing.T) {
	c, conn, cancel := connectedClient(t, testSubscription())
	defer cancel()
	defer conn.close()

	feed(conn, `{"m":"protocol_error","p":["wrong data"]}`)

	ctx, cancelCollect := context.WithTimeout(context.Background(), time.Second)
	defer cancelCollect()
	_, err := c.Collect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol_error")
}

func TestCollectContextTimeout(t *testing.T) {
	c, conn, cancel := connectedClient(t, testSubscription())
	defer cancel()
	defer conn.close()

	ctx, cancelCollect := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelCollect()
	_, err := c.Collect(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
