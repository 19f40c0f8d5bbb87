package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSession(t *testing.T) {
	id := generateSession("qs_")
	require.Len(t, id, 3+sessionIDLength)
	assert.Equal(t, "qs_", id[:3])
	for _, r := range id[3:] {
		assert.True(t, r >= 'a' && r <= 'z', "unexpected rune %q", r)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := generateSession("cs_")
		assert.False(t, seen[s], "duplicate session id %s", s)
		seen[s] = true
	}
}

func TestResolvedSymbolRef(t *testing.T) {
	assert.Equal(t,
		`={"adjustment":"splits","symbol":"BINANCE:BTCUSDT"}`,
		resolvedSymbolRef("BINANCE:BTCUSDT"))
}

func TestHandshakeMessages(t *testing.T) {
	s := session{quote: "qs_aaaaaaaaaaaa", chart: "cs_bbbbbbbbbbbb"}
	msgs := handshakeMessages(s, unauthorizedToken)

	methods := make([]string, len(msgs))
	for i, m := range msgs {
		methods[i] = m.method
	}
	assert.Equal(t, []string{
		"set_auth_token",
		"set_locale",
		"chart_create_session",
		"quote_create_session",
		"quote_set_fields",
		"quote_hibernate_all",
	}, methods)

	assert.Equal(t, []interface{}{unauthorizedToken}, msgs[0].params)
	assert.Equal(t, []interface{}{"en", "US"}, msgs[1].params)
	assert.Equal(t, []interface{}{s.chart, ""}, msgs[2].params)
	assert.Equal(t, []interface{}{s.quote}, msgs[3].params)

	// quote_set_fields leads with the session id followed by the full field list
	require.Len(t, msgs[4].params, 1+len(quoteFields))
	assert.Equal(t, s.quote, msgs[4].params[0])
	assert.Equal(t, "ch", msgs[4].params[1])
	assert.Equal(t, "rtc", msgs[4].params[len(msgs[4].params)-1])
}

func TestSubscribeMessages(t *testing.T) {
	s := session{quote: "qs_aaaaaaaaaaaa", chart: "cs_bbbbbbbbbbbb"}
	sub := Subscription{
		Symbol:   "BINANCE:BTCUSDT",
		BarCount: 50,
		Indicators: []Indicator{
			{ID: "STD;RSI", Version: "31.0"},
			{ID: "STD;MACD", Version: "2.0"},
		},
	}
	studies := []json.RawMessage{
		json.RawMessage(`["cs_bbbbbbbbbbbb","st9"]`),
		json.RawMessage(`["cs_bbbbbbbbbbbb","st10"]`),
	}

	msgs := subscribeMessages(s, sub, studies)
	methods := make([]string, len(msgs))
	for i, m := range msgs {
		methods[i] = m.method
	}
	assert.Equal(t, []string{
		"quote_add_symbols",
		"resolve_symbol",
		"create_series",
		"quote_fast_symbols",
		"create_study",
		"quote_hibernate_all",
		"create_study",
		"quote_hibernate_all",
	}, methods)

	ref := resolvedSymbolRef(sub.Symbol)
	assert.Equal(t, []interface{}{s.quote, ref}, msgs[0].params)
	assert.Equal(t, []interface{}{s.chart, symbolRef, ref}, msgs[1].params)
	assert.Equal(t, []interface{}{s.chart, seriesID, "s1", symbolRef, "1", 50, ""}, msgs[2].params)
	assert.Equal(t, []interface{}{s.quote, sub.Symbol}, msgs[3].params)
	assert.Equal(t, studies[0], msgs[4].rawParams)
	assert.Equal(t, studies[1], msgs[6].rawParams)
}

func TestSubscribeMessagesResolutionOverride(t *testing.T) {
	s := newSession()
	sub := Subscription{Symbol: "NASDAQ:AAPL", Resolution: "5", BarCount: 10}
	msgs := subscribeMessages(s, sub, nil)
	require.Len(t, msgs, 4)
	assert.Equal(t, "5", msgs[2].params[4])
}
