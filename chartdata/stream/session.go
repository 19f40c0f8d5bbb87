package stream

import (
	"crypto/rand"
	"encoding/json"
)

const (
	defaultStreamURL = "wss://data.tradingview.com/socket.io/websocket?from=chart%2FVEPYsueI%2F&type=chart"

	// The server rejects handshakes from unknown clients; this User-Agent is
	// part of the required header set and must be reproduced as-is.
	userAgent = "Mozilla/5.0 (Windows NT 6.3; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/107.0.0.0 Safari/537.36"

	// unauthorizedToken is the auth token for anonymous sessions.
	unauthorizedToken = "unauthorized_user_token"
)

// quoteFields is the fixed field list sent with quote_set_fields.
var quoteFields = []string{
	"ch", "chp", "current_session", "description", "local_description",
	"language", "exchange", "fractional", "is_tradable", "lp",
	"lp_time", "minmov", "minmove2", "original_name", "pricescale",
	"pro_name", "short_name", "type", "update_mode", "volume",
	"currency_code", "rchp", "rtc",
}

// session holds the server-side identifiers of one connection. Fresh ids are
// generated for every (re)connect: the server does not allow reusing a
// session id after its socket has closed.
type session struct {
	quote string
	chart string
}

func newSession() session {
	return session{
		quote: generateSession("qs_"),
		chart: generateSession("cs_"),
	}
}

const sessionIDLength = 12

// generateSession returns prefix followed by 12 random lowercase letters.
// The randomness is cryptographic so that concurrent subscriptions within
// one process cannot collide.
func generateSession(prefix string) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("stream: crypto/rand unavailable: " + err.Error())
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return prefix + string(b)
}

type symbolDescriptor struct {
	Adjustment string `json:"adjustment"`
	Symbol     string `json:"symbol"`
}

// resolvedSymbolRef builds the "="-prefixed symbol descriptor used by
// quote_add_symbols and resolve_symbol.
func resolvedSymbolRef(symbol string) string {
	desc, _ := json.Marshal(symbolDescriptor{
		Adjustment: "splits",
		Symbol:     symbol,
	})
	return "=" + string(desc)
}

// handshakeMessages is the fixed session setup sequence. Order matters: the
// server associates subsequent symbol and series messages with the most
// recently created session of the matching kind.
func handshakeMessages(s session, authToken string) []wireMessage {
	fields := make([]interface{}, 0, len(quoteFields)+1)
	fields = append(fields, s.quote)
	for _, f := range quoteFields {
		fields = append(fields, f)
	}
	return []wireMessage{
		{method: "set_auth_token", params: []interface{}{authToken}},
		{method: "set_locale", params: []interface{}{"en", "US"}},
		{method: "chart_create_session", params: []interface{}{s.chart, ""}},
		{method: "quote_create_session", params: []interface{}{s.quote}},
		{method: "quote_set_fields", params: fields},
		{method: "quote_hibernate_all", params: []interface{}{s.quote}},
	}
}

// subscribeMessages attaches the subscription's symbol, series and studies
// to a session. studies must be ordered like sub.Indicators; the sequence is
// replayed verbatim (modulo fresh session ids) after a reconnect.
func subscribeMessages(s session, sub Subscription, studies []json.RawMessage) []wireMessage {
	ref := resolvedSymbolRef(sub.Symbol)
	msgs := []wireMessage{
		{method: "quote_add_symbols", params: []interface{}{s.quote, ref}},
		{method: "resolve_symbol", params: []interface{}{s.chart, symbolRef, ref}},
		{method: "create_series", params: []interface{}{
			s.chart, seriesID, "s1", symbolRef, sub.resolution(), sub.BarCount, "",
		}},
		{method: "quote_fast_symbols", params: []interface{}{s.quote, sub.Symbol}},
	}
	for _, study := range studies {
		msgs = append(msgs,
			wireMessage{method: "create_study", rawParams: study},
			wireMessage{method: "quote_hibernate_all", params: []interface{}{s.quote}},
		)
	}
	return msgs
}
