package stream

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// The wire format is UTF-8 text: every protocol unit is framed as
// ~m~<length>~m~<payload> where <length> is the byte length of the payload.
// A single websocket message may carry several concatenated frames.
// Heartbeats use the same framing around a bare ~h~<counter> body.
var (
	heartbeatRe  = regexp.MustCompile(`^~m~\d+~m~~h~\d+$`)
	frameSplitRe = regexp.MustCompile(`~m~\d+~m~`)
)

// encodeFrame prepends the length header to payload. The length is the
// UTF-8 byte length, not the rune count, which matters for multi-byte
// symbol descriptions.
func encodeFrame(payload string) []byte {
	return []byte(fmt.Sprintf("~m~%d~m~%s", len(payload), payload))
}

// splitFrames returns the payloads of all frames concatenated in one
// websocket message, dropping empty matches.
func splitFrames(raw string) []string {
	parts := frameSplitRe.Split(raw, -1)
	payloads := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			payloads = append(payloads, p)
		}
	}
	return payloads
}

// isHeartbeat reports whether raw is exactly one framed ~h~ liveness unit.
func isHeartbeat(raw string) bool {
	return heartbeatRe.MatchString(raw)
}

// wireMessage is one outbound protocol message. rawParams, when set, is used
// verbatim as the "p" array; this carries the opaque create_study payloads.
type wireMessage struct {
	method    string
	params    []interface{}
	rawParams json.RawMessage
}

// encode serializes the message to a complete frame ready for the wire.
func (m wireMessage) encode() ([]byte, error) {
	var (
		body []byte
		err  error
	)
	if m.rawParams != nil {
		body, err = json.Marshal(struct {
			M string          `json:"m"`
			P json.RawMessage `json:"p"`
		}{m.method, m.rawParams})
	} else {
		body, err = json.Marshal(struct {
			M string        `json:"m"`
			P []interface{} `json:"p"`
		}{m.method, m.params})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.method, err)
	}
	return encodeFrame(string(body)), nil
}
