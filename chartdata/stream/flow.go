package stream

import (
	"context"
	"encoding/json"
	"fmt"
)

// StudyResolver supplies the opaque create_study parameter payload for a
// Pine script bound to a chart session and study slot. chartdata.Client
// implements it.
type StudyResolver interface {
	StudyParams(scriptID, scriptVersion, chartSession, slot string) (json.RawMessage, error)
}

// resolveStudies builds the create_study payloads for the subscription's
// indicators, in subscription order. The payloads embed the session's chart
// id, so they are rebuilt on every (re)connect.
func (c *client) resolveStudies(sess session) ([]json.RawMessage, error) {
	if len(c.sub.Indicators) == 0 {
		return nil, nil
	}
	if c.resolver == nil {
		return nil, ErrNoStudyResolver
	}
	studies := make([]json.RawMessage, 0, len(c.sub.Indicators))
	for i, ind := range c.sub.Indicators {
		params, err := c.resolver.StudyParams(ind.ID, ind.Version, sess.chart, StudySlot(i))
		if err != nil {
			return nil, fmt.Errorf("resolve study %s: %w", ind.ID, err)
		}
		studies = append(studies, params)
	}
	return studies, nil
}

// initialize sets up a freshly dialed connection: session handshake followed
// by the symbol, series and study subscription. The server does not ack
// these messages; problems surface on the read side as protocol_error or
// critical_error packets.
func (c *client) initialize(ctx context.Context, conn conn, sess session) error {
	studies, err := c.resolveStudies(sess)
	if err != nil {
		return err
	}

	msgs := handshakeMessages(sess, c.authToken)
	msgs = append(msgs, subscribeMessages(sess, c.sub, studies)...)
	for _, m := range msgs {
		data, err := m.encode()
		if err != nil {
			return err
		}
		if err := conn.writeMessage(ctx, data); err != nil {
			return fmt.Errorf("write %s message: %w", m.method, err)
		}
	}
	return nil
}
