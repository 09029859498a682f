// Package nats mirrors connection lifecycle events onto NATS subjects
// (§3.4) so external presence/ops tooling can observe session churn
// without polling the simulation process. Grounded on
// go-server/pkg/nats/client.go, trimmed to the one-way fire-and-forget
// publish path this bridge needs.
package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/TimonPost/net-sync/postal"
)

const (
	subjectConnected    = "net-sync.events.connected"
	subjectDisconnected = "net-sync.events.disconnected"
)

// eventPayload is the JSON body published for each NetworkEvent.
type eventPayload struct {
	ClientID postal.ClientId `json:"client_id"`
	Addr     string          `json:"addr"`
}

// Mirror publishes postal.NetworkEvent occurrences onto NATS subjects.
type Mirror struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// Connect dials url and returns a Mirror. Returns (nil, nil) when url is
// empty so a server can run without an event bus.
func Connect(url string, logger zerolog.Logger) (*Mirror, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats: disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats: reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error().Err(err).Msg("nats: async error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: failed to connect: %w", err)
	}

	return &Mirror{conn: conn, logger: logger}, nil
}

// Publish mirrors a single NetworkEvent onto its subject. Fire-and-forget:
// publish never blocks on an ack, so it never becomes a suspension point
// in the single-threaded simulation loop.
func (m *Mirror) Publish(event postal.NetworkEvent) {
	subject := subjectConnected
	if event.Kind == postal.Disconnected {
		subject = subjectDisconnected
	}

	data, err := json.Marshal(eventPayload{ClientID: event.ClientID, Addr: event.Addr.String()})
	if err != nil {
		m.logger.Error().Err(err).Msg("nats: failed to marshal event payload")
		return
	}

	if err := m.conn.Publish(subject, data); err != nil {
		m.logger.Error().Err(err).Str("subject", subject).Msg("nats: publish failed")
	}
}

// PublishAll mirrors every event in events, in order.
func (m *Mirror) PublishAll(events []postal.NetworkEvent) {
	for _, event := range events {
		m.Publish(event)
	}
}

// Close drains and closes the underlying connection.
func (m *Mirror) Close() {
	m.conn.Close()
}
