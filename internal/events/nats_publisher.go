// Package events distributes committed domain events to external consumers:
// a JetStream stream for other services and a websocket hub for clients.
// Distribution is best-effort; the event row is already durable in the store.
package events

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"zkdex-backend/internal/metrics"
	"zkdex-backend/internal/models"
)

const (
	// DefaultStreamName is the JetStream stream holding the event feed.
	DefaultStreamName = "ZKDEX_EVENTS"

	subjectPrefix = "zkdex.events"
)

// NATSPublisher publishes domain events to JetStream, one subject per event
// kind under the zkdex.events prefix.
type NATSPublisher struct {
	conn       *nats.Conn
	js         nats.JetStreamContext
	streamName string
}

// NewNATSPublisher connects to the NATS server and makes sure the event
// stream exists.
func NewNATSPublisher(url, streamName string, timeout time.Duration) (*NATSPublisher, error) {
	if streamName == "" {
		streamName = DefaultStreamName
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := nats.Connect(url,
		nats.Timeout(timeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("[NATSPublisher] disconnected: %v", err)
			metrics.EventStreamConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATSPublisher] reconnected to %s", nc.ConnectedUrl())
			metrics.EventStreamConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open JetStream context: %w", err)
	}

	p := &NATSPublisher{conn: conn, js: js, streamName: streamName}
	if err := p.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}
	metrics.EventStreamConnectionStatus.Set(1)
	log.Printf("[NATSPublisher] connected, stream %s ready", streamName)
	return p, nil
}

func (p *NATSPublisher) ensureStream() error {
	if _, err := p.js.StreamInfo(p.streamName); err == nil {
		return nil
	}
	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:      p.streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", p.streamName, err)
	}
	return nil
}

// Publish sends one committed event to the stream. Failures are counted and
// logged; the caller has already durably recorded the event.
func (p *NATSPublisher) Publish(ctx context.Context, kind models.EventKind, payload []byte) {
	subject := fmt.Sprintf("%s.%s", subjectPrefix, kind)
	if _, err := p.js.Publish(subject, payload); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(kind)).Inc()
		log.Printf("[NATSPublisher] publish %s failed: %v", subject, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(kind)).Inc()
}

// Close closes the underlying connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
