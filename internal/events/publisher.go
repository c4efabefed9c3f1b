package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"usercenter/internal/domain"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type NatsPublisher struct {
	conn   Conn
	prefix string
}

var _ domain.EventPublisher = (*NatsPublisher)(nil)

func NewNatsPublisher(natsURL, prefix string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("usercenter"))
	if err != nil {
		return nil, err
	}
	return NewPublisherWithConn(nc, prefix), nil
}

func NewPublisherWithConn(conn Conn, prefix string) *NatsPublisher {
	return &NatsPublisher{conn: conn, prefix: prefix}
}

// Subject is "<prefix>.<event type>", e.g. "usercenter.user.banned".
func (p *NatsPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NatsPublisher) PublishUserEvent(_ context.Context, evt domain.UserEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.Type, err)
	}
	if err := p.conn.Publish(p.Subject(evt.Type), data); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.Type, err)
	}
	return nil
}

func (p *NatsPublisher) Close() error { return p.conn.Drain() }

// Noop is used when no NATS url is configured.
type Noop struct{}

func (Noop) PublishUserEvent(context.Context, domain.UserEvent) error { return nil }
