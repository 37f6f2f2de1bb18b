package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// Subscriber consumes domain events from JetStream with durable consumers.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and enables JetStream.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeZoneVerified delivers zone.verified events to handler. Failed
// deliveries are redelivered up to 3 times.
func (s *Subscriber) SubscribeZoneVerified(ctx context.Context, durable string, handler func(ctx context.Context, v *domain.Verification) error) error {
	return s.subscribe(SubjectZoneVerified+".>", durable, func(data []byte) error {
		var v domain.Verification
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		return handler(ctx, &v)
	})
}

// SubscribeZoneCreated delivers zone.created events to handler.
func (s *Subscriber) SubscribeZoneCreated(ctx context.Context, durable string, handler func(ctx context.Context, z *domain.GreenZone) error) error {
	return s.subscribe(SubjectZoneCreated+".>", durable, func(data []byte) error {
		var z domain.GreenZone
		if err := json.Unmarshal(data, &z); err != nil {
			return err
		}
		return handler(ctx, &z)
	})
}

func (s *Subscriber) subscribe(subject, durable string, handle func([]byte) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handle(msg.Data); err != nil {
			slog.Warn("event handler failed", "subject", msg.Subject, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
