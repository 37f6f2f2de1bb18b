package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
)

// msgPublisher is the JetStream call the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher implements ports.EventPublisher using NATS JetStream. Publishes
// pass through a circuit breaker so a stalled broker fails fast.
type Publisher struct {
	conn    *nats.Conn
	js      msgPublisher
	breaker *gobreaker.CircuitBreaker[*nats.PubAck]
}

// NewPublisher connects to NATS, enables JetStream and ensures the streams.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	p := newPublisher(js)
	p.conn = conn
	return p, nil
}

func newPublisher(js msgPublisher) *Publisher {
	return &Publisher{js: js, breaker: NewBreaker("nats-publisher")}
}

// NewBreaker trips after 5 consecutive failures and probes again after 30s.
func NewBreaker(name string) *gobreaker.CircuitBreaker[*nats.PubAck] {
	return gobreaker.NewCircuitBreaker[*nats.PubAck](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func (p *Publisher) PublishZoneCreated(ctx context.Context, zone *domain.GreenZone) error {
	return p.publish(ctx, SubjectZoneCreated+"."+zone.ID, zone.ID, zone)
}

func (p *Publisher) PublishZoneVerified(ctx context.Context, v *domain.Verification) error {
	return p.publish(ctx, SubjectZoneVerified+"."+v.ZoneID, v.ID, v)
}

func (p *Publisher) PublishCommunityCreated(ctx context.Context, c *domain.Community) error {
	return p.publish(ctx, SubjectCommunityCreated+"."+c.ID, c.ID, c)
}

func (p *Publisher) publish(ctx context.Context, subject, msgID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	// JetStream drops duplicates with the same ID inside the dedupe window.
	msg.Header.Set(nats.MsgIdHdr, msgID)

	_, err = p.breaker.Execute(func() (*nats.PubAck, error) {
		return p.js.PublishMsg(msg, nats.Context(ctx))
	})

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.EventsPublished.WithLabelValues(subjectRoot(subject), result).Inc()
	return err
}

// BreakerState reports the circuit breaker state for health output.
func (p *Publisher) BreakerState() string {
	return p.breaker.State().String()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// subjectRoot strips the entity ID so metric labels stay bounded.
func subjectRoot(subject string) string {
	if i := strings.LastIndexByte(subject, '.'); i > 0 {
		return subject[:i]
	}
	return subject
}
