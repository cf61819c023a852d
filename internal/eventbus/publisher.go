// Package eventbus publishes logo generation events to NATS.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	StreamName       = "BRANDKIT"
	SubjectGenerated = "brandkit.logo.generated"
	SubjectFailed    = "brandkit.logo.failed"
)

// GenerationEvent describes a finished generation run
type GenerationEvent struct {
	ID           string     `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	BrandKitID   *uuid.UUID `json:"brand_kit_id,omitempty"`
	BusinessName string     `json:"business_name"`
	Score        float64    `json:"score,omitempty"`
	Attempts     int        `json:"attempts"`
	Cached       bool       `json:"cached"`
	Error        string     `json:"error,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Publisher sends events over JetStream when available, core NATS otherwise.
// The zero value and a nil *Publisher drop every event.
type Publisher struct {
	conn   *nats.Conn
	send   func(subject string, data []byte, msgID string) error
	logger *zap.Logger
}

// Connect dials NATS and provisions the event stream.
func Connect(url string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("brandkit-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	p := &Publisher{conn: nc, logger: logger}

	js, err := nc.JetStream()
	if err == nil {
		_, err = js.StreamInfo(StreamName)
		if err != nil {
			_, err = js.AddStream(&nats.StreamConfig{
				Name:     StreamName,
				Subjects: []string{"brandkit.logo.>"},
				MaxAge:   7 * 24 * time.Hour,
			})
		}
	}
	if err != nil {
		logger.Warn("JetStream unavailable, publishing on core NATS", zap.Error(err))
		p.send = func(subject string, data []byte, _ string) error {
			return nc.Publish(subject, data)
		}
		return p, nil
	}

	p.send = func(subject string, data []byte, msgID string) error {
		_, err := js.Publish(subject, data, nats.MsgId(msgID))
		return err
	}
	logger.Info("NATS and JetStream initialized", zap.String("stream", StreamName))
	return p, nil
}

// Connected reports whether events are actually sent.
func (p *Publisher) Connected() bool {
	return p != nil && p.send != nil && (p.conn == nil || p.conn.IsConnected())
}

// PublishGenerated announces a successful generation.
func (p *Publisher) PublishGenerated(ctx context.Context, ev GenerationEvent) error {
	return p.publish(ctx, SubjectGenerated, ev)
}

// PublishFailed announces a generation that produced no logo.
func (p *Publisher) PublishFailed(ctx context.Context, ev GenerationEvent) error {
	return p.publish(ctx, SubjectFailed, ev)
}

func (p *Publisher) publish(ctx context.Context, subject string, ev GenerationEvent) error {
	if p == nil || p.send == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.send(subject, data, ev.ID); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
