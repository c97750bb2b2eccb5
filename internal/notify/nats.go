package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// NATSSender publishes messages to a subject consumed by the SMS worker.
type NATSSender struct {
	nc      *nats.Conn
	subject string
}

func NewNATSSender(nc *nats.Conn, subject string) *NATSSender {
	return &NATSSender{nc: nc, subject: subject}
}

func (s *NATSSender) Send(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: s.subject,
		Header:  nats.Header{},
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := s.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", s.subject, err)
	}
	return nil
}
