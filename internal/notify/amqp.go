package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSender publishes persistent messages to a durable queue through the
// default exchange.
type AMQPSender struct {
	mu    sync.Mutex
	ch    *amqp.Channel
	queue string
}

// NewAMQPSender declares queue on ch and returns a sender bound to it.
func NewAMQPSender(ch *amqp.Channel, queue string) (*AMQPSender, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPSender{ch: ch, queue: queue}, nil
}

func (s *AMQPSender) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", s.queue, err)
	}
	return nil
}
