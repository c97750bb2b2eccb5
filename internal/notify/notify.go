// Package notify delivers short customer messages (SMS) without blocking the
// request that triggered them.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Message is the payload handed to a transport.
type Message struct {
	Phone   string    `json:"phone"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Notifier is what the order workflow depends on.
type Notifier interface {
	Notify(ctx context.Context, phone, message string)
}

// Dispatcher sends every message on its own goroutine. Failures are logged
// and dropped.
type Dispatcher struct {
	sender  Sender
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(sender Sender, log *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sender: sender, log: log, timeout: timeout}
}

// Notify returns immediately. The send keeps the values of ctx but not its
// cancellation.
func (d *Dispatcher) Notify(ctx context.Context, phone, message string) {
	m := Message{Phone: phone, Message: message, SentAt: time.Now().UTC()}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notification panicked", "phone", phone, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, m); err != nil {
			d.log.WarnContext(ctx, "notification failed", "phone", phone, "err", err)
			return
		}
		d.log.DebugContext(ctx, "notification sent", "phone", phone)
	}()
}

// Wait blocks until every in-flight send has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// LogSender writes messages to the logger instead of a gateway.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, m Message) error {
	s.Log.InfoContext(ctx, "sms", "phone", m.Phone, "message", m.Message)
	return nil
}
