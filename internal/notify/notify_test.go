package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
	ctxs []context.Context
}

func (c *captureSender) Send(ctx context.Context, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	c.ctxs = append(c.ctxs, ctx)
	return c.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDispatcher_Sends(t *testing.T) {
	s := &captureSender{}
	d := NewDispatcher(s, discard(), time.Second)

	d.Notify(context.Background(), "+15550100", "hello")
	d.Notify(context.Background(), "+15550101", "world")
	d.Wait()

	require.Len(t, s.sent, 2)
	phones := []string{s.sent[0].Phone, s.sent[1].Phone}
	assert.ElementsMatch(t, []string{"+15550100", "+15550101"}, phones)
	assert.False(t, s.sent[0].SentAt.IsZero())
}

func TestDispatcher_SurvivesCancelledRequest(t *testing.T) {
	s := &captureSender{}
	d := NewDispatcher(s, discard(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Notify(ctx, "+15550100", "hello")
	d.Wait()

	require.Len(t, s.ctxs, 1)
	assert.NoError(t, s.ctxs[0].Err())
	_, hasDeadline := s.ctxs[0].Deadline()
	assert.True(t, hasDeadline)
}

func TestDispatcher_SwallowsErrors(t *testing.T) {
	s := &captureSender{err: errors.New("gateway down")}
	d := NewDispatcher(s, discard(), time.Second)

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), "+15550100", "hello")
		d.Wait()
	})
	assert.Len(t, s.sent, 1)
}

type panicSender struct{}

func (panicSender) Send(context.Context, Message) error { panic("boom") }

func TestDispatcher_RecoversPanic(t *testing.T) {
	d := NewDispatcher(panicSender{}, discard(), time.Second)
	assert.NotPanics(t, func() {
		d.Notify(context.Background(), "+15550100", "hello")
		d.Wait()
	})
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{Log: discard()}.Send(context.Background(), Message{Phone: "1", Message: "m"}))
}
