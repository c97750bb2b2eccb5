package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DeclineTokenPrefix marks tokens the mock gateway refuses.
const DeclineTokenPrefix = "tok_fail"

// MockGateway approves every charge and session unless the token starts
// with DeclineTokenPrefix. Sessions are kept in memory and report paid.
type MockGateway struct {
	mu       sync.Mutex
	sessions map[string]SessionRequest
}

func NewMockGateway() *MockGateway {
	return &MockGateway{sessions: make(map[string]SessionRequest)}
}

func (g *MockGateway) Charge(_ context.Context, amountCents int64, currency, token string) (Charge, error) {
	if strings.HasPrefix(token, DeclineTokenPrefix) {
		return Charge{}, fmt.Errorf("%w: card refused", ErrDeclined)
	}
	return Charge{Reference: "mock_pi_" + uuid.NewString()}, nil
}

func (g *MockGateway) CreateSession(_ context.Context, req SessionRequest) (Session, error) {
	id := "mock_cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	g.mu.Lock()
	g.sessions[id] = req
	g.mu.Unlock()

	return Session{
		ID:  id,
		URL: strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
	}, nil
}

func (g *MockGateway) GetSession(_ context.Context, id string) (SessionStatus, error) {
	g.mu.Lock()
	req, ok := g.sessions[id]
	g.mu.Unlock()
	if !ok {
		return SessionStatus{}, ErrSessionNotFound
	}
	return SessionStatus{ID: id, Paid: true, Metadata: req.Metadata}, nil
}
