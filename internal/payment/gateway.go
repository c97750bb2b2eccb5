// Package payment drives charges and hosted checkout sessions through an
// external gateway.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrDeclined        = errors.New("payment declined")
	ErrSessionNotFound = errors.New("checkout session not found")
)

// Gateway is the wire-level contract of a payment processor. Amounts are in
// minor currency units.
type Gateway interface {
	Charge(ctx context.Context, amountCents int64, currency, token string) (Charge, error)
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	GetSession(ctx context.Context, id string) (SessionStatus, error)
}

type Charge struct {
	Reference string
}

type Session struct {
	ID  string
	URL string
}

type SessionStatus struct {
	ID       string
	Paid     bool
	Metadata map[string]string
}

type SessionLine struct {
	Name        string
	Description string
	UnitCents   int64
	Quantity    int64
}

type SessionRequest struct {
	Currency   string
	Lines      []SessionLine
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
	// Destination and ApplicationFeeCents are set together for marketplace splits.
	Destination         string
	ApplicationFeeCents int64
}

// ToCents converts an amount to minor units, rounding half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
