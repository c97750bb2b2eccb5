package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const MetadataOrderID = "order_id"

const maxDescriptionLen = 500

// CheckoutItem is one priced line shown on the hosted payment page.
type CheckoutItem struct {
	Name      string
	Size      *string
	Options   *string
	UnitPrice decimal.Decimal
	Quantity  int
}

type Checkout struct {
	OrderID  int64
	Total    decimal.Decimal
	Currency string
	Items    []CheckoutItem
}

type Orchestrator struct {
	gw         Gateway
	log        *slog.Logger
	feePercent decimal.Decimal
	timeout    time.Duration
}

func NewOrchestrator(gw Gateway, log *slog.Logger, feePercent float64, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Orchestrator{
		gw:         gw,
		log:        log,
		feePercent: decimal.NewFromFloat(feePercent),
		timeout:    timeout,
	}
}

// Charge captures amount with a client-supplied token. A declined payment
// returns an error wrapping ErrDeclined.
func (o *Orchestrator) Charge(ctx context.Context, amount decimal.Decimal, currency, token string) (Charge, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	ch, err := o.gw.Charge(ctx, ToCents(amount), currency, token)
	if err != nil {
		o.log.WarnContext(ctx, "charge failed", "amount", amount.StringFixed(2), "currency", currency, "err", err)
		return Charge{}, err
	}
	return ch, nil
}

// PlatformFee is the share of total kept by the platform, in minor units,
// rounded down.
func (o *Orchestrator) PlatformFee(total decimal.Decimal) int64 {
	return decimal.NewFromInt(ToCents(total)).
		Mul(o.feePercent).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

// OpenSession starts a hosted payment session for an already persisted
// order. returnURL is the customer-facing base URL the gateway sends the
// customer back to. When recipient is non-empty the charge is split: the
// platform fee stays with the platform and the rest goes to recipient.
func (o *Orchestrator) OpenSession(ctx context.Context, co Checkout, returnURL string, recipient *string) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	base := strings.TrimRight(returnURL, "/")
	req := SessionRequest{
		Currency:   co.Currency,
		SuccessURL: base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  fmt.Sprintf("%s/checkout/cancel?order_id=%d", base, co.OrderID),
		Metadata:   map[string]string{MetadataOrderID: strconv.FormatInt(co.OrderID, 10)},
		Lines:      make([]SessionLine, 0, len(co.Items)),
	}
	if recipient != nil && *recipient != "" {
		req.Destination = *recipient
		req.ApplicationFeeCents = o.PlatformFee(co.Total)
	}
	for _, it := range co.Items {
		req.Lines = append(req.Lines, SessionLine{
			Name:        it.Name,
			Description: describe(it),
			UnitCents:   ToCents(it.UnitPrice),
			Quantity:    int64(it.Quantity),
		})
	}

	s, err := o.gw.CreateSession(ctx, req)
	if err != nil {
		return Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	o.log.InfoContext(ctx, "checkout session opened",
		"order_id", co.OrderID, "session_id", s.ID, "split", req.Destination != "", "fee_cents", req.ApplicationFeeCents)
	return s, nil
}

func (o *Orchestrator) GetSessionStatus(ctx context.Context, ref string) (SessionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	st, err := o.gw.GetSession(ctx, ref)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("get checkout session: %w", err)
	}
	return st, nil
}

func describe(it CheckoutItem) string {
	d := it.Name
	if it.Size != nil && *it.Size != "" {
		d += " (" + *it.Size + ")"
	}
	if it.Options != nil && *it.Options != "" {
		d += " + " + *it.Options
	}
	if utf8.RuneCountInString(d) > maxDescriptionLen {
		d = string([]rune(d)[:maxDescriptionLen])
	}
	return d
}
