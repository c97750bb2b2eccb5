package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway talks to Stripe with a per-instance API client.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{api: sc}
}

func (g *StripeGateway) Charge(ctx context.Context, amountCents int64, currency, token string) (Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(token),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Charge{}, stripeErr("payment intent", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return Charge{Reference: pi.ID}, fmt.Errorf("%w: intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}
	return Charge{Reference: pi.ID}, nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(l.UnitCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(l.Name),
					Description: stripe.String(l.Description),
				},
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}
	if req.Destination != "" {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(req.ApplicationFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.Destination),
			},
		}
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, stripeErr("checkout session", err)
	}
	return Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return SessionStatus{}, stripeErr("checkout session", err)
	}
	return SessionStatus{
		ID:       s.ID,
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: s.Metadata,
	}, nil
}

func stripeErr(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.Type == stripe.ErrorTypeCard:
			return fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
		case se.HTTPStatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}
