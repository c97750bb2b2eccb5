package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/MikeMC777/foodtruck-orders/internal/menu"
	"github.com/MikeMC777/foodtruck-orders/internal/notify"
	"github.com/MikeMC777/foodtruck-orders/internal/payment"
)

const instrumentation = "order-service"

// trackingCodeAttempts bounds retries after a tracking code collision.
const trackingCodeAttempts = 3

// Payments is the part of the payment orchestrator the workflow uses.
type Payments interface {
	Charge(ctx context.Context, amount decimal.Decimal, currency, token string) (payment.Charge, error)
	OpenSession(ctx context.Context, co payment.Checkout, returnURL string, recipient *string) (payment.Session, error)
	GetSessionStatus(ctx context.Context, ref string) (payment.SessionStatus, error)
}

type Options struct {
	Currency string
	// ReturnURL is the customer UI base the hosted payment page returns to.
	ReturnURL string
}

// Service runs the checkout workflow and the order lifecycle.
type Service struct {
	orders   Repository
	menus    menu.Repository
	pay      Payments
	notifier notify.Notifier
	log      *slog.Logger
	validate *validator.Validate
	opts     Options

	tracer        trace.Tracer
	placed        metric.Int64Counter
	paymentFailed metric.Int64Counter
	verified      metric.Int64Counter
}

func NewService(orders Repository, menus menu.Repository, pay Payments, n notify.Notifier, log *slog.Logger, opts Options) (*Service, error) {
	meter := otel.Meter(instrumentation)
	placed, err := meter.Int64Counter("orders.placed", metric.WithDescription("Orders persisted by any checkout flow"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("orders.payment_failed", metric.WithDescription("Charges or sessions the gateway rejected"))
	if err != nil {
		return nil, err
	}
	verified, err := meter.Int64Counter("checkout.verified", metric.WithDescription("Hosted sessions that moved an order to paid"))
	if err != nil {
		return nil, err
	}
	return &Service{
		orders:        orders,
		menus:         menus,
		pay:           pay,
		notifier:      n,
		log:           log,
		validate:      newValidator(),
		opts:          opts,
		tracer:        otel.Tracer(instrumentation),
		placed:        placed,
		paymentFailed: failed,
		verified:      verified,
	}, nil
}

// PlaceOrder charges the customer's token and only then persists the order
// as paid. A failed charge leaves nothing behind.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder", trace.WithAttributes(attribute.Int64("truck.id", req.TruckID)))
	defer span.End()

	if err := checkRequest(s.validate, req); err != nil {
		return OrderResult{}, fail(span, err)
	}
	_, lines, total, err := s.prepare(ctx, req.TruckID, req.Items)
	if err != nil {
		return OrderResult{}, fail(span, err)
	}

	ch, err := s.pay.Charge(ctx, total, s.opts.Currency, req.PaymentToken)
	if err != nil {
		s.paymentFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "direct")))
		return OrderResult{}, fail(span, fmt.Errorf("%w: %w", ErrPaymentFailed, err))
	}

	o := &Order{
		TruckID:       req.TruckID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Total:         total,
		Status:        StatusPaid,
		PaymentRef:    &ch.Reference,
		Lines:         lines,
	}
	// The money has moved; finish the write even if the caller went away.
	if err := s.insert(context.WithoutCancel(ctx), o); err != nil {
		s.log.ErrorContext(ctx, "charged order not persisted",
			"charge_ref", ch.Reference, "amount", total.StringFixed(2), "truck_id", req.TruckID, "err", err)
		return OrderResult{}, fail(span, fmt.Errorf("persist paid order: %w", err))
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "direct")))
	span.SetAttributes(attribute.Int64("order.id", o.ID))
	s.log.InfoContext(ctx, "order placed", "order_id", o.ID, "truck_id", o.TruckID, "total", total.StringFixed(2))
	s.notifier.Notify(ctx, o.CustomerPhone, paidMessage(o))

	return OrderResult{OrderID: o.ID, TrackingCode: o.TrackingCode}, nil
}

// CreateCheckoutSession persists a pending order and opens a hosted payment
// session for it. Payment is confirmed later by VerifyCheckout.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateCheckoutSession", trace.WithAttributes(attribute.Int64("truck.id", req.TruckID)))
	defer span.End()

	if err := checkRequest(s.validate, req); err != nil {
		return CheckoutResult{}, fail(span, err)
	}
	truck, lines, total, err := s.prepare(ctx, req.TruckID, req.Items)
	if err != nil {
		return CheckoutResult{}, fail(span, err)
	}

	o := &Order{
		TruckID:       req.TruckID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Total:         total,
		Status:        StatusPending,
		Lines:         lines,
	}
	if err := s.insert(ctx, o); err != nil {
		return CheckoutResult{}, fail(span, fmt.Errorf("persist pending order: %w", err))
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID))
	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "hosted")))

	var recipient *string
	vendor, err := s.menus.GetVendor(ctx, truck.VendorID)
	switch {
	case errors.Is(err, menu.ErrVendorNotFound):
		s.log.WarnContext(ctx, "truck has no vendor, charging without split", "truck_id", truck.ID, "vendor_id", truck.VendorID)
	case err != nil:
		return CheckoutResult{}, fail(span, fmt.Errorf("load vendor %d: %w", truck.VendorID, err))
	default:
		recipient = vendor.PayoutAccountID
	}

	sess, err := s.pay.OpenSession(ctx, checkoutFor(o, s.opts.Currency), s.opts.ReturnURL, recipient)
	if err != nil {
		s.paymentFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", "hosted")))
		s.log.WarnContext(ctx, "checkout session not opened, order left pending", "order_id", o.ID, "err", err)
		return CheckoutResult{}, fail(span, fmt.Errorf("%w: %w", ErrPaymentFailed, err))
	}
	if err := s.orders.SetPaymentRef(ctx, o.ID, sess.ID); err != nil {
		s.log.WarnContext(ctx, "session reference not recorded", "order_id", o.ID, "session_id", sess.ID, "err", err)
	}

	return CheckoutResult{URL: sess.URL, OrderID: o.ID, TrackingCode: o.TrackingCode}, nil
}

// VerifyCheckout confirms a hosted session. Repeated calls for the same paid
// session are harmless: only the call that moves the order out of pending
// notifies the customer.
func (s *Service) VerifyCheckout(ctx context.Context, sessionID string) (OrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.VerifyCheckout")
	defer span.End()

	if err := checkRequest(s.validate, VerifyCheckoutRequest{SessionID: sessionID}); err != nil {
		return OrderResult{}, fail(span, err)
	}
	st, err := s.pay.GetSessionStatus(ctx, sessionID)
	switch {
	case errors.Is(err, payment.ErrSessionNotFound):
		return OrderResult{}, fail(span, err)
	case err != nil:
		return OrderResult{}, fail(span, fmt.Errorf("%w: %w", ErrPaymentFailed, err))
	}
	if !st.Paid {
		return OrderResult{}, fail(span, ErrPaymentIncomplete)
	}
	orderID, err := strconv.ParseInt(st.Metadata[payment.MetadataOrderID], 10, 64)
	if err != nil || orderID <= 0 {
		return OrderResult{}, fail(span, fmt.Errorf("%w: %s=%q", ErrSessionMetadata, payment.MetadataOrderID, st.Metadata[payment.MetadataOrderID]))
	}
	span.SetAttributes(attribute.Int64("order.id", orderID))

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderResult{}, fail(span, err)
	}
	res := OrderResult{OrderID: o.ID, TrackingCode: o.TrackingCode}

	switch {
	case o.Status == StatusCancelled:
		return OrderResult{}, fail(span, fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, o.ID, o.Status))
	case o.Status.Reached(StatusPaid):
		return res, nil
	}

	ok, err := s.orders.CompareAndSetStatus(ctx, o.ID, StatusPending, StatusPaid)
	if err != nil {
		return OrderResult{}, fail(span, err)
	}
	if !ok {
		// Someone else moved it first. Only a cancellation is worth reporting.
		cur, err := s.orders.FindByID(ctx, o.ID)
		if err != nil {
			return OrderResult{}, fail(span, err)
		}
		if cur.Status == StatusCancelled {
			return OrderResult{}, fail(span, fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, o.ID, cur.Status))
		}
		s.log.DebugContext(ctx, "verification raced, already paid", "order_id", o.ID)
		return res, nil
	}

	o.Status = StatusPaid
	s.verified.Add(ctx, 1)
	s.log.InfoContext(ctx, "checkout verified", "order_id", o.ID, "session_id", sessionID)
	s.notifier.Notify(ctx, o.CustomerPhone, verifiedMessage(o))
	return res, nil
}

func (s *Service) GetOrder(ctx context.Context, trackingCode string) (OrderView, error) {
	if trackingCode == "" {
		return OrderView{}, ErrNotFound
	}
	o, err := s.orders.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return OrderView{}, err
	}
	return NewOrderView(o), nil
}

// ListTruckOrders returns a page of the truck's orders, newest first.
func (s *Service) ListTruckOrders(ctx context.Context, id Identity, truckID int64, limit, offset int) ([]OrderView, error) {
	if err := s.authorize(ctx, id, truckID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByTruck(ctx, truckID, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views, nil
}

// UpdateStatus applies a vendor-driven transition. Paid is never reachable
// here; it belongs to the payment flows.
func (s *Service) UpdateStatus(ctx context.Context, id Identity, orderID int64, next string) (OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateStatus", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if err := checkRequest(s.validate, UpdateStatusRequest{Status: next}); err != nil {
		return OrderView{}, fail(span, err)
	}
	st, err := ParseStatus(next)
	if err != nil {
		return OrderView{}, fail(span, err)
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderView{}, fail(span, err)
	}
	if err := s.authorize(ctx, id, o.TruckID); err != nil {
		return OrderView{}, fail(span, err)
	}

	if o.Status == st {
		return NewOrderView(o), nil
	}
	if o.Status.Terminal() {
		return OrderView{}, fail(span, fmt.Errorf("%w: order %d is already %s", ErrInvalidTransition, o.ID, o.Status))
	}
	if st == StatusPaid || !CanTransition(o.Status, st) {
		return OrderView{}, fail(span, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, st))
	}

	ok, err := s.orders.CompareAndSetStatus(ctx, o.ID, o.Status, st)
	if err != nil {
		return OrderView{}, fail(span, err)
	}
	if !ok {
		cur, err := s.orders.FindByID(ctx, o.ID)
		if err != nil {
			return OrderView{}, fail(span, err)
		}
		if cur.Status == st {
			s.log.DebugContext(ctx, "status update raced, already applied", "order_id", o.ID, "status", st)
			return NewOrderView(cur), nil
		}
		return OrderView{}, fail(span, fmt.Errorf("%w: order %d is now %s", ErrConflict, o.ID, cur.Status))
	}

	s.log.InfoContext(ctx, "order status changed", "order_id", o.ID, "from", o.Status, "to", st, "vendor_id", id.VendorID)
	o.Status = st
	if msg, ok := statusMessage(o, st); ok {
		s.notifier.Notify(ctx, o.CustomerPhone, msg)
	}
	return NewOrderView(o), nil
}

// prepare loads the truck and a menu snapshot, validates the cart against
// it and prices it.
func (s *Service) prepare(ctx context.Context, truckID int64, cart []CartLine) (*menu.Truck, []Line, decimal.Decimal, error) {
	if len(cart) == 0 {
		return nil, nil, decimal.Zero, &CartError{Err: ErrEmptyCart}
	}
	truck, err := s.menus.GetTruck(ctx, truckID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	if !truck.IsActive {
		return nil, nil, decimal.Zero, fmt.Errorf("%w: truck %d", ErrTruckClosed, truck.ID)
	}
	items, err := s.menus.GetMenuItems(ctx, itemIDs(cart))
	if err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("load menu: %w", err)
	}
	vc, err := Validate(truckID, cart, items)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	lines, total := Price(vc)
	if total.GreaterThanOrEqual(maxOrderTotal) {
		return nil, nil, decimal.Zero, fmt.Errorf("%w: %s", ErrTotalTooLarge, total.StringFixed(2))
	}
	return truck, lines, total, nil
}

func (s *Service) insert(ctx context.Context, o *Order) error {
	var err error
	for range trackingCodeAttempts {
		o.TrackingCode = NewTrackingCode()
		if err = s.orders.Insert(ctx, o); !errors.Is(err, ErrDuplicateTrackingCode) {
			return err
		}
	}
	return err
}

func (s *Service) authorize(ctx context.Context, id Identity, truckID int64) error {
	truck, err := s.menus.GetTruck(ctx, truckID)
	if err != nil {
		return err
	}
	if id.VendorID == 0 || truck.VendorID != id.VendorID {
		return fmt.Errorf("%w: truck %d", ErrForbidden, truckID)
	}
	return nil
}

func checkoutFor(o *Order, currency string) payment.Checkout {
	co := payment.Checkout{
		OrderID:  o.ID,
		Total:    o.Total,
		Currency: currency,
		Items:    make([]payment.CheckoutItem, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		co.Items = append(co.Items, payment.CheckoutItem{
			Name:      l.ItemName,
			Size:      l.SelectedSize,
			Options:   l.SelectedOptions,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return co
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
