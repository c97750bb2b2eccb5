package order

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/foodtruck-orders/internal/menu"
	"github.com/MikeMC777/foodtruck-orders/internal/payment"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

const (
	truckID  int64 = 1
	vendorID int64 = 7
)

// Burger: 10.00, no sizes, Cheese +1.00, Bacon +2.50.
// Pizza: sizes S=8.00 and L=12.00, Olives +0.75.
// Taco belongs to another truck.
func testMenu() []menu.Item {
	return []menu.Item{
		{
			ID: 10, CategoryID: 100, TruckID: truckID, Name: "Burger", Price: dec("10.00"),
			Options: []menu.Option{
				{ID: 1, Name: "Cheese", Section: "Extras", Price: dec("1.00")},
				{ID: 2, Name: "Bacon", Section: "Extras", Price: dec("2.50")},
			},
		},
		{
			ID: 20, CategoryID: 100, TruckID: truckID, Name: "Pizza", Price: dec("9.00"),
			Sizes: []menu.Size{
				{ID: 5, Name: "S", Price: dec("8.00")},
				{ID: 6, Name: "L", Price: dec("12.00")},
			},
			Options: []menu.Option{{ID: 3, Name: "Olives", Section: "Toppings", Price: dec("0.75")}},
		},
		{ID: 30, CategoryID: 200, TruckID: 2, Name: "Taco", Price: dec("3.00")},
	}
}

type memMenu struct {
	items   []menu.Item
	trucks  map[int64]*menu.Truck
	vendors map[int64]*menu.Vendor
}

func newMemMenu() *memMenu {
	return &memMenu{
		items: testMenu(),
		trucks: map[int64]*menu.Truck{
			truckID: {ID: truckID, VendorID: vendorID, Name: "Grill Wagon", IsActive: true},
			2:       {ID: 2, VendorID: 8, Name: "Taco Stop", IsActive: true},
			3:       {ID: 3, VendorID: vendorID, Name: "Parked", IsActive: false},
		},
		vendors: map[int64]*menu.Vendor{
			vendorID: {ID: vendorID, Name: "Grill Co", PayoutAccountID: ptr("acct_grill")},
		},
	}
}

func (m *memMenu) GetMenuItems(_ context.Context, ids []int64) ([]menu.Item, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []menu.Item
	for _, it := range m.items {
		if want[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memMenu) GetTruck(_ context.Context, id int64) (*menu.Truck, error) {
	t, ok := m.trucks[id]
	if !ok {
		return nil, menu.ErrTruckNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memMenu) GetVendor(_ context.Context, id int64) (*menu.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return nil, menu.ErrVendorNotFound
	}
	cp := *v
	return &cp, nil
}

// memOrders is an in-memory Repository with the same conditional update
// semantics as the Postgres store.
type memOrders struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*Order
	insertErr error
	dupes     int
}

func newMemOrders() *memOrders { return &memOrders{byID: make(map[int64]*Order)} }

func (r *memOrders) Insert(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if r.dupes > 0 {
		r.dupes--
		return ErrDuplicateTrackingCode
	}
	for _, e := range r.byID {
		if e.TrackingCode == o.TrackingCode {
			return ErrDuplicateTrackingCode
		}
	}
	r.nextID++
	o.ID = r.nextID
	cp := *o
	cp.Lines = append([]Line(nil), o.Lines...)
	r.byID[o.ID] = &cp
	return nil
}

func (r *memOrders) FindByTrackingCode(_ context.Context, code string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if o.TrackingCode == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memOrders) FindByID(_ context.Context, id int64) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrders) CompareAndSetStatus(_ context.Context, id int64, expected, next Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = next
	return true, nil
}

func (r *memOrders) SetPaymentRef(_ context.Context, id int64, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentRef = &ref
	return nil
}

func (r *memOrders) ListByTruck(_ context.Context, truckID int64, _, _ int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.byID {
		if o.TruckID == truckID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memOrders) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type fakePayments struct {
	chargeErr error
	charged   []decimal.Decimal
	sessions  map[string]payment.SessionStatus
	opened    []payment.Checkout
	recipient *string
}

func newFakePayments() *fakePayments {
	return &fakePayments{sessions: make(map[string]payment.SessionStatus)}
}

func (p *fakePayments) Charge(_ context.Context, amount decimal.Decimal, _, _ string) (payment.Charge, error) {
	if p.chargeErr != nil {
		return payment.Charge{}, p.chargeErr
	}
	p.charged = append(p.charged, amount)
	return payment.Charge{Reference: fmt.Sprintf("pi_%d", len(p.charged))}, nil
}

func (p *fakePayments) OpenSession(_ context.Context, co payment.Checkout, returnURL string, recipient *string) (payment.Session, error) {
	p.opened = append(p.opened, co)
	p.recipient = recipient
	id := fmt.Sprintf("cs_%d", co.OrderID)
	p.sessions[id] = payment.SessionStatus{
		ID:       id,
		Metadata: map[string]string{payment.MetadataOrderID: fmt.Sprint(co.OrderID)},
	}
	return payment.Session{ID: id, URL: returnURL + "/pay/" + id}, nil
}

func (p *fakePayments) GetSessionStatus(_ context.Context, ref string) (payment.SessionStatus, error) {
	st, ok := p.sessions[ref]
	if !ok {
		return payment.SessionStatus{}, payment.ErrSessionNotFound
	}
	return st, nil
}

func (p *fakePayments) markPaid(ref string) {
	st := p.sessions[ref]
	st.Paid = true
	p.sessions[ref] = st
}

type sent struct{ phone, message string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) Notify(_ context.Context, phone, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{phone, message})
}

func (n *recordingNotifier) messages() []sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sent(nil), n.sent...)
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
