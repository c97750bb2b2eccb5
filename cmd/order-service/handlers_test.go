package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/foodtruck-orders/internal/menu"
	"github.com/MikeMC777/foodtruck-orders/internal/notify"
	ord "github.com/MikeMC777/foodtruck-orders/internal/order"
	"github.com/MikeMC777/foodtruck-orders/internal/payment"
)

//
// ---------- STUBS & FAKES ----------
//

// stubRepo implements ord.Repository in memory.
type stubRepo struct {
	mu     sync.Mutex
	orders []*ord.Order
}

func (s *stubRepo) Insert(ctx context.Context, o *ord.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = int64(len(s.orders) + 1)
	cp := *o
	s.orders = append(s.orders, &cp)
	return nil
}

func (s *stubRepo) find(match func(*ord.Order) bool) (*ord.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if match(o) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ord.ErrNotFound
}

func (s *stubRepo) FindByTrackingCode(ctx context.Context, code string) (*ord.Order, error) {
	return s.find(func(o *ord.Order) bool { return o.TrackingCode == code })
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*ord.Order, error) {
	return s.find(func(o *ord.Order) bool { return o.ID == id })
}

func (s *stubRepo) CompareAndSetStatus(ctx context.Context, id int64, expected, next ord.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id && o.Status == expected {
			o.Status = next
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) SetPaymentRef(ctx context.Context, id int64, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			o.PaymentRef = &ref
			return nil
		}
	}
	return ord.ErrNotFound
}

func (s *stubRepo) ListByTruck(ctx context.Context, truckID int64, limit, offset int) ([]ord.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []ord.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].TruckID == truckID {
			out = append(out, *s.orders[i])
		}
	}
	return out, nil
}

// stubMenu serves one truck (id 1, vendor 7) with a burger and a sized pizza.
type stubMenu struct{}

func (stubMenu) GetMenuItems(ctx context.Context, ids []int64) ([]menu.Item, error) {
	all := map[int64]menu.Item{
		10: {ID: 10, TruckID: 1, Name: "Burger", Price: decimal.RequireFromString("10.00"),
			Options: []menu.Option{{ID: 1, Name: "Cheese", Price: decimal.RequireFromString("1.00")}}},
		20: {ID: 20, TruckID: 1, Name: "Pizza", Price: decimal.RequireFromString("9.00"),
			Sizes: []menu.Size{{ID: 5, Name: "S", Price: decimal.RequireFromString("8.00")}, {ID: 6, Name: "L", Price: decimal.RequireFromString("12.00")}}},
	}
	var out []menu.Item
	for _, id := range ids {
		if it, ok := all[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (stubMenu) GetTruck(ctx context.Context, id int64) (*menu.Truck, error) {
	if id != 1 {
		return nil, menu.ErrTruckNotFound
	}
	return &menu.Truck{ID: 1, VendorID: 7, Name: "Grill Wagon", IsActive: true}, nil
}

func (stubMenu) GetVendor(ctx context.Context, id int64) (*menu.Vendor, error) {
	acct := "acct_grill"
	return &menu.Vendor{ID: id, Name: "Grill Co", PayoutAccountID: &acct}, nil
}

// countingSender records how many messages went out.
type countingSender struct {
	mu sync.Mutex
	n  int
}

func (c *countingSender) Send(ctx context.Context, m notify.Message) error {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return nil
}

func (c *countingSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type testEnv struct {
	router     *gin.Engine
	repo       *stubRepo
	sms        *countingSender
	dispatcher *notify.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := &stubRepo{}
	sms := &countingSender{}
	dispatcher := notify.NewDispatcher(sms, log, 0)
	payments := payment.NewOrchestrator(payment.NewMockGateway(), log, 10, 0)

	svc, err := ord.NewService(repo, stubMenu{}, payments, dispatcher, log, ord.Options{
		Currency:  "usd",
		ReturnURL: "http://ui.test",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	hc, err := healthgo.New(healthgo.WithComponent(healthgo.Component{Name: "order-service", Version: "test"}))
	if err != nil {
		t.Fatalf("health: %v", err)
	}

	r := gin.New()
	registerRoutes(r, svc, hc, log)
	return &testEnv{router: r, repo: repo, sms: sms, dispatcher: dispatcher}
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	e.router.ServeHTTP(w, req)
	return w
}

const burgerOrder = `{"truck_id":1,"customer_name":"John","customer_phone":"+15550100","payment_token":%q,
	"items":[{"menu_item_id":10,"quantity":2,"option_ids":[1]}]}`

//
// ---------- TESTS ----------
//

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/orders", fmt.Sprintf(burgerOrder, "tok_visa"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res ord.OrderResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if res.OrderID == 0 || len(res.TrackingCode) != 32 {
		t.Fatalf("unexpected result %+v", res)
	}

	w = env.do(http.MethodGet, "/api/orders/"+res.TrackingCode, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var view ord.OrderView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if view.TotalAmount != "22.00" || view.Status != "paid" {
		t.Fatalf("total=%s status=%s, expected 22.00 paid", view.TotalAmount, view.Status)
	}

	env.dispatcher.Wait()
	if n := env.sms.count(); n != 1 {
		t.Fatalf("sms sent=%d, expected 1", n)
	}
}

func TestPlaceOrder_Declined(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/orders", fmt.Sprintf(burgerOrder, payment.DeclineTokenPrefix))
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status=%d body=%s (expected 402)", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `{"error":"payment declined"}` {
		t.Fatalf("body=%s, expected only the decline reason", got)
	}
	if len(env.repo.orders) != 0 {
		t.Fatalf("declined payment persisted %d orders", len(env.repo.orders))
	}
}

func TestPlaceOrder_SizeRequired(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := `{"truck_id":1,"customer_name":"John","customer_phone":"+15550100","payment_token":"tok_visa",
		"items":[{"menu_item_id":20,"quantity":1}]}`
	w := env.do(http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestPlaceOrder_BadInput(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if w := env.do(http.MethodPost, "/api/orders", `{"truck_id":`); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: status=%d", w.Code)
	}

	w := env.do(http.MethodPost, "/api/orders", `{"truck_id":1,"customer_phone":"1","payment_token":"t","items":[{"menu_item_id":10,"quantity":1}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Field string `json:"field"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Field != "customer_name" {
		t.Fatalf("field=%q, expected customer_name", resp.Field)
	}
}

func TestPlaceOrder_UnknownTruck(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := `{"truck_id":9,"customer_name":"John","customer_phone":"+15550100","payment_token":"tok_visa",
		"items":[{"menu_item_id":10,"quantity":1}]}`
	if w := env.do(http.MethodPost, "/api/orders", body); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestCheckout_VerifyTwice(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := `{"truck_id":1,"customer_name":"Jane","customer_phone":"+15550199","items":[{"menu_item_id":20,"quantity":1,"size_id":6}]}`
	w := env.do(http.MethodPost, "/api/checkout", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var co ord.CheckoutResult
	if err := json.Unmarshal(w.Body.Bytes(), &co); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	o, err := env.repo.FindByID(context.Background(), co.OrderID)
	if err != nil || o.Status != ord.StatusPending || o.PaymentRef == nil {
		t.Fatalf("expected pending order with session ref, got %+v err=%v", o, err)
	}

	verify := fmt.Sprintf(`{"session_id":%q}`, *o.PaymentRef)
	for i := 0; i < 2; i++ {
		w = env.do(http.MethodPost, "/api/checkout/verify", verify)
		if w.Code != http.StatusOK {
			t.Fatalf("verify #%d status=%d body=%s", i+1, w.Code, w.Body.String())
		}
	}

	o, _ = env.repo.FindByID(context.Background(), co.OrderID)
	if o.Status != ord.StatusPaid {
		t.Fatalf("status=%s, expected paid", o.Status)
	}
	env.dispatcher.Wait()
	if n := env.sms.count(); n != 1 {
		t.Fatalf("sms sent=%d, expected exactly 1", n)
	}
}

func TestVerify_UnknownSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if w := env.do(http.MethodPost, "/api/checkout/verify", `{"session_id":"cs_nope"}`); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/api/orders/ffffffffffffffffffffffffffffffff", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestListTruckOrders(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		if w := env.do(http.MethodPost, "/api/orders", fmt.Sprintf(burgerOrder, "tok_visa")); w.Code != http.StatusCreated {
			t.Fatalf("seed status=%d", w.Code)
		}
	}

	if w := env.do(http.MethodGet, "/api/trucks/1/orders", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no identity: status=%d (expected 401)", w.Code)
	}
	if w := env.do(http.MethodGet, "/api/trucks/1/orders", "", "X-Vendor-ID", "8"); w.Code != http.StatusForbidden {
		t.Fatalf("other vendor: status=%d (expected 403)", w.Code)
	}

	w := env.do(http.MethodGet, "/api/trucks/1/orders?limit=10&offset=0", "", "X-Vendor-ID", "7")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var views []ord.OrderView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(views) != 2 || views[0].ID != 2 {
		t.Fatalf("expected 2 orders newest first, got %+v", views)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if w := env.do(http.MethodPost, "/api/orders", fmt.Sprintf(burgerOrder, "tok_visa")); w.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", w.Code)
	}

	w := env.do(http.MethodPut, "/api/orders/1/status", `{"status":"cooking"}`, "X-Vendor-ID", "7")
	if w.Code != http.StatusOK {
		t.Fatalf("paid->cooking status=%d body=%s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPut, "/api/orders/1/status", `{"status":"completed"}`, "X-Vendor-ID", "7")
	if w.Code != http.StatusConflict {
		t.Fatalf("cooking->completed status=%d (expected 409)", w.Code)
	}
	w = env.do(http.MethodPut, "/api/orders/1/status", `{"status":"bogus"}`, "X-Vendor-ID", "7")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status=%d (expected 400)", w.Code)
	}
	w = env.do(http.MethodPut, "/api/orders/abc/status", `{"status":"ready"}`, "X-Vendor-ID", "7")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d (expected 400)", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
