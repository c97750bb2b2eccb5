package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID            int64           `json:"id"`
	TruckID       int64           `json:"truck_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	TrackingCode  string          `json:"tracking_code"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	PaymentRef    *string         `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	Lines         []Line          `json:"lines"`
}

// Line is a priced snapshot of one cart line. It is written together with
// its order and never updated, so later menu edits do not change it.
type Line struct {
	MenuItemID      int64           `json:"menu_item_id"`
	ItemName        string          `json:"item_name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	SelectedSize    *string         `json:"selected_size,omitempty"`
	SelectedOptions *string         `json:"selected_options,omitempty"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal re-derives an order total from persisted snapshots.
func LinesTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// NewTrackingCode returns a random, URL-safe public identifier (32 hex chars).
func NewTrackingCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Identity is the authenticated vendor acting on vendor-only operations.
type Identity struct {
	VendorID int64
}
