package menu

import "github.com/shopspring/decimal"

// Truck is the selling unit a cart is placed against. Categories and items
// point back to it by id; it holds no references to them.
type Truck struct {
	ID       int64  `json:"id"`
	VendorID int64  `json:"vendor_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Vendor owns trucks. PayoutAccountID is the connected payment account that
// receives marketplace splits; nil until the vendor finishes onboarding.
type Vendor struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	PayoutAccountID *string `json:"payout_account_id,omitempty"`
}

type Size struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Option struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Section string          `json:"section"`
	Price   decimal.Decimal `json:"price"`
}

// Item is a menu entry as read for checkout. TruckID is resolved through the
// owning category when the item is loaded.
type Item struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"category_id"`
	TruckID    int64           `json:"truck_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Sizes      []Size          `json:"sizes"`
	Options    []Option        `json:"options"`
}

func (it *Item) HasSizes() bool { return len(it.Sizes) > 0 }

func (it *Item) Size(id int64) (Size, bool) {
	for _, s := range it.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

func (it *Item) Option(id int64) (Option, bool) {
	for _, o := range it.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
