package order

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/foodtruck-orders/internal/menu"
)

// Bounds of what order_items.quantity and orders.total_amount can hold.
const maxQuantity = 999

var maxOrderTotal = decimal.New(1, 8)

// ValidatedCart is a cart whose every line has been resolved against one
// menu snapshot. It is the only input the pricing engine accepts.
type ValidatedCart struct {
	TruckID int64
	Lines   []ValidatedLine
}

type ValidatedLine struct {
	Item     menu.Item
	Quantity int
	Size     *menu.Size
	Options  []menu.Option
}

// Validate checks cart lines against the authoritative items for truckID.
// It stops at the first violation and has no side effects.
func Validate(truckID int64, lines []CartLine, items []menu.Item) (*ValidatedCart, error) {
	if len(lines) == 0 {
		return nil, &CartError{Err: ErrEmptyCart}
	}

	byID := make(map[int64]menu.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	cart := &ValidatedCart{TruckID: truckID, Lines: make([]ValidatedLine, 0, len(lines))}
	for _, cl := range lines {
		if cl.Quantity <= 0 || cl.Quantity > maxQuantity {
			return nil, &CartError{Err: ErrInvalidQuantity, ItemID: cl.MenuItemID}
		}
		item, ok := byID[cl.MenuItemID]
		if !ok {
			return nil, &CartError{Err: ErrItemNotFound, ItemID: cl.MenuItemID}
		}
		if item.TruckID != truckID {
			return nil, &CartError{Err: ErrItemNotOnTruck, ItemID: item.ID}
		}

		vl := ValidatedLine{Item: item, Quantity: cl.Quantity}
		switch {
		case item.HasSizes() && cl.SizeID == nil:
			return nil, &CartError{Err: ErrSizeRequired, ItemID: item.ID}
		case cl.SizeID != nil:
			size, ok := item.Size(*cl.SizeID)
			if !ok {
				return nil, &CartError{Err: ErrInvalidSize, ItemID: item.ID, SizeID: *cl.SizeID}
			}
			vl.Size = &size
		}

		seen := make(map[int64]struct{}, len(cl.OptionIDs))
		for _, optID := range cl.OptionIDs {
			if _, dup := seen[optID]; dup {
				continue
			}
			seen[optID] = struct{}{}
			opt, ok := item.Option(optID)
			if !ok {
				return nil, &CartError{Err: ErrInvalidOption, ItemID: item.ID, OptionID: optID}
			}
			vl.Options = append(vl.Options, opt)
		}
		cart.Lines = append(cart.Lines, vl)
	}
	return cart, nil
}

// itemIDs lists the distinct menu item ids referenced by lines.
func itemIDs(lines []CartLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.MenuItemID]; ok {
			continue
		}
		seen[l.MenuItemID] = struct{}{}
		ids = append(ids, l.MenuItemID)
	}
	return ids
}
