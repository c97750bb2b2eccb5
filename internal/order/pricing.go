package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Price turns a validated cart into order line snapshots and the exact order
// total. No rounding happens here; amounts are rounded to cents only where
// they leave the system.
func Price(cart *ValidatedCart) ([]Line, decimal.Decimal) {
	lines := make([]Line, 0, len(cart.Lines))
	total := decimal.Zero

	for _, vl := range cart.Lines {
		unit := vl.Item.Price
		var size *string
		if vl.Size != nil {
			unit = vl.Size.Price
			name := vl.Size.Name
			size = &name
		}

		var options *string
		if len(vl.Options) > 0 {
			names := make([]string, 0, len(vl.Options))
			for _, opt := range vl.Options {
				unit = unit.Add(opt.Price)
				names = append(names, opt.Name)
			}
			joined := strings.Join(names, ", ")
			options = &joined
		}

		line := Line{
			MenuItemID:      vl.Item.ID,
			ItemName:        vl.Item.Name,
			UnitPrice:       unit,
			Quantity:        vl.Quantity,
			SelectedSize:    size,
			SelectedOptions: options,
		}
		total = total.Add(line.Total())
		lines = append(lines, line)
	}
	return lines, total
}
