package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func paidMessage(o *Order) string {
	return fmt.Sprintf("Order #%d received! Total: %s. Track here: /orders/%s", o.ID, money(o.Total), o.TrackingCode)
}

func verifiedMessage(o *Order) string {
	return fmt.Sprintf("Order #%d confirmed! Amt: %s. Track: /orders/%s", o.ID, money(o.Total), o.TrackingCode)
}

// statusMessage returns the customer text for a vendor-driven change, if any.
func statusMessage(o *Order, st Status) (string, bool) {
	switch st {
	case StatusCooking:
		return fmt.Sprintf("Order #%d is being prepared. Track: /orders/%s", o.ID, o.TrackingCode), true
	case StatusReady:
		return fmt.Sprintf("Order #%d is ready for pickup!", o.ID), true
	case StatusCancelled:
		return fmt.Sprintf("Order #%d was cancelled. Please contact the truck with any questions.", o.ID), true
	}
	return "", false
}
