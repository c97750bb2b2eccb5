package order

import (
	"errors"
	"fmt"

	"github.com/MikeMC777/foodtruck-orders/internal/menu"
	"github.com/MikeMC777/foodtruck-orders/internal/payment"
)

var (
	ErrNotFound = errors.New("order not found")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 999")
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemNotOnTruck  = errors.New("menu item does not belong to truck")
	ErrSizeRequired    = errors.New("size is required")
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidOption   = errors.New("invalid option")
	ErrTruckClosed     = errors.New("truck is not accepting orders")
	ErrTotalTooLarge   = errors.New("order total too large")

	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSessionMetadata   = errors.New("invalid session metadata")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("status changed concurrently")
)

// CartError ties a cart rule violation to the ids that caused it.
type CartError struct {
	Err      error
	ItemID   int64
	SizeID   int64
	OptionID int64
}

func (e *CartError) Error() string {
	switch {
	case e.OptionID != 0:
		return fmt.Sprintf("%v %d for item %d", e.Err, e.OptionID, e.ItemID)
	case e.SizeID != 0:
		return fmt.Sprintf("%v %d for item %d", e.Err, e.SizeID, e.ItemID)
	case e.ItemID != 0:
		return fmt.Sprintf("%v: item %d", e.Err, e.ItemID)
	}
	return e.Err.Error()
}

func (e *CartError) Unwrap() error { return e.Err }

// FieldError reports a malformed request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

func (e *FieldError) Unwrap() error { return ErrInvalidRequest }

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPayment
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPayment:
		return "payment"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	}
	return "internal"
}

// KindOf classifies err for callers that map errors onto a transport.
// Anything not recognised is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, menu.ErrTruckNotFound),
		errors.Is(err, payment.ErrSessionNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrItemNotOnTruck),
		errors.Is(err, ErrSizeRequired),
		errors.Is(err, ErrInvalidSize),
		errors.Is(err, ErrInvalidOption),
		errors.Is(err, ErrTruckClosed),
		errors.Is(err, ErrTotalTooLarge),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrUnknownStatus),
		errors.Is(err, ErrSessionMetadata):
		return KindValidation
	case errors.Is(err, ErrPaymentFailed),
		errors.Is(err, ErrPaymentIncomplete),
		errors.Is(err, payment.ErrDeclined):
		return KindPayment
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	}
	return KindInternal
}
