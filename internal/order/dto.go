package order

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CartLine payload of one cart entry.
// swagger:model CartLine
type CartLine struct {
	MenuItemID int64   `json:"menu_item_id" example:"12"`
	Quantity   int     `json:"quantity"     example:"2" minimum:"1" maximum:"999"`
	SizeID     *int64  `json:"size_id,omitempty"    example:"3"`
	OptionIDs  []int64 `json:"option_ids,omitempty"`
}

// PlaceOrderRequest payload of a direct-charge order.
// swagger:model PlaceOrderRequest
type PlaceOrderRequest struct {
	TruckID       int64      `json:"truck_id"       validate:"gt=0"             example:"1"`
	CustomerName  string     `json:"customer_name"  validate:"required,max=100" example:"John"`
	CustomerPhone string     `json:"customer_phone" validate:"required,max=32"  example:"+15550100"`
	PaymentToken  string     `json:"payment_token"  validate:"required"         example:"pm_card_visa"`
	Items         []CartLine `json:"items"`
}

// CheckoutRequest payload of a hosted checkout session.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	TruckID       int64      `json:"truck_id"       validate:"gt=0"             example:"1"`
	CustomerName  string     `json:"customer_name"  validate:"required,max=100" example:"John"`
	CustomerPhone string     `json:"customer_phone" validate:"required,max=32"  example:"+15550100"`
	Items         []CartLine `json:"items"`
}

// VerifyCheckoutRequest payload presented after the hosted payment page.
// swagger:model VerifyCheckoutRequest
type VerifyCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required" example:"cs_test_a1b2c3"`
}

// UpdateStatusRequest payload of a vendor status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"cooking"`
}

// OrderResult identifies a created or verified order.
// swagger:model OrderResult
type OrderResult struct {
	OrderID      int64  `json:"order_id"`
	TrackingCode string `json:"tracking_code"`
}

// CheckoutResult carries the hosted payment page to redirect to.
// swagger:model CheckoutResult
type CheckoutResult struct {
	URL          string `json:"url"`
	OrderID      int64  `json:"order_id"`
	TrackingCode string `json:"tracking_code"`
}

// OrderView is the public representation of an order.
// swagger:model OrderView
type OrderView struct {
	ID            int64      `json:"id"`
	TruckID       int64      `json:"truck_id"`
	TrackingCode  string     `json:"tracking_code"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	TotalAmount   string     `json:"total_amount" example:"22.00"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	Items         []LineView `json:"items"`
}

// LineView is the public representation of an order line.
// swagger:model LineView
type LineView struct {
	ItemName        string  `json:"item_name"`
	Quantity        int     `json:"quantity"`
	Price           string  `json:"price" example:"11.00"`
	SelectedSize    *string `json:"selected_size,omitempty"`
	SelectedOptions *string `json:"selected_options,omitempty"`
}

func NewOrderView(o *Order) OrderView {
	v := OrderView{
		ID:            o.ID,
		TruckID:       o.TruckID,
		TrackingCode:  o.TrackingCode,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   o.Total.StringFixed(2),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		Items:         make([]LineView, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		v.Items = append(v.Items, LineView{
			ItemName:        l.ItemName,
			Quantity:        l.Quantity,
			Price:           l.UnitPrice.StringFixed(2),
			SelectedSize:    l.SelectedSize,
			SelectedOptions: l.SelectedOptions,
		})
	}
	return v
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRequest runs struct validation and reports the first failing field.
func checkRequest(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &FieldError{Field: fe.Field(), Message: "failed on '" + fe.Tag() + "'"}
	}
	return err
}
