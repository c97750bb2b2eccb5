package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/foodtruck-orders/internal/order"
	"github.com/MikeMC777/foodtruck-orders/internal/payment"
)

// ErrorResponse is the body of every failed request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func StatusOf(err error) int {
	switch order.KindOf(err) {
	case order.KindValidation:
		return http.StatusBadRequest
	case order.KindNotFound:
		return http.StatusNotFound
	case order.KindPayment:
		return http.StatusPaymentRequired
	case order.KindConflict:
		return http.StatusConflict
	case order.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// WriteError maps err onto a status code. Internal and payment errors are
// logged with the request id and answered with a generic message.
func WriteError(c *gin.Context, log *slog.Logger, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed",
			"rid", RequestIDFrom(c), "path", c.Request.URL.Path, "err", err)
		c.JSON(status, ErrorResponse{Error: "internal error"})
		return
	}
	if status == http.StatusPaymentRequired {
		log.WarnContext(c.Request.Context(), "payment rejected",
			"rid", RequestIDFrom(c), "path", c.Request.URL.Path, "err", err)
		c.JSON(status, ErrorResponse{Error: paymentMessage(err)})
		return
	}
	resp := ErrorResponse{Error: err.Error()}
	var fe *order.FieldError
	if errors.As(err, &fe) {
		resp.Field = fe.Field
	}
	c.JSON(status, resp)
}

func paymentMessage(err error) string {
	switch {
	case errors.Is(err, payment.ErrDeclined):
		return payment.ErrDeclined.Error()
	case errors.Is(err, order.ErrPaymentIncomplete):
		return order.ErrPaymentIncomplete.Error()
	}
	return order.ErrPaymentFailed.Error()
}
