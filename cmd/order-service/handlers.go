package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	healthgo "github.com/hellofresh/health-go/v5"

	"github.com/MikeMC777/foodtruck-orders/internal/httpx"
	"github.com/MikeMC777/foodtruck-orders/internal/order"
)

// orderService is the workflow surface the handlers need.
type orderService interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (order.OrderResult, error)
	CreateCheckoutSession(ctx context.Context, req order.CheckoutRequest) (order.CheckoutResult, error)
	VerifyCheckout(ctx context.Context, sessionID string) (order.OrderResult, error)
	GetOrder(ctx context.Context, trackingCode string) (order.OrderView, error)
	ListTruckOrders(ctx context.Context, id order.Identity, truckID int64, limit, offset int) ([]order.OrderView, error)
	UpdateStatus(ctx context.Context, id order.Identity, orderID int64, next string) (order.OrderView, error)
}

func registerRoutes(r *gin.Engine, svc orderService, health *healthgo.Health, log *slog.Logger) {
	r.GET("/healthz", healthHandler(health))

	api := r.Group("/api")
	api.POST("/orders", placeOrderHandler(svc, log))
	api.GET("/orders/:code", getOrderHandler(svc, log))
	api.POST("/checkout", createCheckoutHandler(svc, log))
	api.POST("/checkout/verify", verifyCheckoutHandler(svc, log))

	vendor := api.Group("", httpx.Identity())
	vendor.GET("/trucks/:truckId/orders", listTruckOrdersHandler(svc, log))
	vendor.PUT("/orders/:id/status", updateStatusHandler(svc, log))
}

// placeOrderHandler godoc
//
//	@Summary		Place an order and charge it
//	@Description	Validates the cart against the truck's menu, charges the payment token and stores the order as paid.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		order.PlaceOrderRequest	true	"Order"
//	@Success		201		{object}	order.OrderResult
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		402		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Router			/api/orders [post]
func placeOrderHandler(svc orderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.ErrorResponse{Error: "invalid json"})
			return
		}
		res, err := svc.PlaceOrder(c.Request.Context(), req)
		if err != nil {
			httpx.WriteError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// createCheckoutHandler godoc
//
//	@Summary		Start a hosted checkout
//	@Description	Stores a pending order and returns the hosted payment page to redirect the customer to.
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			checkout	body		order.CheckoutRequest	true	"Cart"
//	@Success		200			{object}	order.CheckoutResult
//	@Failure		400			{object}	httpx.ErrorResponse
//	@Failure		402			{object}	httpx.ErrorResponse
//	@Failure		404			{object}	httpx.ErrorResponse
//	@Router			/api/checkout [post]
func createCheckoutHandler(svc orderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.ErrorResponse{Error: "invalid json"})
			return
		}
		res, err := svc.CreateCheckoutSession(c.Request.Context(), req)
		if err != nil {
			httpx.WriteError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// verifyCheckoutHandler godoc
//
//	@Summary		Confirm a hosted checkout
//	@Description	Marks the session's order as paid. Safe to call more than once.
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			session	body		order.VerifyCheckoutRequest	true	"Session"
//	@Success		200		{object}	order.OrderResult
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		402		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		409		{object}	httpx.ErrorResponse
//	@Router			/api/checkout/verify [post]
func verifyCheckoutHandler(svc orderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.VerifyCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.ErrorResponse{Error: "invalid json"})
			return
		}
		res, err := svc.VerifyCheckout(c.Request.Context(), req.SessionID)
		if err != nil {
			httpx.WriteError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// getOrderHandler godoc
//
//	@Summary	Track an order
//	@Tags		orders
//	@Produce	json
//	@Param		code	path		string	true	"Tracking code"
//	@Success	200		{object}	order.OrderView
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/api/orders/{code} [get]
func getOrderHandler(svc orderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svc.GetOrder(c.Request.Context(), c.Param("code"))
		if err != nil {
			httpx.WriteError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// listTruckOrdersHandler godoc
//
//	@Summary	List a truck's orders, newest first
//	@Tags		vendor
//	@Produce	json
//	@Param		X-Vendor-ID	header		int	true	"Vendor id"
//	@Param		truckId		path		int	true	"Truck id"
//	@Param		limit		query		int	false	"Page size"	default(20)
//	@Param		offset		query		int	false	"Offset"	default(0)
//	@Success	200			{array}		order.OrderView
//	@Failure	401			{object}	httpx.ErrorResponse
//	@Failure	403			{object}	httpx.ErrorResponse
//	@Failure	404			{object}	httpx.ErrorResponse
//	@Router		/api/trucks/{truckId}/orders [get]
func listTruckOrdersHandler(svc orderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		truckID, err := strconv.ParseInt(c.Param("truckId"), 10, 64)
		if err != nil || truckID <= 0 {
			c.JSON(http.StatusBadRequest, httpx.ErrorResponse{Error: "invalid truck id"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		views, err := svc.ListTruckOrders(c.Request.Context(), httpx.IdentityFrom(c), truckID, limit, offset)
		if err != nil {
			httpx.WriteError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// updateStatusHandler godoc
//
//	@Summary		Move an order to its next status
//	@Description	Allowed: paid to cooking, cooking to ready, ready to completed, and pending or paid to cancelled.
//	@Tags			vendor
//	@Accept			json
//	@Produce		json
//	@Param			X-Vendor-ID	header		int							true	"Vendor id"
//	@Param			id			path		int							true	"Order id"
//	@Param			status		body		order.UpdateStatusRequest	true	"New status"
//	@Success		200			{object}	order.OrderView
//	@Failure		400			{object}	httpx.ErrorResponse
//	@Failure		403			{object}	httpx.ErrorResponse
//	@Failure		404			{object}	httpx.ErrorResponse
//	@Failure		409			{object}	httpx.ErrorResponse
//	@Router			/api/orders/{id}/status [put]
func updateStatusHandler(svc orderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, httpx.ErrorResponse{Error: "invalid order id"})
			return
		}
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.ErrorResponse{Error: "invalid json"})
			return
		}
		v, err := svc.UpdateStatus(c.Request.Context(), httpx.IdentityFrom(c), id, req.Status)
		if err != nil {
			httpx.WriteError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// healthHandler godoc
//
//	@Summary	Check the health of the service
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	healthgo.Check
//	@Failure	503	{object}	healthgo.Check
//	@Router		/healthz [get]
func healthHandler(health *healthgo.Health) gin.HandlerFunc {
	return func(c *gin.Context) {
		check := health.Measure(c.Request.Context())
		code := http.StatusOK
		if check.Status != healthgo.StatusOK {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, check)
	}
}
