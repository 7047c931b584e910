package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-food-api/internal/cart"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/receipts"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReceiptStore keeps payment receipt images
type ReceiptStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	Path(ref string) (string, error)
	Remove(ref string) error
}

// CheckoutRequest is the JSON checkout payload. Receipt is a base64 data URL.
type CheckoutRequest struct {
	Delivery models.DeliveryInfo `json:"delivery"`
	Payment  struct {
		Method  models.PaymentMethod `json:"method"`
		Receipt string               `json:"receipt"`
	} `json:"payment"`
}

type OrderController struct {
	orders   services.OrderService
	checkout services.CheckoutService
	sessions *cart.Sessions
	receipts ReceiptStore
}

func NewOrderController(orders services.OrderService, checkout services.CheckoutService, sessions *cart.Sessions, store ReceiptStore) *OrderController {
	return &OrderController{
		orders:   orders,
		checkout: checkout,
		sessions: sessions,
		receipts: store,
	}
}

// Checkout godoc
// @Summary Place an order
// @Description Turns the caller's cart into a Pending order. Accepts JSON with a base64 receipt or a multipart form with a receipt file.
// @Tags orders
// @Accept json,mpfd
// @Produce json
// @Param order body CheckoutRequest false "Delivery and payment"
// @Param destination formData string false "Delivery destination (multipart)"
// @Param note formData string false "Delivery note (multipart)"
// @Param method formData string false "cbe, boa or telebirr (multipart)"
// @Param receipt formData file false "Receipt image (multipart)"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/checkout [post]
func (oc *OrderController) Checkout(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	userCart := oc.sessions.Get(actor.UserID)
	if userCart.Len() == 0 {
		respondError(c, models.ErrEmptyCart)
		return
	}

	delivery, payment, receipt, err := oc.readCheckout(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(receipt) > 0 {
		ref, err := oc.receipts.Save(c.Request.Context(), receipt)
		if err != nil {
			respondError(c, err)
			return
		}
		payment.ReceiptRef = ref
	}

	order, err := oc.checkout.Checkout(c.Request.Context(), actor, userCart, delivery, payment)
	if err != nil {
		// A rejected checkout must not leave its upload behind
		if payment.ReceiptRef != "" {
			if rmErr := oc.receipts.Remove(payment.ReceiptRef); rmErr != nil {
				log.WithError(rmErr).WithField("ref", payment.ReceiptRef).Warn("Failed to discard receipt")
			}
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (oc *OrderController) readCheckout(c *gin.Context) (models.DeliveryInfo, models.PaymentInfo, []byte, error) {
	var delivery models.DeliveryInfo
	var payment models.PaymentInfo

	// base64 inflates the image by a third
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, receipts.MaxUploadBytes*2)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		delivery.Destination = c.PostForm("destination")
		delivery.Note = c.PostForm("note")
		payment.Method = models.PaymentMethod(c.PostForm("method"))

		header, err := c.FormFile("receipt")
		if err != nil {
			return delivery, payment, nil, nil
		}
		file, err := header.Open()
		if err != nil {
			return delivery, payment, nil, fmt.Errorf("%w: receipt upload unreadable", models.ErrValidation)
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, receipts.MaxUploadBytes+1))
		if err != nil {
			return delivery, payment, nil, fmt.Errorf("%w: receipt upload unreadable", models.ErrValidation)
		}
		return delivery, payment, data, nil
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return delivery, payment, nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	payment.Method = req.Payment.Method
	return req.Delivery, payment, []byte(req.Payment.Receipt), nil
}

// ListMyOrders godoc
// @Summary List my orders
// @Description Newest first
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/protected/orders [get]
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := oc.orders.ListForUser(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get an order
// @Description Customers see their own orders, admins see every order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	order, err := oc.orders.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ReviewOrder godoc
// @Summary Review a delivered order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param review body object{rating=int,comment=string} true "Rating from 1 to 5"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/review [post]
func (oc *OrderController) ReviewOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.Review(c.Request.Context(), actor, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders godoc
// @Summary List all orders
// @Tags admin
// @Produce json
// @Param status query string false "Only orders in this status"
// @Param user query string false "Only orders of this user"
// @Param limit query int false "Maximum number of orders"
// @Success 200 {array} models.Order
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/orders [get]
func (oc *OrderController) ListOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filter := models.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		UserID: c.Query("user"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(c, fmt.Errorf("%w: limit must be a non-negative integer", models.ErrValidation))
			return
		}
		filter.Limit = limit
	}

	orders, err := oc.orders.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// SetStatus godoc
// @Summary Move an order through its lifecycle
// @Description Pending, Preparing, Out for Delivery, Delivered or Cancelled. The owner is notified.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body object{status=string} true "Target status"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/orders/{id}/status [put]
func (oc *OrderController) SetStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.SetOrderStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"admin_id": actor.UserID,
	}).Info("Order status changed")
	c.JSON(http.StatusOK, order)
}

// SetFeedback godoc
// @Summary Mark a review helpful or not
// @Description Sending the current value again clears it
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param feedback body object{feedback=string} true "Helpful or Not Helpful"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/orders/{id}/feedback [post]
func (oc *OrderController) SetFeedback(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req struct {
		Feedback string `json:"feedback" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.SetFeedback(c.Request.Context(), actor, c.Param("id"), req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Stats godoc
// @Summary Order counts for the dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} models.OrderStats
// @Security BearerAuth
// @Router /api/v1/protected/admin/stats [get]
func (oc *OrderController) Stats(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stats, err := oc.orders.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Receipt godoc
// @Summary Download an order's payment receipt
// @Tags admin
// @Produce jpeg
// @Param id path string true "Order ID"
// @Success 200 {file} file
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/orders/{id}/receipt [get]
func (oc *OrderController) Receipt(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		respondError(c, fmt.Errorf("%w: only admins can view receipts", models.ErrNotPermitted))
		return
	}

	order, err := oc.orders.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := oc.receipts.Path(order.PaymentReceiptRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}
