package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"ecommerce-api/middleware"
	"ecommerce-api/models"
	"ecommerce-api/services"
)

type OrderController struct {
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Stripe   *services.StripeClient
	Logger   *zap.Logger
}

type createCashOrderRequest struct {
	ShippingAddress models.Address `json:"shipping_address"`
}

// CreateCashOrder handles POST /orders/:cartId — order creation paid on
// delivery.
func (oc *OrderController) CreateCashOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
		return
	}

	var req createCashOrderRequest
	// body is optional; a missing shipping address is allowed
	_ = c.ShouldBindJSON(&req)

	order, err := oc.Checkout.CreateCashOrder(c.Request.Context(), userID, cartID, req.ShippingAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetCheckoutSession handles GET /orders/checkout-session/:cartId — creates
// a Stripe-hosted session for card payment.
func (oc *OrderController) GetCheckoutSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
		return
	}

	ref, err := oc.Checkout.GetCheckoutSession(c.Request.Context(), userID, cartID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": ref})
}

// StripeWebhook handles POST /webhook-checkout. Signature verification
// failures are rejected with 400; once the event is authenticated the
// gateway always gets a 200, even when order creation fails internally —
// redelivery cannot fix an application-level error, and the idempotency
// guard makes redelivery of successes harmless.
func (oc *OrderController) StripeWebhook(c *gin.Context) {
	event, err := oc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		oc.Logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	if event.Type == "checkout.session.completed" {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			oc.Logger.Error("failed to unmarshal checkout session", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		order, err := oc.Checkout.CreateCardOrder(c.Request.Context(), services.CompletedSession{
			SessionID: sess.ID,
			CartID:    sess.ClientReferenceID,
			UserID:    sess.Metadata["userId"],
		})
		if err != nil {
			oc.Logger.Error("failed to create order from webhook",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		} else {
			oc.Logger.Info("order created from stripe webhook",
				zap.String("order_id", order.ID.String()),
				zap.String("session_id", sess.ID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetMyOrders handles GET /orders — the logged-in user's orders.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := oc.Orders.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": len(orders), "orders": orders})
}

// GetMyOrderByID handles GET /orders/:id scoped to the logged-in user.
func (oc *OrderController) GetMyOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := oc.Orders.GetUserOrderByID(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetAllOrders handles GET /admin/orders with page/limit pagination.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := oc.Orders.GetAllOrders(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// MarkPaid handles PUT /admin/orders/:id/pay.
func (oc *OrderController) MarkPaid(c *gin.Context) {
	oc.updateStatus(c, oc.Orders.MarkPaid)
}

// MarkDelivered handles PUT /admin/orders/:id/deliver.
func (oc *OrderController) MarkDelivered(c *gin.Context) {
	oc.updateStatus(c, oc.Orders.MarkDelivered)
}

func (oc *OrderController) updateStatus(c *gin.Context, update func(ctx context.Context, id uuid.UUID) (*models.Order, error)) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := update(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
