package billing

import (
	"net/http"

	"entitlement-app/internal/domain/payments"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	Amount     int64  `json:"amount"`
	UserID     string `json:"userId"`
	IsTestMode bool   `json:"isTestMode"`
}

// POST /create-order
func (h *Handler) CreateOrder(c *gin.Context) {
	var body createOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if body.Amount <= 0 || body.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount and userId are required"})
		return
	}

	if err := h.checkSession(c, body.UserID); err != nil {
		status, msg := errorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	env := payments.EnvironmentFromFlag(body.IsTestMode)
	order, err := h.Orders.CreateOrder(c.Request.Context(), body.Amount, body.UserID, env)
	if err != nil {
		h.logger().Error("create order failed",
			"user_id", body.UserID,
			"environment", string(env),
			"err", err)
		status, msg := errorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.logger().Info("order created",
		"user_id", body.UserID,
		"order_id", order.OrderID,
		"environment", string(env))

	c.JSON(http.StatusOK, order)
}
