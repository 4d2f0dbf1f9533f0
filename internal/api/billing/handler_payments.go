package billing

import (
	"net/http"
	"time"

	"entitlement-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

type PaymentDTO struct {
	ID            string     `json:"id"`
	OrderID       *string    `json:"order_id"`
	AmountMinor   int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	TransactionID *string    `json:"transaction_id"`
	PaymentMethod *string    `json:"payment_method"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		OrderID:       p.OrderID,
		AmountMinor:   p.AmountMinor,
		Currency:      p.Currency,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		PaymentMethod: p.PaymentMethod,
		CompletedAt:   p.CompletedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// GET /payments
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var records []billing.Payment
	if err := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]PaymentDTO, 0, len(records))
	for _, p := range records {
		out = append(out, toPaymentDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

// POST /payment-records
//
// Creates the pending record a later /verify-payment completes.
func (h *Handler) CreatePaymentRecord(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"` // minor units, as returned by /create-order
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.OrderID == "" || body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId and amount are required"})
		return
	}

	orderID := body.OrderID
	record := billing.Payment{
		UserID:      userID,
		OrderID:     &orderID,
		AmountMinor: body.Amount,
		Currency:    billing.CurrencyINR,
		Status:      billing.PaymentPending,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&record).Error; err != nil {
		h.logger().Error("create payment record failed", "user_id", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment record"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"paymentRecordId": record.ID, "status": record.Status})
}
