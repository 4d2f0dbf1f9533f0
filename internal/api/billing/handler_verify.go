package billing

import (
	"net/http"

	"entitlement-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

type verifyPaymentRequest struct {
	OrderID         string `json:"orderId"`
	PaymentID       string `json:"paymentId"`
	Signature       string `json:"signature"`
	UserID          string `json:"userId"`
	PaymentRecordID string `json:"paymentRecordId"`
}

// POST /verify-payment
//
// Responds verified:true whenever the signature checks out, even if some
// entitlement writes failed. Those are logged for reconciliation.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var body verifyPaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "error": "Invalid request body"})
		return
	}

	if body.UserID != "" {
		if err := h.checkSession(c, body.UserID); err != nil {
			status, msg := errorStatus(err)
			c.JSON(status, gin.H{"verified": false, "error": msg})
			return
		}
	}

	result, err := h.Committer.Commit(c.Request.Context(), billing.CommitInput{
		OrderID:         body.OrderID,
		PaymentID:       body.PaymentID,
		Signature:       body.Signature,
		UserID:          body.UserID,
		PaymentRecordID: body.PaymentRecordID,
		BonusAmount:     h.BonusAmount,
	})
	if err != nil || !result.Verified {
		status, msg := http.StatusBadRequest, "Invalid payment signature"
		if err != nil {
			status, msg = errorStatus(err)
		}
		c.JSON(status, gin.H{"verified": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}
