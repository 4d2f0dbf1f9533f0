package rewards

import (
	"net/http"

	"entitlement-app/internal/domain/rewards"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

// GET /rewards
//
// The balance is summed from the ledger, not read from the profile.
func (h *Handler) GetRewards(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()

	entries, err := rewards.Entries(ctx, h.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rewards"})
		return
	}
	balance, err := rewards.Balance(ctx, h.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"entries": entries,
	})
}
