package middleware

import (
	"net/http"

	"entitlement-app/internal/domain/access"
	"entitlement-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireFeature loads the caller's entitlement and enforces the feature
// policy server-side. Must run after AuthMiddleware.
func RequireFeature(db *gorm.DB, feature access.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		var user users.User

		if err := db.WithContext(c.Request.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "User not found",
			})
			return
		}

		if !access.CanAccess(string(feature), access.StateFor(user)) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":   "This feature requires a paid account",
				"feature": feature,
			})
			return
		}

		c.Next()
	}
}
