package users

import (
	"errors"
	"net/http"

	"entitlement-app/internal/domain/access"
	"entitlement-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func (h *Handler) loadCaller(c *gin.Context) (users.User, bool) {
	var user users.User

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return user, false
	}

	if err := h.DB.WithContext(c.Request.Context()).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		}
		return user, false
	}
	return user, true
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, ok := h.loadCaller(c)
	if !ok {
		return
	}

	policy := access.ComputePolicy(user)

	c.JSON(http.StatusOK, MeResponse{
		User:        BuildUserDTO(user),
		Entitlement: BuildEntitlementDTO(policy.State),
		Access:      BuildAccessDTO(policy),
	})
}

// GET /features/:feature
//
// Answers the same question RequireFeature enforces, so clients can hide
// what the server would refuse.
func (h *Handler) GetFeature(c *gin.Context) {
	user, ok := h.loadCaller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, BuildFeatureDTO(c.Param("feature"), access.StateFor(user)))
}
