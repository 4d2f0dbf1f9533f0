package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"entitlement-app/internal/domain/billing"
	"entitlement-app/internal/domain/payments"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB          *gorm.DB
	Orders      *billing.OrderService
	Committer   *billing.Committer
	BonusAmount int64

	// RequireSessionMatch makes the payload userId answer to the bearer
	// token's user_id.
	RequireSessionMatch bool

	Logger *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// checkSession rejects a payload userId that differs from the session.
func (h *Handler) checkSession(c *gin.Context, userID string) error {
	if !h.RequireSessionMatch {
		return nil
	}
	if sessionID := c.GetString("user_id"); sessionID == "" || sessionID != userID {
		return payments.ErrSessionMismatch
	}
	return nil
}

func errorStatus(err error) (int, string) {
	var pe *payments.Error
	if errors.As(err, &pe) {
		return pe.HTTPStatus(), pe.Message
	}
	return http.StatusBadRequest, err.Error()
}
