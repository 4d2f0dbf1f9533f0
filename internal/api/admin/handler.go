package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"entitlement-app/internal/domain/billing"
	"entitlement-app/internal/domain/rewards"
	"entitlement-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Lastname      string     `json:"lastname"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	AuthProvider  string     `json:"auth_provider"`
	HasPaid       bool       `json:"has_paid"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	RewardBalance int64      `json:"reward_balance"`
}

type AdminPayment struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	OrderID       *string `json:"order_id,omitempty"`
	AmountMinor   int64   `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Environment   *string `json:"environment,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers    int64 `json:"total_users"`
	PaidUsers     int64 `json:"paid_users"`
	TotalRevenue  int64 `json:"total_revenue"`  // minor units
	RecentRevenue int64 `json:"recent_revenue"` // minor units, last 30 days
	PendingDrift  int   `json:"pending_drift"`
}

type Handler struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func toAdminUser(u users.User) AdminUser {
	return AdminUser{
		ID:            u.ID,
		Name:          u.Name,
		Lastname:      u.Lastname,
		Email:         u.Email,
		Role:          u.Role,
		AuthProvider:  u.AuthProvider,
		HasPaid:       u.HasPaid,
		PaymentDate:   u.PaymentDate,
		RewardBalance: u.RewardBalance,
	}
}

func toAdminPayment(p billing.Payment) AdminPayment {
	return AdminPayment{
		ID:            p.ID,
		Email:         p.User.Email,
		OrderID:       p.OrderID,
		AmountMinor:   p.AmountMinor,
		Currency:      p.Currency,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		Environment:   p.PaymentMethod,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := h.DB.WithContext(c.Request.Context()).Order("created_at DESC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]AdminUser, 0, len(all))
	for _, u := range all {
		out = append(out, toAdminUser(u))
	}
	c.JSON(http.StatusOK, out)
}

// GET /admin/payments
func (h *Handler) ListAllPayments(c *gin.Context) {
	var records []billing.Payment
	if err := h.DB.WithContext(c.Request.Context()).
		Preload("User").
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]AdminPayment, 0, len(records))
	for _, p := range records {
		out = append(out, toAdminPayment(p))
	}
	c.JSON(http.StatusOK, out)
}

// GET /admin/stats
func (h *Handler) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)
	var stats AdminStats

	if err := db.Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	if err := db.Model(&users.User{}).Where("has_paid = ?", true).Count(&stats.PaidUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count paid users"})
		return
	}
	if err := db.Model(&billing.Payment{}).
		Where("status = ?", billing.PaymentCompleted).
		Select("COALESCE(SUM(amount_minor), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum revenue"})
		return
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := db.Model(&billing.Payment{}).
		Where("status = ? AND completed_at >= ?", billing.PaymentCompleted, thirtyDaysAgo).
		Select("COALESCE(SUM(amount_minor), 0)").
		Scan(&stats.RecentRevenue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum revenue"})
		return
	}

	drift, err := billing.FindDrift(ctx, h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check drift"})
		return
	}
	stats.PendingDrift = len(drift)

	c.JSON(http.StatusOK, stats)
}

// GET /admin/users/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")

	var user users.User
	if err := h.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var records []billing.Payment
	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	entries, err := rewards.Entries(ctx, h.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reward ledger"})
		return
	}

	payments := make([]AdminPayment, 0, len(records))
	for _, p := range records {
		p.User = user
		payments = append(payments, toAdminPayment(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     toAdminUser(user),
		"payments": payments,
		"rewards":  entries,
	})
}

// GET /admin/drift
func (h *Handler) ListDrift(c *gin.Context) {
	drift, err := billing.FindDrift(c.Request.Context(), h.DB)
	if err != nil {
		h.logger().Error("drift scan failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check drift"})
		return
	}
	c.JSON(http.StatusOK, drift)
}

// POST /admin/reconcile/:id
func (h *Handler) Reconcile(c *gin.Context) {
	userID := c.Param("id")

	drift, err := billing.Reconcile(c.Request.Context(), h.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger().Error("reconcile failed", "user_id", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile user"})
		return
	}

	if drift.Any() {
		h.logger().Info("user reconciled",
			"user_id", userID,
			"reward_balance_before", drift.RewardBalance,
			"reward_balance_after", drift.LedgerBalance,
			"has_paid_before", drift.HasPaid)
	}

	c.JSON(http.StatusOK, gin.H{"repaired": drift.Any(), "before": drift})
}
