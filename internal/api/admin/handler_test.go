package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"entitlement-app/internal/domain/billing"
	"entitlement-app/internal/domain/rewards"
	"entitlement-app/internal/domain/users"
	"entitlement-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/admin/users", h.ListAllUsers)
	r.GET("/admin/users/:id", h.GetUserDetails)
	r.GET("/admin/payments", h.ListAllPayments)
	r.GET("/admin/stats", h.GetAdminStats)
	r.GET("/admin/drift", h.ListDrift)
	r.POST("/admin/reconcile/:id", h.Reconcile)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// seedDrifted leaves a completed payment and ledger entry behind a profile
// that still says unpaid, as a sequential commit with failed steps would.
func seedDrifted(t *testing.T, db *gorm.DB) users.User {
	t.Helper()
	u := users.User{Name: "Ravi", Email: "ravi@example.com", RewardBalance: 0}
	require.NoError(t, db.Create(&u).Error)

	done := time.Now().Add(-time.Hour)
	txID := "pay_1"
	require.NoError(t, db.Create(&billing.Payment{
		UserID:        u.ID,
		AmountMinor:   4900,
		Status:        billing.PaymentCompleted,
		TransactionID: &txID,
		CompletedAt:   &done,
	}).Error)
	require.NoError(t, db.Create(&rewards.LedgerEntry{
		UserID: u.ID, Amount: 100, Reason: rewards.ReasonWelcomeBonus,
		ReferenceType: rewards.ReferencePayment, ReferenceID: "rec-1",
	}).Error)
	return u
}

func TestDriftAndReconcile(t *testing.T) {
	db := testutil.NewDB(t)
	u := seedDrifted(t, db)
	r := newRouter(&Handler{DB: db})

	w := do(r, http.MethodGet, "/admin/drift")
	require.Equal(t, http.StatusOK, w.Code)
	var drift []billing.Drift
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &drift))
	require.Len(t, drift, 1)
	assert.Equal(t, u.ID, drift[0].UserID)
	assert.Equal(t, int64(100), drift[0].LedgerBalance)

	w = do(r, http.MethodPost, "/admin/reconcile/"+u.ID)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Repaired bool          `json:"repaired"`
		Before   billing.Drift `json:"before"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Repaired)
	assert.False(t, resp.Before.HasPaid)

	var got users.User
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	assert.True(t, got.HasPaid)
	assert.Equal(t, int64(100), got.RewardBalance)

	w = do(r, http.MethodGet, "/admin/drift")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &drift))
	assert.Empty(t, drift)
}

func TestReconcile_UnknownUser(t *testing.T) {
	r := newRouter(&Handler{DB: testutil.NewDB(t)})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/admin/reconcile/nope").Code)
}

func TestStatsAndListings(t *testing.T) {
	db := testutil.NewDB(t)
	u := seedDrifted(t, db)
	require.NoError(t, db.Create(&users.User{Name: "Other", Email: "o@example.com"}).Error)
	r := newRouter(&Handler{DB: db})

	w := do(r, http.MethodGet, "/admin/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats AdminStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(0), stats.PaidUsers)
	assert.Equal(t, int64(4900), stats.TotalRevenue)
	assert.Equal(t, int64(4900), stats.RecentRevenue)
	assert.Equal(t, 1, stats.PendingDrift)

	w = do(r, http.MethodGet, "/admin/payments")
	require.Equal(t, http.StatusOK, w.Code)
	var payments []AdminPayment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "ravi@example.com", payments[0].Email)

	w = do(r, http.MethodGet, "/admin/users/"+u.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		User     AdminUser             `json:"user"`
		Payments []AdminPayment        `json:"payments"`
		Rewards  []rewards.LedgerEntry `json:"rewards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, u.ID, detail.User.ID)
	assert.Len(t, detail.Payments, 1)
	assert.Len(t, detail.Rewards, 1)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/admin/users/missing").Code)
}
