package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"entitlement-app/config"
	authapi "entitlement-app/internal/api/auth"
	"entitlement-app/internal/app/http/middleware"
	"entitlement-app/internal/domain/billing"
	"entitlement-app/internal/domain/payments"
	"entitlement-app/internal/domain/users"
	"entitlement-app/internal/infra/razorpay"
	"entitlement-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const jwtSecret = "routes-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db      *gorm.DB
	router  *gin.Engine
	gateway *httptest.Server
	orders  int
}

// newFixture wires the real gateway client against a fake order API.
func newFixture(t *testing.T, requireSession bool, limiter *middleware.RateLimiter) *fixture {
	t.Helper()
	f := &fixture{db: testutil.NewDB(t)}

	f.gateway = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.orders++
		var req razorpay.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(razorpay.Order{
			ID: "order_E2E", Entity: "order", Amount: req.Amount,
			Currency: req.Currency, Receipt: req.Receipt, Status: "created",
		})
	}))
	t.Cleanup(f.gateway.Close)

	cfg := &config.Config{
		JWTSecret:           jwtSecret,
		CORSOrigins:         []string{"*"},
		WelcomeBonus:        100,
		CommitMode:          config.CommitModeTransactional,
		RequireSessionMatch: requireSession,
		Razorpay: config.Razorpay{
			APIURL:        f.gateway.URL,
			Timeout:       time.Second,
			TestKeyID:     "rzp_test_k",
			TestKeySecret: "test_secret",
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := payments.CredentialsFromConfig(cfg.Razorpay)

	f.router = NewRouter(Deps{
		Config:    cfg,
		DB:        f.db,
		Orders:    billing.NewOrderService(razorpay.NewClient(cfg.Razorpay.APIURL, cfg.Razorpay.Timeout), creds),
		Committer: billing.NewCommitter(f.db, creds.Secrets(), cfg.CommitMode, logger),
		Limiter:   limiter,
		Logger:    logger,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (f *fixture) user(t *testing.T, email string) (users.User, string) {
	t.Helper()
	u := users.User{Name: "Ravi", Email: email}
	require.NoError(t, f.db.Create(&u).Error)
	token, err := authapi.IssueToken(jwtSecret, u, time.Now())
	require.NoError(t, err)
	return u, token
}

func TestPaymentFlow_EndToEnd(t *testing.T) {
	f := newFixture(t, true, nil)
	u, token := f.user(t, "ravi@example.com")

	w, order := f.do(t, http.MethodPost, "/create-order", token, gin.H{"amount": 49, "userId": u.ID, "isTestMode": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "order_E2E", order["orderId"])
	assert.Equal(t, float64(4900), order["amount"])
	assert.Equal(t, "INR", order["currency"])

	w, rec := f.do(t, http.MethodPost, "/payment-records", token, gin.H{"orderId": order["orderId"], "amount": order["amount"]})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = f.do(t, http.MethodGet, "/features/send_message", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"allowed":false`)

	verify := gin.H{
		"orderId":         "order_E2E",
		"paymentId":       "pay_E2E",
		"signature":       payments.Sign([]byte("test_secret"), "order_E2E", "pay_E2E"),
		"userId":          u.ID,
		"paymentRecordId": rec["paymentRecordId"],
	}
	w, resp := f.do(t, http.MethodPost, "/verify-payment", token, verify)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, resp["verified"])

	// Replay: still verified, no second credit.
	w, resp = f.do(t, http.MethodPost, "/verify-payment", token, verify)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["verified"])

	var got users.User
	require.NoError(t, f.db.First(&got, "id = ?", u.ID).Error)
	assert.True(t, got.HasPaid)
	assert.Equal(t, int64(100), got.RewardBalance)

	w, _ = f.do(t, http.MethodGet, "/features/send_message", token, nil)
	assert.Contains(t, w.Body.String(), `"allowed":true`)

	w, rewards := f.do(t, http.MethodGet, "/rewards", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), rewards["balance"])
}

func TestPaymentRoutes_SessionRequired(t *testing.T) {
	f := newFixture(t, true, nil)
	victim, _ := f.user(t, "victim@example.com")
	_, attacker := f.user(t, "attacker@example.com")

	w, _ := f.do(t, http.MethodPost, "/create-order", "", gin.H{"amount": 49, "userId": victim.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = f.do(t, http.MethodPost, "/create-order", attacker, gin.H{"amount": 49, "userId": victim.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, f.orders)
}

func TestPaymentRoutes_OpenWhenSessionNotRequired(t *testing.T) {
	f := newFixture(t, false, nil)

	w, _ := f.do(t, http.MethodPost, "/create-order", "", gin.H{"amount": 49, "userId": "u1", "isTestMode": true})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, f.orders)
}

func TestPaymentRoutes_Preflight(t *testing.T) {
	f := newFixture(t, true, middleware.NewRateLimiter(1, 1))

	for _, path := range []string{"/create-order", "/verify-payment", "/create-order"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://anywhere.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestPaymentRoutes_RateLimited(t *testing.T) {
	f := newFixture(t, false, middleware.NewRateLimiter(0.001, 2))
	body := gin.H{"amount": 49, "userId": "u1", "isTestMode": true}

	for i := 0; i < 2; i++ {
		w, _ := f.do(t, http.MethodPost, "/create-order", "", body)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, _ := f.do(t, http.MethodPost, "/create-order", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	f := newFixture(t, true, nil)
	_, token := f.user(t, "plain@example.com")

	w, _ := f.do(t, http.MethodGet, "/admin/drift", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := users.User{Name: "Root", Email: "root@example.com", Role: users.RoleAdmin}
	require.NoError(t, f.db.Create(&admin).Error)
	adminToken, err := authapi.IssueToken(jwtSecret, admin, time.Now())
	require.NoError(t, err)

	w, _ = f.do(t, http.MethodGet, "/admin/drift", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSConfig(t *testing.T) {
	open := CORSConfig([]string{"*"})
	assert.True(t, open.AllowAllOrigins)
	assert.False(t, open.AllowCredentials)

	strict := CORSConfig([]string{"https://app.example"})
	assert.False(t, strict.AllowAllOrigins)
	assert.True(t, strict.AllowCredentials)
	assert.Equal(t, []string{"https://app.example"}, strict.AllowOrigins)
}
