package routes

import (
	"log/slog"
	"net/http"
	"time"

	"entitlement-app/config"
	adminapi "entitlement-app/internal/api/admin"
	authapi "entitlement-app/internal/api/auth"
	billingapi "entitlement-app/internal/api/billing"
	rewardsapi "entitlement-app/internal/api/rewards"
	usersapi "entitlement-app/internal/api/users"
	"entitlement-app/internal/app/http/middleware"
	"entitlement-app/internal/domain/access"
	"entitlement-app/internal/domain/billing"
	"entitlement-app/internal/domain/users"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Orders    *billing.OrderService
	Committer *billing.Committer
	Limiter   *middleware.RateLimiter
	Logger    *slog.Logger
}

// NewRouter builds the engine with CORS applied before any route.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(CORSConfig(deps.Config.CORSOrigins)))

	RegisterRoutes(r, deps)
	return r
}

// CORSConfig allows any origin when origins is empty or contains "*".
// Credentials are only allowed with an explicit origin list.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	cfg := deps.Config
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	billingHandler := &billingapi.Handler{
		DB:                  deps.DB,
		Orders:              deps.Orders,
		Committer:           deps.Committer,
		BonusAmount:         cfg.WelcomeBonus,
		RequireSessionMatch: cfg.RequireSessionMatch,
		Logger:              deps.Logger,
	}
	authHandler := &authapi.Handler{
		DB:        deps.DB,
		JWTSecret: cfg.JWTSecret,
		Google:    authapi.NewGoogleConfig(cfg),
		Logger:    deps.Logger,
	}
	usersHandler := &usersapi.Handler{DB: deps.DB}
	rewardsHandler := &rewardsapi.Handler{DB: deps.DB}
	adminHandler := &adminapi.Handler{DB: deps.DB, Logger: deps.Logger}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Payment endpoints
	pay := r.Group("/")
	if deps.Limiter != nil {
		pay.Use(deps.Limiter.Middleware())
	}
	pay.Use(middleware.SanitizeAndCleanInputMiddleware())
	if cfg.RequireSessionMatch {
		pay.Use(auth)
	}
	pay.POST("/create-order", billingHandler.CreateOrder)
	pay.POST("/verify-payment", billingHandler.VerifyPayment)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	if authHandler.Google != nil {
		public.GET("/auth/google", authHandler.GoogleStart)
		public.GET("/auth/google/callback", authHandler.GoogleCallback)
	}

	// Authenticated
	authed := r.Group("/")
	authed.Use(auth)
	authed.GET("/me", usersHandler.GetCurrentUser)
	authed.GET("/features/:feature", usersHandler.GetFeature)
	authed.GET("/payments", billingHandler.GetPaymentHistory)
	authed.POST("/payment-records", middleware.SanitizeAndCleanInputMiddleware(), billingHandler.CreatePaymentRecord)
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/rewards", middleware.RequireFeature(deps.DB, access.FeatureEarnRewards), rewardsHandler.GetRewards)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(auth, middleware.RequireRole(users.RoleAdmin))
	admin.GET("/users", adminHandler.ListAllUsers)
	admin.GET("/users/:id", adminHandler.GetUserDetails)
	admin.GET("/payments", adminHandler.ListAllPayments)
	admin.GET("/stats", adminHandler.GetAdminStats)
	admin.GET("/drift", adminHandler.ListDrift)
	admin.POST("/reconcile/:id", adminHandler.Reconcile)
}
