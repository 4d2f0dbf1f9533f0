package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entitlement-app/config"
	"entitlement-app/database"
	routes "entitlement-app/internal/app/http"
	"entitlement-app/internal/app/http/middleware"
	"entitlement-app/internal/domain/billing"
	"entitlement-app/internal/domain/payments"
	"entitlement-app/internal/infra/razorpay"

	"github.com/gin-gonic/gin"
)

const (
	limiterSweepEvery = time.Minute
	limiterMaxIdle    = 10 * time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		logger.Error("database unavailable", "err", err)
		os.Exit(1)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	creds := payments.CredentialsFromConfig(cfg.Razorpay)
	gateway := razorpay.NewClient(cfg.Razorpay.APIURL, cfg.Razorpay.Timeout)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limiter.Sweep(now, limiterMaxIdle)
			}
		}
	}()

	if cfg.CommitMode == config.CommitModeSequential {
		logger.Warn("COMMIT_MODE=sequential: entitlement writes are not atomic and replays reset reward balances")
	}
	if !cfg.RequireSessionMatch {
		logger.Warn("REQUIRE_SESSION_MATCH=false: payment endpoints trust the payload userId")
	}

	r := routes.NewRouter(routes.Deps{
		Config:    cfg,
		DB:        db,
		Orders:    billing.NewOrderService(gateway, creds),
		Committer: billing.NewCommitter(db, creds.Secrets(), cfg.CommitMode, logger),
		Limiter:   limiter,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "port", cfg.Port, "commit_mode", cfg.CommitMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
