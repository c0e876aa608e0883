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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "vehicle-affordability/internal/adapter/http"
	ratelimit "vehicle-affordability/internal/adapter/middleware"
	"vehicle-affordability/internal/adapter/repository/mysql"
	"vehicle-affordability/internal/config"
	"vehicle-affordability/internal/infrastructure/cache"
	"vehicle-affordability/internal/infrastructure/db"
	"vehicle-affordability/internal/infrastructure/logging"
	"vehicle-affordability/internal/infrastructure/metrics"
	"vehicle-affordability/internal/usecase/affordability"
)

func main() {
	cfg := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), logging.GormLevel(cfg.LogLevel))
	if err != nil {
		fatal(log, "open mysql", err)
	}
	if err := mysql.Migrate(ctx, gdb); err != nil {
		fatal(log, "migrate", err)
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		fatal(log, "open redis", err)
	}
	defer rdb.Close()

	m := metrics.New()
	uc := affordability.NewUsecase(mysql.NewPolicyRepository(gdb), cfg.PolicyName,
		affordability.WithRecorder(m),
		affordability.WithLogger(log),
	)
	if err := uc.LoadPolicy(ctx); err != nil {
		fatal(log, "load policy", err)
	}

	h := httpadp.NewHandler(uc)
	ah := httpadp.NewAffordabilityHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.RequestID(), echomw.Logger(), echomw.Recover())
	e.Use(ratelimit.RateLimitMiddleware(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow(), log))

	// routes
	e.GET("/health", h.Health)
	e.GET("/metrics", m.EchoHandler())
	v1 := e.Group("/v1/affordability")
	v1.POST("/evaluations", ah.Evaluate)
	v1.GET("/defaults", ah.Defaults)
	v1.GET("/policy", ah.Policy)

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", "addr", addr, "policy", cfg.PolicyName)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
