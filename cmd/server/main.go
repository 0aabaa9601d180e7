package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"insight-engine/internal/adapter/httpapi"
	"insight-engine/internal/di"
	"insight-engine/internal/infra"
	"insight-engine/internal/infra/config"
	"insight-engine/internal/infra/logger"
	"insight-engine/internal/infra/metrics"
	"insight-engine/internal/infra/telemetry"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.OTelEnabled {
		shutdown, err := telemetry.Setup(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	metrics.Register()

	dbPool, err := infra.NewPostgresDB(context.Background(), cfg.DB.DSN(), infra.PoolConfig{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		log.Error("failed to connect to knowledge store", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	components := di.NewApplicationComponents(cfg, dbPool, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := httpapi.NewHandler(components.AnswerUsecase, components.Store)
	handler.Register(e)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
