package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/internal/di"
	"github.com/hwangseoul-netizen/tention-mini/pkg/config"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"github.com/hwangseoul-netizen/tention-mini/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
		OutputPath:  cfg.Log.OutputPath,
	}); err != nil {
		panic("logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		logger.Fatal("telemetry init failed", zap.Error(err))
	}

	container, err := di.NewContainer(ctx, &di.ContainerConfig{
		Config: cfg,
		Logger: logger.Get(),
	})
	if err != nil {
		logger.Fatal("container init failed", zap.Error(err))
	}

	if err := container.Start(ctx); err != nil {
		logger.Fatal("workers failed to start", zap.Error(err))
	}
	logger.Info("slots loaded",
		zap.Int("slots", container.Store.Len()),
		zap.String("events_backend", cfg.Events.Backend),
		zap.String("host_platform", cfg.Host.Platform),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      container.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel2()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := container.Close(); err != nil {
		logger.Error("container close", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
}
