// Package main API Server 入口
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-reviews/internal/apiserver/server"
	"restaurant-reviews/internal/config"
	"restaurant-reviews/internal/shared/infra"
	"restaurant-reviews/pkg/logging"
)

const metricsNamespace = "reviews"

func main() {
	configDir := flag.String("config", "", "配置文件目录")
	flag.Parse()
	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}

	// 加载配置（自动加载 .env，根据 APP_ENV 选择 YAML）
	cfg, err := config.Load()
	if err != nil {
		logging.Default("api-server").WithError(err).Error("Failed to load config")
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.File,
		Component: "api-server",
	})
	defer logger.Close()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("API Server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	logger.Info("Starting API Server", "env", string(cfg.Env), "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := server.NewMetrics(metricsNamespace)

	// 初始化存储与写入事件（json 模式在后台加载，/ready 在加载完成前返回 503）
	inf, err := infra.Open(ctx, cfg, logger, metrics.RecordStoreOp)
	if err != nil {
		return err
	}
	defer func() {
		if err := inf.Close(); err != nil {
			logger.WithError(err).Warn("Infrastructure close failed")
		}
	}()
	metrics.WatchHub(metricsNamespace, inf.Hub)

	h := server.NewHandler(server.Options{
		Provider:          inf.Provider,
		Changes:           inf.Hub,
		Metrics:           metrics,
		Logger:            logger,
		APIPrefix:         cfg.Server.APIPrefix,
		LegacyErrorStatus: cfg.Server.LegacyErrorStatus,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API Server listening", "addr", srv.Addr, "prefix", cfg.Server.APIPrefix)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 优雅关闭
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
