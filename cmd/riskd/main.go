package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cardiometrix/riskd/internal/api"
	"github.com/cardiometrix/riskd/internal/artifact"
	"github.com/cardiometrix/riskd/internal/config"
	"github.com/cardiometrix/riskd/internal/ml"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			zap.NewExample().Fatal("load config", zap.Error(err))
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)

	logger := newLogger(cfg.Server.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(cfg.Artifacts.Dir, 0o750); err != nil {
		logger.Fatal("create artifact dir", zap.Error(err))
	}

	store := artifact.NewStore(cfg.Artifacts.Dir, logger)
	manager, err := ml.NewManager(store, cfg.Training.Estimator, logger)
	if err != nil {
		logger.Fatal("build model manager", zap.Error(err))
	}

	if cfg.Artifacts.Watch {
		watcher, err := manager.WatchArtifacts()
		if err != nil {
			logger.Fatal("watch artifacts", zap.Error(err))
		}
		defer func() { _ = watcher.Close() }()
	}

	server := api.NewServer(cfg, logger, manager)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("riskd starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("artifact_dir", cfg.Artifacts.Dir),
		zap.String("estimator", cfg.Training.Estimator),
		zap.Bool("model_loaded", manager.ModelLoaded()),
		zap.String("model_version", manager.ModelVersion()))

	if err := server.Start(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
