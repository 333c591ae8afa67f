// Package main provides the entry point for the backtesting server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantbench/backtester/internal/api"
	"github.com/quantbench/backtester/internal/backtester"
	"github.com/quantbench/backtester/internal/config"
	"github.com/quantbench/backtester/internal/data"
	"github.com/quantbench/backtester/internal/store"
	"github.com/quantbench/backtester/internal/strategy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging.Level)
	defer logger.Sync()

	logger.Info("starting backtesting server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("dataDir", cfg.Storage.DataDir),
		zap.String("feed", cfg.Alpaca.Feed),
	)

	alpaca := data.NewAlpacaProvider(logger, data.AlpacaConfig{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
		Feed:      cfg.Alpaca.Feed,
	})

	provider, err := data.NewStore(logger, cfg.Storage.DataDir, alpaca)
	if err != nil {
		logger.Fatal("failed to initialize price cache", zap.Error(err))
	}

	results, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Fatal("failed to open result store", zap.Error(err))
	}
	defer results.Close()

	registry := strategy.NewRegistry(logger)
	engine := backtester.NewEngine(logger, registry)

	hub := api.NewHub(logger)
	go hub.Run()

	server := api.NewServer(logger, api.ServerConfig{
		Addr:         cfg.Server.Addr(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, engine, registry, provider, results, hub)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	logConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
