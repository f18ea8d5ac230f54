package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"transitboard/internal/app"
	"transitboard/internal/broadcast"
	"transitboard/internal/config"
	"transitboard/internal/handler"
	"transitboard/internal/server"
)

func main() {
	cfg := config.Load()

	// CLI flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "Station catalog (.toml or .yaml); embedded default when empty")
	flag.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS URL for board broadcasts; disabled when empty")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	if err := a.OpenStore(); err != nil {
		logger.Error("failed to open notice store", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.NATSURL != "" {
		pub, err := broadcast.Connect(cfg.NATSURL, a.Metrics, logger)
		if err != nil {
			logger.Error("broadcast disabled", "error", err)
		} else {
			defer pub.Close()
			poller := broadcast.NewPoller(a.Boards(), pub, cfg.BroadcastInterval, a.Metrics, logger)
			go poller.Start(ctx)
		}
	}

	h := handler.New(a.Trains, a.Buses, a.Catalog, a.Notices, a.Metrics, logger)
	srv := server.New(cfg, h, a.Gate, a.Metrics, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}
