package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modq-io/modq/internal/api"
	"github.com/modq-io/modq/internal/config"
	"github.com/modq-io/modq/internal/dataset"
	"github.com/modq-io/modq/internal/logbuf"
	"github.com/modq-io/modq/internal/notify"
	"github.com/modq-io/modq/internal/scheduler"
	"github.com/modq-io/modq/internal/ticket"
)

func main() {
	configPath := flag.String("config", "", "Path to config JSONC file (falls back to MODQ_* env)")
	datasetPath := flag.String("dataset", "", "Dataset path override")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// Set up logging: JSON to stdout, ring buffer for GET /api/logs.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logBuf := logbuf.New(2000)
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logbuf.NewHandler(jsonHandler, logBuf))

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *datasetPath != "" {
		cfg.Dataset = *datasetPath
	}

	logger.Info("modqd starting", "dataset", cfg.Dataset)

	// Load the dataset and build the store. Both are fatal on failure:
	// a malformed dataset or a dangling msg_id must abort startup, not
	// surface per-request.
	data, err := dataset.Load(cfg.Dataset)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	store, err := ticket.NewStore(data, logger.With("component", "store"))
	if err != nil {
		logger.Error("failed to build ticket store", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional status-change notifiers.
	var notifiers notify.Fanout
	if sc := cfg.Notifiers.Slack; sc != nil {
		n, err := notify.NewSlack(sc.Token, sc.Channel, logger.With("notifier", "slack"))
		if err != nil {
			logger.Error("failed to init slack notifier", "error", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, n)
	}
	if tc := cfg.Notifiers.Telegram; tc != nil {
		n, err := notify.NewTelegram(tc.Token, tc.ChatID, logger.With("notifier", "telegram"))
		if err != nil {
			logger.Error("failed to init telegram notifier", "error", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, n)
	}
	var notifier notify.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	}

	// Periodic ticket-count summary.
	if cfg.Stats.Schedule != "" {
		sched := scheduler.New(logger.With("component", "scheduler"))
		err := sched.AddJob("ticket-counts", cfg.Stats.Schedule, func() {
			args := []any{}
			for status, n := range store.Counts() {
				args = append(args, slog.Int(string(status), n))
			}
			logger.Info("ticket count summary", args...)
		})
		if err != nil {
			logger.Error("failed to schedule stats job", "error", err)
			os.Exit(1)
		}
		go safeGo(logger, "scheduler", func() { sched.Start(ctx) })
	}

	srv := api.NewServer(store, api.Config{
		Host: cfg.API.Host,
		Port: cfg.API.Port,
		Key:  cfg.API.Key,
	}, logger.With("component", "api"), logBuf, notifier)

	go safeGo(logger, "api-server", func() { srv.Start(ctx) })
	logger.Info("api server started", "port", cfg.API.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()
	logger.Info("modqd stopped")
}

// safeGo runs fn with panic recovery.
func safeGo(logger *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("goroutine panicked", "name", name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}
