package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"LiveCounters/internal/config"
	"LiveCounters/internal/display"
	"LiveCounters/internal/generator"
	"LiveCounters/internal/notifier"
	"LiveCounters/internal/recorder"
	"LiveCounters/internal/scheduler"
	"LiveCounters/internal/sim"
)

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal("load config", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("config validation", err)
	}
	level, _ := cfg.Level()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)
	slog.Info("LiveCounters starting", "config", cfgPath)

	// Simulation state
	eng := sim.NewEngine(sim.WithShock(generator.NewUniformShock(cfg.Seed)))

	layout := display.DefaultLayout()
	if err := layout.Validate(eng.Metrics()); err != nil {
		fatal("resolve display handles", err)
	}

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var history display.HistorySource
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			slog.Warn("create data dir failed, using noop recorder", "err", err)
		} else if sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath); err != nil {
			slog.Warn("init sqlite recorder failed, using noop recorder", "err", err)
		} else {
			rec = sr
			history = sr
		}
	}
	defer rec.Close()
	if err := rec.RecordCards(eng.Cards()); err != nil {
		slog.Error("record info cards", "err", err)
	}

	// Display sinks
	var sinks []display.Sink
	if cfg.ConsoleEnabled() {
		sinks = append(sinks, display.NewConsole(os.Stdout, layout, eng.Cards(), logger))
	}
	var web *display.Web
	if cfg.HTTP.Addr != "" {
		opts := []display.WebOption{display.WithWebLogger(logger)}
		if history != nil {
			opts = append(opts, display.WithHistory(history))
		}
		web = display.NewWeb(cfg.HTTP.Addr, layout, eng.Cards(), opts...)
		if err := web.Start(); err != nil {
			fatal("start web dashboard", err)
		}
		sinks = append(sinks, web)
	}
	hub, err := display.NewHub(logger, sinks...)
	if err != nil {
		fatal("init display", err)
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := scheduler.NewScheduler(ctx, eng, hub, tn, rec, logger)
	if err != nil {
		fatal("init scheduler", err)
	}
	if err := sched.RegisterAll(cfg.Schedule.SummaryCron); err != nil {
		fatal("register cron tasks", err)
	}
	sched.Start()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		slog.Info("telegram polling started")
	}

	slog.Info("LiveCounters is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)

	for running := true; running; {
		select {
		case <-winch:
			hub.Redraw()
		case <-sigCh:
			running = false
		}
	}

	slog.Info("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	if web != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := web.Shutdown(shutdownCtx); err != nil {
			slog.Warn("web shutdown", "err", err)
		}
		done()
	}
	slog.Info("LiveCounters stopped")
}
