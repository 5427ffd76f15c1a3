package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TopstepSentinel/internal/api"
	"TopstepSentinel/internal/collector"
	"TopstepSentinel/internal/config"
	"TopstepSentinel/internal/logx"
	"TopstepSentinel/internal/notifier"
	"TopstepSentinel/internal/recorder"
	"TopstepSentinel/internal/scheduler"
	"TopstepSentinel/internal/topstep"
)

// App holds application dependencies built by Wire.
type App struct {
	Config    *config.Config
	Logger    *logx.Logger
	Client    *topstep.Client
	Recorder  recorder.Recorder
	Collector *collector.Collector
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	app, cleanup, err := InitializeApp(ConfigPath(cfgPath))
	if err != nil {
		log.Fatalf("[FATAL] init: %v", err)
	}
	defer cleanup()

	cfg := app.Config
	logger := app.Logger
	logger.Info("TopstepSentinel starting", "source", app.Client.Name(), "symbol", cfg.Topstep.Symbol, "live", cfg.Topstep.Live)

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", "timezone", cfg.Schedule.Timezone, "error", err)
		loc = time.UTC
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.With("component", "telegram"))
		sender = tn
	} else {
		logger.Warn("telegram not configured, reports go to the log only")
	}

	sched := scheduler.NewScheduler(ctx, app.Collector, sender, app.Client.Auth, loc, logger.With("component", "scheduler"))
	if err := sched.RegisterDaily(cfg.Schedule.DailyCron); err != nil {
		logger.Error("register cron tasks", "error", err)
		return
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		handler := api.NewHandler(app.Client, app.Recorder, logger.With("component", "api"))
		srv = &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("http api listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http api stopped", "error", err)
			}
		}()
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	}

	logger.Info("TopstepSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http api shutdown", "error", err)
		}
	}
	logger.Info("TopstepSentinel stopped")
}
