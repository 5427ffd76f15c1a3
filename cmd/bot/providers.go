package main

import (
	"fmt"

	"TopstepSentinel/internal/collector"
	"TopstepSentinel/internal/config"
	"TopstepSentinel/internal/logx"
	"TopstepSentinel/internal/recorder"
	"TopstepSentinel/internal/topstep"
)

// ConfigPath is the YAML config location handed to the injector.
type ConfigPath string

// ProvideConfig loads and validates the config (for Wire).
func ProvideConfig(path ConfigPath) (*config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// ProvideLogger builds the process logger at the configured level (for Wire).
func ProvideLogger(cfg *config.Config) *logx.Logger {
	return logx.New(cfg.LogLevel)
}

// ProvideClient builds the gateway client (for Wire).
func ProvideClient(cfg *config.Config, logger *logx.Logger) (*topstep.Client, error) {
	return topstep.NewClient(cfg.ClientConfig(), topstep.WithLogger(logger.With("component", "topstep")))
}

// ProvideRecorder opens SQLite when a path is configured and falls back to a
// no-op recorder otherwise (for Wire). The cleanup closes the database.
func ProvideRecorder(cfg *config.Config, logger *logx.Logger) (recorder.Recorder, func()) {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder(), func() {}
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.With("component", "recorder"))
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", "error", err)
		return recorder.NewNoopRecorder(), func() {}
	}
	return sr, func() {
		if err := sr.Close(); err != nil {
			logger.Error("close recorder", "error", err)
		}
	}
}

// ProvideCollector wires the default symbol lookup (for Wire).
func ProvideCollector(fetcher collector.Fetcher, rec recorder.Recorder, cfg *config.Config, logger *logx.Logger) *collector.Collector {
	return collector.NewCollector(fetcher, rec, cfg.Topstep.Symbol, cfg.Topstep.Live, logger.With("component", "collector"))
}
