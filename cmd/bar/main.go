// Command bar prints the last closed daily bar of a symbol root as JSON and
// optionally exports it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TopstepSentinel/internal/config"
	"TopstepSentinel/internal/logx"
	"TopstepSentinel/internal/saver"
	"TopstepSentinel/internal/topstep"
)

func main() {
	var (
		cfgPath = flag.String("config", "configs/config.yaml", "path to YAML config")
		symbol  = flag.String("symbol", "", "symbol root, e.g. MGC (default from config)")
		live    = flag.Bool("live", false, "query the live environment")
		out     = flag.String("out", "", "export directory (empty: stdout only)")
		format  = flag.String("format", "json", "export format: json, csv, parquet")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	if err := run(*cfgPath, *symbol, *live, *out, *format, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "bar: %v\n", err)
		if code := topstep.TextCode(err); code != "" {
			fmt.Fprintf(os.Stderr, "code: %s\n", code)
		}
		os.Exit(1)
	}
}

func run(cfgPath, symbol string, live bool, out, format string, timeout time.Duration) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if symbol == "" {
		symbol = cfg.Topstep.Symbol
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	live = live || cfg.Topstep.Live

	var bs saver.BarSaver
	if out != "" {
		if bs = saver.New(format); bs == nil {
			return fmt.Errorf("unsupported format %q (use: csv, parquet, json)", format)
		}
	}

	logger := logx.NewWithWriter(os.Stderr, cfg.LogLevel)
	client, err := topstep.NewClient(cfg.ClientConfig(), topstep.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := client.Snapshot(ctx, symbol, live)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap.Bar); err != nil {
		return err
	}
	if !snap.Found() {
		logger.Warn("no bar", "symbol", symbol, "contract_id", snap.ContractID)
		return nil
	}

	if bs != nil {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("create out dir: %w", err)
		}
		name := fmt.Sprintf("%s_%s.%s", symbol, snap.Bar.Timestamp.UTC().Format("20060102"), bs.Extension())
		path := filepath.Join(out, name)
		if err := bs.Save(saver.FromSnapshot(snap), path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		logger.Info("bar exported", "path", path)
	}
	return nil
}
