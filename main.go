// BLE TPMS Monitor: discover, select and monitor Bluetooth Low Energy
// tire pressure sensors with a live terminal display.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/julianjc84/TPMS/config"
	"github.com/julianjc84/TPMS/csvlog"
	"github.com/julianjc84/TPMS/decoder"
	"github.com/julianjc84/TPMS/scanner"
	"github.com/julianjc84/TPMS/store"
	"github.com/julianjc84/TPMS/ui"
)

func main() {
	configPath := flag.String("c", "tpms.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting BLE TPMS monitor",
		zap.Int("sensor_count", len(cfg.Sensors)),
		zap.String("config", *configPath),
	)

	registry := decoder.NewRegistry()
	st := store.New()

	// Pre-seed entries for configured sensors so they show up before
	// any traffic arrives.
	for _, s := range cfg.Sensors {
		st.SetName(strings.ToUpper(s.MACAddress), s.Name)
	}

	var csvLogger *csvlog.Logger
	if cfg.CSV.Enabled {
		csvLogger, err = csvlog.Open(cfg.CSV.Path, logger)
		if err != nil {
			logger.Error("failed to open csv log", zap.Error(err))
			os.Exit(1)
		}
		defer csvLogger.Close()
		logger.Info("csv logging enabled", zap.String("path", cfg.CSV.Path))

		if cfg.CSV.SnapshotCron != "" {
			cronJob, err := csvlog.StartSnapshots(cfg.CSV.SnapshotCron, st, csvLogger, logger)
			if err != nil {
				logger.Error("failed to start csv snapshots", zap.Error(err))
				os.Exit(1)
			}
			defer cronJob.Stop()
		}
	}

	dedup := time.Duration(cfg.Scan.DedupSeconds) * time.Second
	bleScanner := scanner.New(registry, st, csvLogger, dedup, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	menu := ui.New(os.Stdin, os.Stdout, cfg, *configPath, registry, st, bleScanner, logger)
	if err := menu.Run(ctx); err != nil {
		logger.Error("menu failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("BLE TPMS monitor stopped")
}
