// Command taobook reconciles Bittensor wallet history into a daily
// cost-basis accounting report. Wallet activity comes from the taostats
// API, daily close prices from an exchange (Binance, Bybit or MEXC), and
// the results land in CSV files plus an optional live dashboard.
//
// Usage:
//
//	taobook --config config.yaml
//	taobook --setup (interactive configuration wizard)
//
// Required environment variables:
//
//	TAOSTATS_API_KEY
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/config"
	"github.com/vadiminshakov/taobook/internal"
	"github.com/vadiminshakov/taobook/internal/clients"
	"github.com/vadiminshakov/taobook/internal/setup"
	"github.com/vadiminshakov/taobook/internal/storage/reports"
	"github.com/vadiminshakov/taobook/internal/storage/walletcache"
	"github.com/vadiminshakov/taobook/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")
	flag.Parse()

	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		*configPath = "config.gen.yaml"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	apiKey := os.Getenv("TAOSTATS_API_KEY")
	if apiKey == "" {
		log.Fatal("TAOSTATS_API_KEY environment variable must be set")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fetcher := clients.NewTaostatsClient("", apiKey, cfg.RequestPause, logger)

	prices, err := internal.NewDailyCloser(cfg.Platform)
	if err != nil {
		logger.Fatal("create price feed", zap.Error(err))
	}

	cache, err := walletcache.NewStore(cfg.CacheDir)
	if err != nil {
		logger.Fatal("init wallet cache", zap.Error(err))
	}

	store, err := reports.NewRunStore(cfg.WalDir)
	if err != nil {
		logger.Fatal("init report run store", zap.Error(err))
	}
	defer store.Close()

	if cfg.WebAddr != "" {
		server := web.NewServer(cfg.WebAddr, store)
		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("web server stopped", zap.Error(err))
			}
		}()
		logger.Info("dashboard available", zap.String("addr", cfg.WebAddr))
	}

	pipeline := internal.NewPipeline(cfg, fetcher, prices, cache, store, logger)
	rows, err := pipeline.Run(ctx)
	if err != nil {
		logger.Fatal("pipeline run failed", zap.Error(err))
	}
	logger.Info("run complete",
		zap.String("run_id", store.RunID()),
		zap.Int("report_rows", len(rows)))

	if cfg.WebAddr != "" {
		logger.Info("serving dashboard, press Ctrl+C to exit")
		<-ctx.Done()
	}
}
