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

	"ChipPulse/internal/api"
	"ChipPulse/internal/collector"
	"ChipPulse/internal/config"
	"ChipPulse/internal/model"
	"ChipPulse/internal/pipeline"
	"ChipPulse/internal/recorder"
	"ChipPulse/internal/refresh"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] ChipPulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewTwelveDataFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	runner := pipeline.NewRunner(col, rec)

	defaults := pipeline.Request{
		Tickers:      cfg.Basket.Tickers,
		Period:       model.Period(cfg.Basket.DefaultPeriod),
		IntervalDays: cfg.Basket.IntervalDays,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init refresh scheduler
	holder := refresh.NewService(ctx, runner, defaults)
	if cfg.Schedule.Enabled {
		if err := holder.Register(cfg.Schedule.RefreshCron); err != nil {
			log.Fatalf("[FATAL] register refresh task: %v", err)
		}
		holder.Start()
		defer holder.Stop()
	}

	// Init HTTP server
	profiles, _ := fetcher.(collector.ProfileFetcher)
	handler := api.NewHandler(runner, holder, profiles, defaults)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.SetupRoutes(),
	}
	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Optional: warm the snapshot on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, warming snapshot now")
		go holder.RunNow()
	}

	log.Println("[INFO] ChipPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] ChipPulse stopped")
}
