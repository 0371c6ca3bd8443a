package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheBitty/TradingApp/internal/archive"
	"github.com/TheBitty/TradingApp/internal/config"
	"github.com/TheBitty/TradingApp/internal/database"
	"github.com/TheBitty/TradingApp/internal/feed"
	"github.com/TheBitty/TradingApp/internal/model"
	"github.com/TheBitty/TradingApp/internal/refresh"
	"github.com/TheBitty/TradingApp/internal/shm"
	"github.com/TheBitty/TradingApp/internal/store"
	"github.com/TheBitty/TradingApp/internal/stream"
	"github.com/TheBitty/TradingApp/internal/symbols"
	"github.com/TheBitty/TradingApp/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bridged.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting bridge",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"segment", cfg.SharedMemory.Name,
		"layout", cfg.SharedMemory.Layout,
		"store_root", cfg.Store.Root,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the series store
	st, err := store.New(cfg.Store.Root)
	if err != nil {
		logger.Error("failed to open series store", "error", err)
		os.Exit(1)
	}

	// Shared-memory channel. Lazy so the bridge starts even when the
	// segment does not exist yet; every write retries the attach.
	layout, err := shm.ParseLayout(cfg.SharedMemory.Layout)
	if err != nil {
		logger.Error("invalid shared-memory layout", "error", err)
		os.Exit(1)
	}
	mode, err := shm.ParseMode(cfg.SharedMemory.Mode)
	if err != nil {
		logger.Error("invalid shared-memory mode", "error", err)
		os.Exit(1)
	}
	channel := shm.NewLazy(shm.Config{
		Name:   cfg.SharedMemory.Name,
		Dir:    cfg.SharedMemory.Dir,
		Mode:   mode,
		Layout: layout,
	})
	defer channel.Close()

	// Crypto feed
	crypto := feed.NewCoinGecko(
		cfg.Feeds.CoinGecko.BaseURL,
		cfg.Feeds.CoinGecko.IDs,
		feed.WithLogger(logger),
		feed.WithTimeout(cfg.Feeds.CoinGecko.Timeout),
		feed.WithRetries(cfg.Feeds.CoinGecko.MaxRetries, time.Second),
	)

	// Symbol universe
	index := symbols.New(st)
	var worklist refresh.Worklist = index
	if len(cfg.Refresh.Symbols) > 0 {
		worklist = refresh.StaticWorklist(cfg.Refresh.Symbols)
		logger.Info("using pinned worklist", "symbols", cfg.Refresh.Symbols)
	}

	// Optional Postgres archive
	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive database",
			"host", cfg.Archive.Postgres.Host,
			"port", cfg.Archive.Postgres.Port,
			"database", cfg.Archive.Postgres.Name,
		)

		pool, err := database.Connect(ctx, cfg.Archive.Postgres)
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		archiver = archive.New(archive.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
		}, pool, logger)

		if err := archiver.Start(ctx); err != nil {
			logger.Error("failed to start archiver", "error", err)
			os.Exit(1)
		}
		logger.Info("archive connected", "run_id", archiver.RunID())
	}

	// Refresh loop
	loopOpts := []refresh.Option{}
	if archiver != nil {
		loopOpts = append(loopOpts, refresh.WithSink(archiver))
	}
	loop := refresh.New(refresh.Config{
		Interval:      cfg.Refresh.Interval,
		Pacing:        cfg.Refresh.Pacing,
		LookbackDays:  cfg.Refresh.LookbackDays,
		CryptoTickers: cfg.Refresh.CryptoTickers,
	}, st, channel, crypto, worklist, logger, loopOpts...)

	// Optional live kline stream
	var ingestor *stream.Ingestor
	if cfg.Stream.Enabled {
		streamOpts := []stream.Option{}
		if archiver != nil {
			streamOpts = append(streamOpts, stream.WithSink(archiver))
		}
		ingestor = stream.New(stream.Config{
			URL:                cfg.Stream.URL,
			Symbols:            cfg.Stream.Symbols,
			Interval:           cfg.Stream.Interval,
			ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
			ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
		}, st, logger, streamOpts...)

		if err := ingestor.Start(ctx); err != nil {
			logger.Error("failed to start stream ingestor", "error", err)
			os.Exit(1)
		}
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Monitor.Port),
		Handler: createHealthHandler(loop, index, channel, archiver, ingestor),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Monitor.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Start the refresh loop
	if err := loop.Start(ctx); err != nil {
		logger.Error("failed to start refresh loop", "error", err)
		os.Exit(1)
	}

	logger.Info("bridge running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Monitor.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if ingestor != nil {
		if err := ingestor.Stop(shutdownCtx); err != nil {
			logger.Warn("stream shutdown", "error", err)
		}
	}
	if err := loop.Stop(shutdownCtx); err != nil {
		logger.Warn("refresh loop shutdown", "error", err)
	}
	if archiver != nil {
		if err := archiver.Stop(shutdownCtx); err != nil {
			logger.Warn("archiver shutdown", "error", err)
		}
	}
	if err := channel.Close(); err != nil {
		logger.Warn("shared-memory close", "error", err)
	}
	healthServer.Shutdown(shutdownCtx)

	logger.Info("bridge stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(
	loop *refresh.Loop,
	index *symbols.Index,
	channel *shm.LazyChannel,
	archiver *archive.Archiver,
	ingestor *stream.Ingestor,
) http.Handler {
	mux := http.NewServeMux()
	startedAt := time.Now()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string         `json:"status"`
			Uptime     string         `json:"uptime"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Uptime:     time.Since(startedAt).Round(time.Second).String(),
			Components: make(map[string]any),
		}

		state := loop.State()
		health.Components["refresh_loop"] = map[string]any{
			"state": state.String(),
		}
		if state != refresh.StateRunning {
			health.Status = "unhealthy"
		}

		health.Components["shared_memory"] = map[string]any{
			"path":     channel.Config().Path(),
			"layout":   string(channel.Config().Layout),
			"attached": channel.Connected(),
		}

		if sum, err := index.Snapshot(); err != nil {
			health.Status = "degraded"
			health.Components["symbols"] = map[string]string{"error": err.Error()}
		} else {
			health.Components["symbols"] = map[string]any{
				"stocks": sum.Count(model.AssetStocks),
				"forex":  sum.Count(model.AssetForex),
				"crypto": sum.Count(model.AssetCrypto),
				"total":  sum.Total,
			}
			if sum.Total == 0 {
				health.Status = "degraded"
			}
		}

		if archiver != nil {
			health.Components["archive"] = archiver.Stats()
		}
		if ingestor != nil {
			health.Components["stream"] = ingestor.Stats()
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/symbols", func(w http.ResponseWriter, r *http.Request) {
		sum, err := index.Snapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"total":   sum.Total,
			"classes": sum.Classes,
		})
	})

	return mux
}
