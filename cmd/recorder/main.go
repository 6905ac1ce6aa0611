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

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/AndroidDev77/bydfipy/internal/config"
	"github.com/AndroidDev77/bydfipy/internal/database"
	"github.com/AndroidDev77/bydfipy/internal/poller"
	"github.com/AndroidDev77/bydfipy/internal/version"
	"github.com/AndroidDev77/bydfipy/internal/writer"
	"github.com/AndroidDev77/bydfipy/rest"
	"github.com/AndroidDev77/bydfipy/stream"
)

func main() {
	configPath := flag.String("config", "configs/recorder.local.yaml", "path to config file")
	healthPort := flag.Int("health-port", 8080, "health endpoint port")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting recorder",
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
		"rest_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
		"symbols", len(cfg.Feeds.Symbols),
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

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create REST client
	restClient := rest.NewClient(
		rest.WithBaseURL(cfg.API.RestURL),
		rest.WithCredentials(cfg.API.APIKey, cfg.API.APISecret),
		rest.WithLogger(logger),
		rest.WithTimeout(cfg.API.Timeout),
		rest.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Check exchange reachability
	logger.Info("checking exchange status")
	if err := restClient.Ping(ctx); err != nil {
		logger.Error("exchange unreachable", "error", err)
		os.Exit(1)
	}
	serverTime, err := restClient.ServerTime(ctx)
	if err != nil {
		logger.Error("failed to get server time", "error", err)
		os.Exit(1)
	}
	logger.Info("exchange reachable",
		"server_time", serverTime,
		"skew", time.Since(time.UnixMilli(serverTime)),
	)

	// Create streaming client
	streamClient := stream.New(stream.Config{
		URL:            cfg.API.WSURL,
		APIKey:         cfg.API.APIKey,
		APISecret:      cfg.API.APISecret,
		PingInterval:   cfg.Stream.PingInterval,
		PingTimeout:    cfg.Stream.PingTimeout,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		QueueSize:      cfg.Stream.QueueSize,
		Logger:         logger,
	})
	defer streamClient.Close()

	// Create writers
	writerCfg := writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
	}
	tickerCh := make(chan stream.Envelope, cfg.Stream.QueueSize)
	tradeCh := make(chan stream.Envelope, cfg.Stream.QueueSize)

	tickerWriter := writer.NewTickerWriter(writerCfg, tickerCh, pool, logger)
	tradeWriter := writer.NewTradeWriter(writerCfg, tradeCh, pool, logger)
	snapshotWriter := writer.NewSnapshotWriter(writerCfg, pool, logger)

	if err := tickerWriter.Start(ctx); err != nil {
		logger.Error("failed to start ticker writer", "error", err)
		os.Exit(1)
	}
	if err := tradeWriter.Start(ctx); err != nil {
		logger.Error("failed to start trade writer", "error", err)
		os.Exit(1)
	}
	if err := snapshotWriter.Start(ctx); err != nil {
		logger.Error("failed to start snapshot writer", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		tickerWriter.Stop(stopCtx)
		tradeWriter.Stop(stopCtx)
		snapshotWriter.Stop(stopCtx)
	}()

	// Create snapshot poller
	snapPoller := poller.New(
		poller.Config{
			Interval:    cfg.Poller.Interval,
			Concurrency: cfg.Poller.Concurrency,
			Depth:       cfg.Poller.Depth,
			Timeout:     cfg.API.Timeout,
		},
		restClient,
		poller.SymbolSourceFunc(func() []string { return cfg.Feeds.Symbols }),
		snapshotWriter,
		logger,
	)
	if err := snapPoller.Start(ctx); err != nil {
		logger.Error("failed to start snapshot poller", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		snapPoller.Stop(stopCtx)
	}()

	// Start health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *healthPort),
		Handler: createHealthHandler(pool, streamClient),
	}
	go func() {
		logger.Info("starting health server", "port", *healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Subscribe to all configured feeds. The client records the intent and
	// replays it after every reconnect.
	feeds := cfg.Feeds.FeedIDs()
	if err := streamClient.Subscribe(ctx, feeds...); err != nil {
		logger.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}
	logger.Info("subscribed", "feeds", len(feeds))

	// Dispatch envelopes to the writers.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(tickerCh)
		defer close(tradeCh)
		for env := range streamClient.Messages(gctx) {
			var out chan stream.Envelope
			switch env.Kind {
			case stream.FeedTicker, stream.FeedTicker24h:
				out = tickerCh
			case stream.FeedTrades:
				out = tradeCh
			default:
				// Orderbook deltas, klines and private feeds are not
				// persisted by this instance.
				continue
			}
			select {
			case out <- env:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	logger.Info("recorder running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", *healthPort),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	streamClient.Close()
	g.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("recorder stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool, client *stream.Client) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["timescaledb"] = "connected"
		}

		// Check stream session
		if client.Connected() {
			health.Components["stream"] = "connected"
		} else {
			health.Status = "degraded"
			health.Components["stream"] = "disconnected"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := client.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"frames_received": stats.FramesReceived,
			"routed":          stats.Routed,
			"parse_errors":    stats.ParseErrors,
			"error_frames":    stats.ErrorFrames,
			"discarded":       stats.Discarded,
			"reconnects":      stats.Reconnects,
			"subscriptions":   client.Subscriptions(),
		})
	})

	return mux
}
