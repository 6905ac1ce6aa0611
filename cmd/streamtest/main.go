// streamtest connects to the BYDFi WebSocket and dumps envelopes to console.
// Usage: go run ./cmd/streamtest --config configs/recorder.local.yaml
//
// Credentials are only needed for private feeds (account / order):
//
//	BYDFI_API_KEY    - API key from the BYDFi dashboard
//	BYDFI_API_SECRET - matching API secret
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndroidDev77/bydfipy/internal/config"
	"github.com/AndroidDev77/bydfipy/stream"
)

func main() {
	configPath := flag.String("config", "configs/recorder.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full payload JSON")
	userData := flag.Bool("user-data", false, "also subscribe to private account/order feeds")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	client := stream.New(stream.Config{
		URL:            cfg.API.WSURL,
		APIKey:         cfg.API.APIKey,
		APISecret:      cfg.API.APISecret,
		PingInterval:   cfg.Stream.PingInterval,
		PingTimeout:    cfg.Stream.PingTimeout,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		QueueSize:      cfg.Stream.QueueSize,
		Logger:         logger,
	})
	defer client.Close()

	feeds := cfg.Feeds.FeedIDs()
	if len(feeds) == 0 {
		logger.Error("no feeds configured")
		os.Exit(1)
	}

	logger.Info("subscribing", "url", cfg.API.WSURL, "feeds", len(feeds))
	if err := client.Subscribe(ctx, feeds...); err != nil {
		logger.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}

	if *userData {
		if err := client.SubscribeUserData(ctx); err != nil {
			logger.Error("failed to subscribe to user data", "error", err)
			os.Exit(1)
		}
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := client.Stats()
				logger.Info("stats",
					"connected", client.Connected(),
					"auth", client.AuthStatus().String(),
					"frames_received", stats.FramesReceived,
					"routed", stats.Routed,
					"parse_errors", stats.ParseErrors,
					"error_frames", stats.ErrorFrames,
					"discarded", stats.Discarded,
					"reconnects", stats.Reconnects,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	for env := range client.Messages(ctx) {
		printEnvelope(env, *verbose)
	}

	logger.Info("shutdown complete")
}

func printEnvelope(env stream.Envelope, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(env.Data, "", "  ")
		fmt.Printf("[%s] %s %s\n", env.Kind, env.Stream, data)
		return
	}

	switch env.Kind {
	case stream.FeedTicker, stream.FeedTicker24h:
		var p struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
			Volume    string `json:"volume"`
		}
		json.Unmarshal(env.Data, &p)
		fmt.Printf("[TICKER] stream=%s symbol=%s price=%s vol=%s\n",
			env.Stream, p.Symbol, p.LastPrice, p.Volume)
	case stream.FeedTrades:
		var p struct {
			Price string `json:"price"`
			Qty   string `json:"qty"`
		}
		json.Unmarshal(env.Data, &p)
		fmt.Printf("[TRADE] stream=%s price=%s qty=%s\n", env.Stream, p.Price, p.Qty)
	case stream.FeedOrderbook:
		var p struct {
			Bids []json.RawMessage `json:"bids"`
			Asks []json.RawMessage `json:"asks"`
		}
		json.Unmarshal(env.Data, &p)
		fmt.Printf("[ORDERBOOK] stream=%s bids=%d asks=%d\n", env.Stream, len(p.Bids), len(p.Asks))
	default:
		fmt.Printf("[%s] stream=%s payload=%d bytes\n", env.Kind, env.Stream, len(env.Data))
	}
}
