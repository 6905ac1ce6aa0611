package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-recorder
  az: us-east-1a
api:
  rest_url: https://api.bydfi.com
  ws_url: wss://stream.bydfi.com/ws
feeds:
  symbols: [BTC-USDT, ETH-USDT]
  channels: [ticker, trades]
database:
  host: localhost
  port: 5432
  name: test_ts
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-recorder" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-recorder")
	}
	if cfg.API.RestURL != "https://api.bydfi.com" {
		t.Errorf("API.RestURL = %q, want %q", cfg.API.RestURL, "https://api.bydfi.com")
	}
	if len(cfg.Feeds.Symbols) != 2 || cfg.Feeds.Symbols[1] != "ETH-USDT" {
		t.Errorf("Feeds.Symbols = %v", cfg.Feeds.Symbols)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_API_SECRET", "secret123")

	yaml := `
instance:
  id: test-recorder
api:
  api_key: test-key
  api_secret: ${TEST_API_SECRET}
database:
  host: localhost
  name: test_ts
  user: testuser
  password: ${TEST_API_SECRET}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.APISecret != "secret123" {
		t.Errorf("API.APISecret = %q, want %q", cfg.API.APISecret, "secret123")
	}
	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-recorder
feeds:
  symbols: [BTC-USDT]
database:
  host: localhost
  name: test_ts
  user: testuser
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.RestURL != DefaultRestURL {
		t.Errorf("API.RestURL = %q, want default %q", cfg.API.RestURL, DefaultRestURL)
	}
	if cfg.API.WSURL != DefaultWSURL {
		t.Errorf("API.WSURL = %q, want default %q", cfg.API.WSURL, DefaultWSURL)
	}
	if cfg.Stream.PingInterval != DefaultPingInterval {
		t.Errorf("Stream.PingInterval = %v, want default %v", cfg.Stream.PingInterval, DefaultPingInterval)
	}
	if cfg.Stream.ReconnectDelay != DefaultReconnectDelay {
		t.Errorf("Stream.ReconnectDelay = %v, want default %v", cfg.Stream.ReconnectDelay, DefaultReconnectDelay)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.MaxConns != DefaultMaxConns {
		t.Errorf("Database.MaxConns = %d, want default %d", cfg.Database.MaxConns, DefaultMaxConns)
	}
	if cfg.Writers.BatchSize != DefaultBatchSize {
		t.Errorf("Writers.BatchSize = %d, want default %d", cfg.Writers.BatchSize, DefaultBatchSize)
	}
	if got := cfg.Feeds.Channels; len(got) != 2 || got[0] != "ticker" || got[1] != "trades" {
		t.Errorf("Feeds.Channels = %v, want default [ticker trades]", got)
	}
}

func TestValidate(t *testing.T) {
	validDB := DBConfig{
		Host: "localhost", Name: "db", User: "user", Password: "pass",
		MaxConns: 10, MinConns: 2,
	}
	validStream := StreamConfig{
		PingInterval:   30 * time.Second,
		PingTimeout:    10 * time.Second,
		ReconnectDelay: 5 * time.Second,
		QueueSize:      1024,
	}

	tests := []struct {
		name    string
		cfg     RecorderConfig
		wantErr string
	}{
		{
			name:    "missing instance id",
			cfg:     RecorderConfig{},
			wantErr: "instance.id is required",
		},
		{
			name: "missing symbols",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
			},
			wantErr: "feeds.symbols is required",
		},
		{
			name: "unknown channel",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
				Feeds:    FeedsConfig{Symbols: []string{"BTC-USDT"}, Channels: []string{"candles"}},
			},
			wantErr: `feeds.channels: unknown channel "candles"`,
		},
		{
			name: "klines without intervals",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
				Feeds:    FeedsConfig{Symbols: []string{"BTC-USDT"}, Channels: []string{"klines"}},
			},
			wantErr: "feeds.kline_intervals is required when the klines channel is enabled",
		},
		{
			name: "missing database host",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
				Feeds:    FeedsConfig{Symbols: []string{"BTC-USDT"}, Channels: []string{"ticker"}},
			},
			wantErr: "database.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
				Feeds:    FeedsConfig{Symbols: []string{"BTC-USDT"}, Channels: []string{"ticker"}},
				Database: DBConfig{
					Host: "localhost", Name: "db", User: "user", Password: "pass",
					MaxConns: 5, MinConns: 10,
				},
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "ping timeout not below interval",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
				Feeds:    FeedsConfig{Symbols: []string{"BTC-USDT"}, Channels: []string{"ticker"}},
				Database: validDB,
				Stream: StreamConfig{
					PingInterval: 10 * time.Second,
					PingTimeout:  10 * time.Second,
					QueueSize:    1024,
				},
			},
			wantErr: "stream.ping_timeout (10s) must be less than ping_interval (10s)",
		},
		{
			name: "valid config",
			cfg: RecorderConfig{
				Instance: InstanceConfig{ID: "test"},
				Feeds:    FeedsConfig{Symbols: []string{"BTC-USDT"}, Channels: []string{"ticker", "trades"}},
				Database: validDB,
				Stream:   validStream,
				Writers:  WritersConfig{BatchSize: 1000, FlushInterval: time.Second},
				Poller:   PollerConfig{Interval: time.Minute, Concurrency: 4, Depth: 100},
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestFeedIDs(t *testing.T) {
	f := FeedsConfig{
		Symbols:        []string{"BTC-USDT", "ETH-USDT"},
		Channels:       []string{"ticker", "orderbook", "klines"},
		KlineIntervals: []string{"1m", "1h"},
		OrderbookDepth: "20",
	}

	got := f.FeedIDs()
	want := []string{
		"btc-usdt@ticker",
		"btc-usdt@orderbook.20",
		"btc-usdt@kline_1m",
		"btc-usdt@kline_1h",
		"eth-usdt@ticker",
		"eth-usdt@orderbook.20",
		"eth-usdt@kline_1m",
		"eth-usdt@kline_1h",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FeedIDs() = %v, want %v", got, want)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
