package config

import "time"

// RecorderConfig is the root configuration for a recorder instance.
type RecorderConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Stream   StreamConfig   `yaml:"stream"`
	Database DBConfig       `yaml:"database"`
	Writers  WritersConfig  `yaml:"writers"`
	Poller   PollerConfig   `yaml:"poller"`
}

// InstanceConfig identifies this recorder.
type InstanceConfig struct {
	ID string `yaml:"id"`
	AZ string `yaml:"az"`
}

// APIConfig holds BYDFi API settings.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	WSURL      string        `yaml:"ws_url"`
	APIKey     string        `yaml:"api_key"`
	APISecret  string        `yaml:"api_secret"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// FeedsConfig selects the market data to record.
type FeedsConfig struct {
	Symbols        []string `yaml:"symbols"`         // e.g. ["BTC-USDT", "ETH-USDT"]
	Channels       []string `yaml:"channels"`        // ticker, ticker.24h, orderbook, trades, klines
	KlineIntervals []string `yaml:"kline_intervals"` // for the klines channel
	OrderbookDepth string   `yaml:"orderbook_depth"` // for the orderbook channel
}

// StreamConfig holds streaming connection settings.
type StreamConfig struct {
	PingInterval   time.Duration `yaml:"ping_interval"`
	PingTimeout    time.Duration `yaml:"ping_timeout"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	QueueSize      int           `yaml:"queue_size"`
}

// DBConfig holds the TimescaleDB connection for recorded ticks.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// PollerConfig holds orderbook snapshot poller settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	Depth       int           `yaml:"depth"`
}
