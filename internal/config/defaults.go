package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL        = "https://api.bydfi.com"
	DefaultWSURL          = "wss://stream.bydfi.com/ws"
	DefaultAPITimeout     = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 10
	DefaultMinConns       = 2
	DefaultPingInterval   = 30 * time.Second
	DefaultPingTimeout    = 10 * time.Second
	DefaultReconnectDelay = 5 * time.Second
	DefaultQueueSize      = 1024
	DefaultOrderbookDepth = "10"
	DefaultBatchSize      = 1000
	DefaultFlushInterval  = 1 * time.Second
	DefaultPollInterval   = 1 * time.Minute
	DefaultPollDepth      = 100
	DefaultConcurrency    = 4
)

func (c *RecorderConfig) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Feed defaults
	if len(c.Feeds.Channels) == 0 {
		c.Feeds.Channels = []string{"ticker", "trades"}
	}
	if c.Feeds.OrderbookDepth == "" {
		c.Feeds.OrderbookDepth = DefaultOrderbookDepth
	}

	// Stream defaults
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.PingTimeout == 0 {
		c.Stream.PingTimeout = DefaultPingTimeout
	}
	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Stream.QueueSize == 0 {
		c.Stream.QueueSize = DefaultQueueSize
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Writer defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultConcurrency
	}
	if c.Poller.Depth == 0 {
		c.Poller.Depth = DefaultPollDepth
	}
}
