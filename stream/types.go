package stream

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Errors
var (
	ErrClosed       = errors.New("client closed")
	ErrNotConnected = errors.New("not connected")
	ErrCredentials  = errors.New("api key and secret required")
	ErrStale        = errors.New("connection stale (no probe ack)")
)

// DefaultURL is the production WebSocket endpoint.
const DefaultURL = "wss://stream.bydfi.com/ws"

// Envelope is one classified inbound message, delivered to the consumer
// exactly once. Immutable after construction.
type Envelope struct {
	Kind       FeedKind        // classified feed kind
	Stream     string          // raw feed identifier, e.g. "btc-usdt@ticker"
	Data       json.RawMessage // opaque payload
	ReceivedAt time.Time       // local receipt time
}

// AuthState describes the session's authentication progress.
type AuthState int

const (
	AuthNone AuthState = iota // no authentication on this connection
	AuthPending
	AuthAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthPending:
		return "pending"
	case AuthAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Config configures a streaming Client.
type Config struct {
	URL       string // WebSocket URL (default: DefaultURL)
	APIKey    string // API key for private feeds (optional)
	APISecret string // API secret for private feeds (optional)

	PingInterval   time.Duration // probe period (default: 30s)
	PingTimeout    time.Duration // max probe-to-ack delay before the connection is stale (default: 10s)
	ReconnectDelay time.Duration // fixed wait before each reconnect attempt (default: 5s)
	WriteTimeout   time.Duration // write deadline per frame (default: 5s)
	DialTimeout    time.Duration // WebSocket handshake timeout (default: 10s)

	QueueSize int // delivery queue capacity (default: 1024)

	Logger *slog.Logger // nil means slog.Default()
	Dialer Dialer       // nil means the gorilla/websocket dialer
}

// DefaultConfig returns sensible defaults for the production endpoint.
func DefaultConfig() Config {
	return Config{
		URL:            DefaultURL,
		PingInterval:   30 * time.Second,
		PingTimeout:    10 * time.Second,
		ReconnectDelay: 5 * time.Second,
		WriteTimeout:   5 * time.Second,
		DialTimeout:    10 * time.Second,
		QueueSize:      1024,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.PingInterval == 0 {
		c.PingInterval = def.PingInterval
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = def.PingTimeout
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = def.ReconnectDelay
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = def.DialTimeout
	}
	if c.QueueSize == 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats contains runtime counters for the client.
type Stats struct {
	FramesReceived int64 // inbound frames read off the wire
	Routed         int64 // frames delivered to the queue
	ParseErrors    int64 // undecodable frames skipped
	ErrorFrames    int64 // venue error frames discarded
	Discarded      int64 // well-formed frames with no route
	Reconnects     int64 // successful reconnects after the first connect
	Queue          QueueStats
}
