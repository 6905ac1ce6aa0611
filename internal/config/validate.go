package config

import (
	"errors"
	"fmt"
	"slices"
)

// validChannels are the feed channel names a recorder can subscribe to.
var validChannels = map[string]bool{
	"ticker":     true,
	"ticker.24h": true,
	"orderbook":  true,
	"trades":     true,
	"klines":     true,
}

// Validate checks that all required fields are set and values are valid.
func (c *RecorderConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if len(c.Feeds.Symbols) == 0 {
		return errors.New("feeds.symbols is required")
	}
	for _, ch := range c.Feeds.Channels {
		if !validChannels[ch] {
			return fmt.Errorf("feeds.channels: unknown channel %q", ch)
		}
	}
	if slices.Contains(c.Feeds.Channels, "klines") && len(c.Feeds.KlineIntervals) == 0 {
		return errors.New("feeds.kline_intervals is required when the klines channel is enabled")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Stream.QueueSize < 1 {
		return errors.New("stream.queue_size must be >= 1")
	}
	if c.Stream.PingTimeout >= c.Stream.PingInterval {
		return fmt.Errorf("stream.ping_timeout (%v) must be less than ping_interval (%v)",
			c.Stream.PingTimeout, c.Stream.PingInterval)
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}

	if c.Poller.Concurrency < 1 {
		return errors.New("poller.concurrency must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
