package writer

import (
	"time"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: time.Second,
	}
}

// tickerRow represents a row for the tickers table. Prices and sizes stay
// decimal strings end-to-end; they land in NUMERIC columns.
type tickerRow struct {
	ReceivedAt  int64 // Microseconds
	CloseTime   int64 // Venue event time, milliseconds
	Symbol      string
	LastPrice   string
	PriceChange string
	Volume      string
	QuoteVolume string
	High        string
	Low         string
}

// tradeRow represents a row for the trades table.
type tradeRow struct {
	TradeID    string // venue id, or a generated UUID when the venue sent none
	ExchangeTs int64  // Milliseconds
	ReceivedAt int64  // Microseconds
	Symbol     string
	Price      string
	Qty        string
	BuyerMaker bool
}

// snapshotRow represents a row for the orderbook_snapshots table.
type snapshotRow struct {
	SnapshotTs   int64 // Microseconds
	Symbol       string
	Source       string // "ws" or "rest"
	LastUpdateID int64
	Bids         []byte // JSONB: [{price, quantity}, ...]
	Asks         []byte // JSONB
	BestBid      string
	BestAsk      string
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts      int64
	Conflicts    int64
	Errors       int64
	DecodeErrors int64
	Flushes      int64
}
