package writer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndroidDev77/bydfipy/stream"
)

// tickerPayload is the wire form of a ticker feed event.
type tickerPayload struct {
	Symbol      string `json:"symbol"`
	LastPrice   string `json:"lastPrice"`
	PriceChange string `json:"priceChange"`
	Volume      string `json:"volume"`
	QuoteVolume string `json:"quoteVolume"`
	High        string `json:"high"`
	Low         string `json:"low"`
	CloseTime   int64  `json:"closeTime"`
}

// TickerWriter consumes ticker envelopes and writes to the tickers table.
type TickerWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the stream dispatcher
	input <-chan stream.Envelope

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []tickerRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewTickerWriter creates a new TickerWriter.
func NewTickerWriter(
	cfg WriterConfig,
	input <-chan stream.Envelope,
	db *pgxpool.Pool,
	logger *slog.Logger,
) *TickerWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TickerWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]tickerRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming envelopes and writing to the database.
func (w *TickerWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("ticker writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *TickerWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping ticker writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("ticker writer stopped")
	case <-ctx.Done():
		w.logger.Warn("ticker writer stop timed out")
	}

	// Final flush
	w.flush()

	return nil
}

// Stats returns current metrics.
func (w *TickerWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads envelopes and accumulates batches.
func (w *TickerWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case env, ok := <-w.input:
			if !ok {
				return
			}
			w.handleEnvelope(env)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *TickerWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// handleEnvelope decodes and adds an envelope to the batch.
func (w *TickerWriter) handleEnvelope(env stream.Envelope) {
	row, err := w.transform(env)
	if err != nil {
		w.logger.Warn("skipping undecodable ticker", "stream", env.Stream, "error", err)
		w.batchMu.Lock()
		w.metrics.DecodeErrors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// transform decodes an envelope payload into a tickerRow.
func (w *TickerWriter) transform(env stream.Envelope) (tickerRow, error) {
	var p tickerPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return tickerRow{}, err
	}

	symbol := p.Symbol
	if symbol == "" {
		if feed, ok := stream.ParseFeedID(env.Stream); ok {
			symbol = feed.Symbol
		}
	}

	return tickerRow{
		ReceivedAt:  env.ReceivedAt.UnixMicro(),
		CloseTime:   p.CloseTime,
		Symbol:      symbol,
		LastPrice:   p.LastPrice,
		PriceChange: p.PriceChange,
		Volume:      p.Volume,
		QuoteVolume: p.QuoteVolume,
		High:        p.High,
		Low:         p.Low,
	}, nil
}

// flush writes the current batch to the database.
func (w *TickerWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]tickerRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed tickers",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *TickerWriter) batchInsert(rows []tickerRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO tickers (received_at, close_time, symbol, last_price, price_change, volume, quote_volume, high, low)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (symbol, close_time) DO NOTHING
		`, r.ReceivedAt, r.CloseTime, r.Symbol, r.LastPrice, r.PriceChange, r.Volume, r.QuoteVolume, r.High, r.Low)
	}

	results := w.db.SendBatch(w.ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
