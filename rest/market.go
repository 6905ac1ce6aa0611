package rest

import (
	"context"

	"github.com/AndroidDev77/bydfipy/sign"
)

// Public endpoint paths.
const (
	pathPing             = "/api/v1/ping"
	pathServerTime       = "/api/v1/time"
	pathExchangeInfo     = "/api/v1/exchangeInfo"
	pathTicker           = "/api/v1/ticker"
	pathTicker24h        = "/api/v1/ticker/24hr"
	pathTickers          = "/api/v1/tickers"
	pathOrderbook        = "/api/v1/depth"
	pathRecentTrades     = "/api/v1/trades"
	pathHistoricalTrades = "/api/v1/historicalTrades"
	pathKlines           = "/api/v1/klines"
)

// Ping tests connectivity to the API.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, pathPing, nil, nil)
}

// ServerTime returns the venue clock in milliseconds.
func (c *Client) ServerTime(ctx context.Context) (int64, error) {
	var st ServerTime
	if err := c.get(ctx, pathServerTime, nil, &st); err != nil {
		return 0, err
	}
	return st.ServerTime, nil
}

// ExchangeInfo returns trading rules and symbol metadata.
func (c *Client) ExchangeInfo(ctx context.Context) (ExchangeInfo, error) {
	var info ExchangeInfo
	err := c.get(ctx, pathExchangeInfo, nil, &info)
	return info, err
}

// Ticker returns the price ticker for a symbol (e.g. "BTC-USDT").
func (c *Client) Ticker(ctx context.Context, symbol string) (TickerData, error) {
	var t TickerData
	params := sign.NewParams().Set("symbol", symbol)
	err := c.get(ctx, pathTicker, params, &t)
	return t, err
}

// Ticker24h returns 24-hour rolling statistics for a symbol.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (TickerData, error) {
	var t TickerData
	params := sign.NewParams().Set("symbol", symbol)
	err := c.get(ctx, pathTicker24h, params, &t)
	return t, err
}

// Tickers returns price tickers for all symbols.
func (c *Client) Tickers(ctx context.Context) ([]TickerData, error) {
	var ts []TickerData
	err := c.get(ctx, pathTickers, nil, &ts)
	return ts, err
}

// Orderbook returns an orderbook snapshot. A zero limit uses the venue
// default depth.
func (c *Client) Orderbook(ctx context.Context, symbol string, limit int) (OrderBookData, error) {
	var ob OrderBookData
	params := sign.NewParams().
		Set("symbol", symbol).
		SetInt("limit", int64(limit))
	err := c.get(ctx, pathOrderbook, params, &ob)
	return ob, err
}

// RecentTrades returns the most recent public trades for a symbol.
func (c *Client) RecentTrades(ctx context.Context, symbol string, limit int) ([]TradeData, error) {
	var trades []TradeData
	params := sign.NewParams().
		Set("symbol", symbol).
		SetInt("limit", int64(limit))
	err := c.get(ctx, pathRecentTrades, params, &trades)
	return trades, err
}

// HistoricalTrades returns older public trades, starting from fromID when it
// is non-zero.
func (c *Client) HistoricalTrades(ctx context.Context, symbol string, limit int, fromID int64) ([]TradeData, error) {
	var trades []TradeData
	params := sign.NewParams().
		Set("symbol", symbol).
		SetInt("limit", int64(limit)).
		SetInt("fromId", fromID)
	err := c.get(ctx, pathHistoricalTrades, params, &trades)
	return trades, err
}

// KlineParams narrows a Klines request. Zero fields are omitted.
type KlineParams struct {
	StartTime int64 // milliseconds
	EndTime   int64 // milliseconds
	Limit     int
}

// Klines returns candlesticks for a symbol and interval (1m, 5m, 1h, 1d, ...).
func (c *Client) Klines(ctx context.Context, symbol, interval string, p KlineParams) ([]KlineData, error) {
	params := sign.NewParams().
		Set("symbol", symbol).
		Set("interval", interval).
		SetInt("startTime", p.StartTime).
		SetInt("endTime", p.EndTime).
		SetInt("limit", int64(p.Limit))

	var raw []rawKline
	if err := c.get(ctx, pathKlines, params, &raw); err != nil {
		return nil, err
	}
	return convertKlines(raw)
}
