package stream

import "strings"

// FeedKind is the closed set of feed classifications.
type FeedKind string

const (
	FeedTicker    FeedKind = "ticker"
	FeedTicker24h FeedKind = "ticker.24h"
	FeedOrderbook FeedKind = "orderbook"
	FeedTrades    FeedKind = "trades"
	FeedKlines    FeedKind = "klines"
	FeedAccount   FeedKind = "account"
	FeedOrder     FeedKind = "order"
	FeedUnknown   FeedKind = "unknown"
)

// Feed is a parsed feed identifier. The grammar is
// "<symbol-lowercase>@<kind>[.<param>]" for market feeds (klines use
// "kline_<interval>") and the bare names "account" and "order" for
// private feeds.
type Feed struct {
	Symbol string   // empty for private feeds
	Kind   FeedKind // FeedUnknown when the kind token is unrecognized
	Param  string   // orderbook depth or kline interval, if any
}

// ParseFeedID parses a feed identifier. ok is false when the identifier
// does not match the grammar at all.
func ParseFeedID(id string) (Feed, bool) {
	switch id {
	case "account":
		return Feed{Kind: FeedAccount}, true
	case "order":
		return Feed{Kind: FeedOrder}, true
	}

	symbol, rest, found := strings.Cut(id, "@")
	if !found || symbol == "" || rest == "" {
		return Feed{}, false
	}

	if interval, isKline := strings.CutPrefix(rest, "kline_"); isKline && interval != "" {
		return Feed{Symbol: symbol, Kind: FeedKlines, Param: interval}, true
	}

	base, param, _ := strings.Cut(rest, ".")
	switch base {
	case "ticker":
		if param == "" {
			return Feed{Symbol: symbol, Kind: FeedTicker}, true
		}
		if param == "24h" {
			return Feed{Symbol: symbol, Kind: FeedTicker24h, Param: param}, true
		}
	case "orderbook":
		return Feed{Symbol: symbol, Kind: FeedOrderbook, Param: param}, true
	case "trades":
		return Feed{Symbol: symbol, Kind: FeedTrades, Param: param}, true
	}

	return Feed{Symbol: symbol, Kind: FeedUnknown, Param: param}, true
}

// Classify maps a feed identifier to its kind. Identifiers outside the
// grammar classify as FeedUnknown.
func Classify(id string) FeedKind {
	f, ok := ParseFeedID(id)
	if !ok {
		return FeedUnknown
	}
	return f.Kind
}

// isPrivate reports whether the feed requires an authenticated session.
func isPrivate(id string) bool {
	k := Classify(id)
	return k == FeedAccount || k == FeedOrder
}

// Feed identifier builders, mirroring the venue's naming convention.

// TickerFeed returns the ticker feed id for a symbol, e.g. "btc-usdt@ticker".
func TickerFeed(symbol string) string {
	return strings.ToLower(symbol) + "@ticker"
}

// Ticker24hFeed returns the 24h rolling ticker feed id for a symbol.
func Ticker24hFeed(symbol string) string {
	return strings.ToLower(symbol) + "@ticker.24h"
}

// OrderbookFeed returns the orderbook feed id for a symbol at the given
// depth ("5", "10", "20", "50", "100", "500", "1000"). An empty depth
// defaults to "10".
func OrderbookFeed(symbol, depth string) string {
	if depth == "" {
		depth = "10"
	}
	return strings.ToLower(symbol) + "@orderbook." + depth
}

// TradesFeed returns the trades feed id for a symbol.
func TradesFeed(symbol string) string {
	return strings.ToLower(symbol) + "@trades"
}

// KlineFeed returns the kline feed id for a symbol and interval
// (1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M).
func KlineFeed(symbol, interval string) string {
	return strings.ToLower(symbol) + "@kline_" + interval
}
