package config

import "github.com/AndroidDev77/bydfipy/stream"

// FeedIDs expands the feed selection into the concrete feed ids to
// subscribe: one per symbol/channel pair, and one per interval for klines.
func (f FeedsConfig) FeedIDs() []string {
	var feeds []string
	for _, symbol := range f.Symbols {
		for _, channel := range f.Channels {
			switch channel {
			case "ticker":
				feeds = append(feeds, stream.TickerFeed(symbol))
			case "ticker.24h":
				feeds = append(feeds, stream.Ticker24hFeed(symbol))
			case "orderbook":
				feeds = append(feeds, stream.OrderbookFeed(symbol, f.OrderbookDepth))
			case "trades":
				feeds = append(feeds, stream.TradesFeed(symbol))
			case "klines":
				for _, interval := range f.KlineIntervals {
					feeds = append(feeds, stream.KlineFeed(symbol, interval))
				}
			}
		}
	}
	return feeds
}
