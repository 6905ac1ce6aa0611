package rest

import (
	"encoding/json"
	"fmt"
)

// convertKline maps the positional wire form to the named form. The venue
// mixes numbers (timestamps, trade count) and decimal strings in one array.
func convertKline(raw rawKline) (KlineData, error) {
	var k KlineData
	fields := []struct {
		idx  int
		name string
		dst  any
	}{
		{0, "openTime", &k.OpenTime},
		{1, "open", &k.Open},
		{2, "high", &k.High},
		{3, "low", &k.Low},
		{4, "close", &k.Close},
		{5, "volume", &k.Volume},
		{6, "closeTime", &k.CloseTime},
		{7, "quoteVolume", &k.QuoteVolume},
		{8, "trades", &k.Trades},
		{9, "takerBuyBaseVolume", &k.TakerBuyBaseVolume},
		{10, "takerBuyQuoteVolume", &k.TakerBuyQuoteVolume},
	}

	for _, f := range fields {
		if err := json.Unmarshal(raw[f.idx], f.dst); err != nil {
			return KlineData{}, fmt.Errorf("kline field %s: %w", f.name, err)
		}
	}
	return k, nil
}

func convertKlines(raw []rawKline) ([]KlineData, error) {
	klines := make([]KlineData, 0, len(raw))
	for i, r := range raw {
		k, err := convertKline(r)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}
