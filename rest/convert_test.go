package rest

import (
	"encoding/json"
	"testing"
)

func TestConvertKline(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		var raw rawKline
		row := `[1700000000000,"64000.1","64100.2","63900.3","64050.4","12.5",1700000059999,"800625.0",321,"6.2","396310.0"]`
		if err := json.Unmarshal([]byte(row), &raw); err != nil {
			t.Fatalf("unmarshal row: %v", err)
		}

		k, err := convertKline(raw)
		if err != nil {
			t.Fatalf("convertKline failed: %v", err)
		}

		want := KlineData{
			OpenTime:            1700000000000,
			Open:                "64000.1",
			High:                "64100.2",
			Low:                 "63900.3",
			Close:               "64050.4",
			Volume:              "12.5",
			CloseTime:           1700000059999,
			QuoteVolume:         "800625.0",
			Trades:              321,
			TakerBuyBaseVolume:  "6.2",
			TakerBuyQuoteVolume: "396310.0",
		}
		if k != want {
			t.Errorf("kline = %+v, want %+v", k, want)
		}
	})

	t.Run("wrong field type", func(t *testing.T) {
		var raw rawKline
		row := `["not-a-time","64000","64100","63900","64050","12.5",1700000059999,"800625.0",321,"6.2","396310.0"]`
		if err := json.Unmarshal([]byte(row), &raw); err != nil {
			t.Fatalf("unmarshal row: %v", err)
		}
		if _, err := convertKline(raw); err == nil {
			t.Error("convertKline succeeded with string openTime")
		}
	})
}
