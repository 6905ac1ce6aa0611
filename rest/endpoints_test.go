package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// recordingServer captures the path and query of each request and replies
// with a canned body per path.
func recordingServer(t *testing.T, bodies map[string]string) (*Client, *[]*http.Request) {
	t.Helper()

	var reqs []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clone := r.Clone(r.Context())
		reqs = append(reqs, clone)
		body, ok := bodies[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL), WithCredentials("k", "s"))
	return c, &reqs
}

func lastQuery(t *testing.T, reqs *[]*http.Request) url.Values {
	t.Helper()
	if len(*reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	return (*reqs)[len(*reqs)-1].URL.Query()
}

func TestMarketEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("Ticker", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/ticker": `{"symbol":"BTC-USDT","lastPrice":"64000.12","volume":"1234.5"}`,
		})

		tk, err := c.Ticker(ctx, "BTC-USDT")
		if err != nil {
			t.Fatalf("Ticker failed: %v", err)
		}
		if tk.Symbol != "BTC-USDT" || tk.LastPrice != "64000.12" {
			t.Errorf("ticker = %+v", tk)
		}
		if got := lastQuery(t, reqs).Get("symbol"); got != "BTC-USDT" {
			t.Errorf("symbol param = %q", got)
		}
	})

	t.Run("Tickers", func(t *testing.T) {
		c, _ := recordingServer(t, map[string]string{
			"/api/v1/tickers": `[{"symbol":"BTC-USDT"},{"symbol":"ETH-USDT"}]`,
		})

		ts, err := c.Tickers(ctx)
		if err != nil {
			t.Fatalf("Tickers failed: %v", err)
		}
		if len(ts) != 2 || ts[1].Symbol != "ETH-USDT" {
			t.Errorf("tickers = %+v", ts)
		}
	})

	t.Run("Orderbook", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/depth": `{"lastUpdateId":42,"bids":[{"price":"64000","quantity":"0.5"}],"asks":[{"price":"64001","quantity":"0.7"}]}`,
		})

		ob, err := c.Orderbook(ctx, "BTC-USDT", 50)
		if err != nil {
			t.Fatalf("Orderbook failed: %v", err)
		}
		if ob.LastUpdateID != 42 {
			t.Errorf("LastUpdateID = %d, want 42", ob.LastUpdateID)
		}
		if len(ob.Bids) != 1 || ob.Bids[0].Price != "64000" {
			t.Errorf("bids = %+v", ob.Bids)
		}
		q := lastQuery(t, reqs)
		if q.Get("limit") != "50" {
			t.Errorf("limit param = %q, want 50", q.Get("limit"))
		}
	})

	t.Run("Orderbook zero limit omitted", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/depth": `{"lastUpdateId":1,"bids":[],"asks":[]}`,
		})

		if _, err := c.Orderbook(ctx, "BTC-USDT", 0); err != nil {
			t.Fatalf("Orderbook failed: %v", err)
		}
		if q := lastQuery(t, reqs); q.Has("limit") {
			t.Errorf("limit param sent for zero value: %q", q.Get("limit"))
		}
	})

	t.Run("HistoricalTrades", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/historicalTrades": `[{"id":900,"price":"64000","qty":"0.1","time":1700000000000,"isBuyerMaker":true}]`,
		})

		trades, err := c.HistoricalTrades(ctx, "BTC-USDT", 100, 900)
		if err != nil {
			t.Fatalf("HistoricalTrades failed: %v", err)
		}
		if len(trades) != 1 || trades[0].ID != 900 || !trades[0].IsBuyerMaker {
			t.Errorf("trades = %+v", trades)
		}
		q := lastQuery(t, reqs)
		if q.Get("fromId") != "900" {
			t.Errorf("fromId param = %q, want 900", q.Get("fromId"))
		}
	})

	t.Run("Klines", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/klines": `[[1700000000000,"64000","64100","63900","64050","12.5",1700000059999,"800625.0",321,"6.2","396310.0"]]`,
		})

		ks, err := c.Klines(ctx, "BTC-USDT", "1m", KlineParams{StartTime: 1700000000000, Limit: 10})
		if err != nil {
			t.Fatalf("Klines failed: %v", err)
		}
		if len(ks) != 1 {
			t.Fatalf("got %d klines, want 1", len(ks))
		}
		k := ks[0]
		if k.OpenTime != 1700000000000 || k.Close != "64050" || k.Trades != 321 {
			t.Errorf("kline = %+v", k)
		}
		q := lastQuery(t, reqs)
		if q.Get("interval") != "1m" || q.Get("startTime") != "1700000000000" {
			t.Errorf("query = %v", q)
		}
	})
}

func TestAccountEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("AccountInfo", func(t *testing.T) {
		c, _ := recordingServer(t, map[string]string{
			"/api/v1/account": `{"canTrade":true,"balances":[{"asset":"BTC","free":"0.5","locked":"0.1"}]}`,
		})

		acct, err := c.AccountInfo(ctx)
		if err != nil {
			t.Fatalf("AccountInfo failed: %v", err)
		}
		if !acct.CanTrade || len(acct.Balances) != 1 || acct.Balances[0].Asset != "BTC" {
			t.Errorf("account = %+v", acct)
		}
	})

	t.Run("DepositAddress", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/capital/deposit/address": `{"coin":"BTC","address":"bc1qtest","network":"BTC"}`,
		})

		addr, err := c.DepositAddress(ctx, "BTC", "BTC")
		if err != nil {
			t.Fatalf("DepositAddress failed: %v", err)
		}
		if addr.Address != "bc1qtest" {
			t.Errorf("address = %+v", addr)
		}
		q := lastQuery(t, reqs)
		if q.Get("coin") != "BTC" || q.Get("network") != "BTC" {
			t.Errorf("query = %v", q)
		}
	})

	t.Run("DepositHistory status zero is sent", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/capital/deposit/history": `[]`,
		})

		pending := 0
		_, err := c.DepositHistory(ctx, HistoryParams{Coin: "BTC", Status: &pending})
		if err != nil {
			t.Fatalf("DepositHistory failed: %v", err)
		}
		if got := lastQuery(t, reqs).Get("status"); got != "0" {
			t.Errorf("status param = %q, want 0", got)
		}
	})

	t.Run("DepositHistory nil status omitted", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/capital/deposit/history": `[]`,
		})

		if _, err := c.DepositHistory(ctx, HistoryParams{Coin: "BTC"}); err != nil {
			t.Fatalf("DepositHistory failed: %v", err)
		}
		if q := lastQuery(t, reqs); q.Has("status") {
			t.Errorf("status param sent: %q", q.Get("status"))
		}
	})

	t.Run("Withdraw validates required fields", func(t *testing.T) {
		c := NewClient(WithCredentials("k", "s"))
		if _, err := c.Withdraw(ctx, WithdrawParams{Coin: "BTC"}); err == nil {
			t.Error("Withdraw succeeded without address and amount")
		}
	})

	t.Run("Withdraw", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/capital/withdraw": `{"id":"wd-1"}`,
		})

		res, err := c.Withdraw(ctx, WithdrawParams{
			Coin:    "BTC",
			Address: "bc1qtest",
			Amount:  "0.25",
			Network: "BTC",
		})
		if err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if res.ID != "wd-1" {
			t.Errorf("withdraw id = %q, want wd-1", res.ID)
		}
		req := (*reqs)[len(*reqs)-1]
		if req.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", req.Method)
		}
		if got := req.URL.Query().Get("amount"); got != "0.25" {
			t.Errorf("amount param = %q, want 0.25", got)
		}
	})
}

func TestOrderEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateOrder limit order", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/order": `{"symbol":"BTC-USDT","orderId":7,"status":"NEW"}`,
		})

		order, err := c.CreateOrder(ctx, CreateOrderParams{
			Symbol:   "BTC-USDT",
			Side:     SideBuy,
			Type:     OrderTypeLimit,
			Price:    "64000",
			Quantity: "0.01",
		})
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if order.OrderID != 7 || order.Status != OrderStatusNew {
			t.Errorf("order = %+v", order)
		}

		req := (*reqs)[len(*reqs)-1]
		if req.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", req.Method)
		}
		q := req.URL.Query()
		if q.Get("timeInForce") != TimeInForceGTC {
			t.Errorf("timeInForce = %q, want GTC default", q.Get("timeInForce"))
		}
		if q.Get("newClientOrderId") == "" {
			t.Error("newClientOrderId not generated")
		}
	})

	t.Run("CreateOrder keeps caller's client order id", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/order": `{"orderId":8}`,
		})

		_, err := c.CreateOrder(ctx, CreateOrderParams{
			Symbol:        "BTC-USDT",
			Side:          SideSell,
			Type:          OrderTypeMarket,
			Quantity:      "0.01",
			ClientOrderID: "my-order-1",
		})
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if got := lastQuery(t, reqs).Get("newClientOrderId"); got != "my-order-1" {
			t.Errorf("newClientOrderId = %q, want my-order-1", got)
		}
	})

	t.Run("CreateOrder validation", func(t *testing.T) {
		c := NewClient(WithCredentials("k", "s"))

		tests := []struct {
			name   string
			params CreateOrderParams
		}{
			{"missing side", CreateOrderParams{Symbol: "BTC-USDT", Type: OrderTypeMarket, Quantity: "1"}},
			{"limit without price", CreateOrderParams{Symbol: "BTC-USDT", Side: SideBuy, Type: OrderTypeLimit, Quantity: "1"}},
			{"market without size", CreateOrderParams{Symbol: "BTC-USDT", Side: SideBuy, Type: OrderTypeMarket}},
		}
		for _, tt := range tests {
			if _, err := c.CreateOrder(ctx, tt.params); err == nil {
				t.Errorf("%s: CreateOrder succeeded, want validation error", tt.name)
			}
		}
	})

	t.Run("CancelOrder by order id", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/order": `{"orderId":7,"status":"CANCELED"}`,
		})

		order, err := c.CancelOrder(ctx, "BTC-USDT", 7, "")
		if err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}
		if order.Status != OrderStatusCanceled {
			t.Errorf("status = %q, want CANCELED", order.Status)
		}
		req := (*reqs)[len(*reqs)-1]
		if req.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", req.Method)
		}
		if got := req.URL.Query().Get("orderId"); got != "7" {
			t.Errorf("orderId param = %q, want 7", got)
		}
	})

	t.Run("GetOrder by client order id", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/order": `{"clientOrderId":"my-order-1","status":"FILLED"}`,
		})

		order, err := c.GetOrder(ctx, "BTC-USDT", 0, "my-order-1")
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if order.Status != OrderStatusFilled {
			t.Errorf("status = %q, want FILLED", order.Status)
		}
		q := lastQuery(t, reqs)
		if got := q.Get("clientOrderId"); got != "my-order-1" {
			t.Errorf("clientOrderId param = %q", got)
		}
		if q.Has("orderId") {
			t.Error("orderId param sent alongside clientOrderId")
		}
	})

	t.Run("order reference required", func(t *testing.T) {
		c := NewClient(WithCredentials("k", "s"))
		if _, err := c.CancelOrder(ctx, "BTC-USDT", 0, ""); err == nil {
			t.Error("CancelOrder succeeded without order reference")
		}
		if _, err := c.GetOrder(ctx, "BTC-USDT", 0, ""); err == nil {
			t.Error("GetOrder succeeded without order reference")
		}
	})

	t.Run("AllOrders requires symbol", func(t *testing.T) {
		c := NewClient(WithCredentials("k", "s"))
		if _, err := c.AllOrders(ctx, "", OrderListParams{}); err == nil {
			t.Error("AllOrders succeeded without symbol")
		}
		if _, err := c.MyTrades(ctx, "", OrderListParams{}); err == nil {
			t.Error("MyTrades succeeded without symbol")
		}
	})

	t.Run("MyTrades", func(t *testing.T) {
		c, reqs := recordingServer(t, map[string]string{
			"/api/v1/myTrades": `[{"id":55,"symbol":"BTC-USDT","price":"64000","qty":"0.01","isBuyer":true,"isMaker":false}]`,
		})

		trades, err := c.MyTrades(ctx, "BTC-USDT", OrderListParams{Limit: 100, FromID: 50})
		if err != nil {
			t.Fatalf("MyTrades failed: %v", err)
		}
		if len(trades) != 1 || trades[0].ID != 55 || !trades[0].IsBuyer {
			t.Errorf("trades = %+v", trades)
		}
		q := lastQuery(t, reqs)
		if q.Get("fromId") != "50" || q.Get("limit") != "100" {
			t.Errorf("query = %v", q)
		}
	})
}
