package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AndroidDev77/bydfipy/sign"
)

// Signed order endpoint paths. Order create, status, and cancel share one
// path and differ by method.
const (
	pathOrder      = "/api/v1/order"
	pathOpenOrders = "/api/v1/openOrders"
	pathAllOrders  = "/api/v1/allOrders"
	pathMyTrades   = "/api/v1/myTrades"
)

// CreateOrderParams describes a new order. Symbol, Side, and Type are
// required; the rest depends on the order type.
type CreateOrderParams struct {
	Symbol        string
	Side          string // SideBuy or SideSell
	Type          string // OrderTypeLimit, OrderTypeMarket, ...
	TimeInForce   string // defaults to GTC for limit orders
	Quantity      string
	QuoteOrderQty string // market orders may size by quote asset instead
	Price         string
	ClientOrderID string // generated when empty
	StopPrice     string
	IcebergQty    string
	RecvWindow    int64
}

func (p *CreateOrderParams) validate() error {
	if p.Symbol == "" || p.Side == "" || p.Type == "" {
		return fmt.Errorf("create order: symbol, side, and type are required")
	}

	switch p.Type {
	case OrderTypeLimit:
		if p.TimeInForce == "" {
			p.TimeInForce = TimeInForceGTC
		}
		if p.Price == "" || p.Quantity == "" {
			return fmt.Errorf("create order: limit orders require price and quantity")
		}
	case OrderTypeMarket:
		if p.Quantity == "" && p.QuoteOrderQty == "" {
			return fmt.Errorf("create order: market orders require quantity or quoteOrderQty")
		}
	}
	return nil
}

// CreateOrder places a new order. A missing client order id is filled with a
// generated UUID so every order can be tracked even if the response is lost.
func (c *Client) CreateOrder(ctx context.Context, p CreateOrderParams) (OrderData, error) {
	var order OrderData
	if err := p.validate(); err != nil {
		return order, err
	}
	if p.ClientOrderID == "" {
		p.ClientOrderID = uuid.NewString()
	}

	params := sign.NewParams().
		Set("symbol", p.Symbol).
		Set("side", p.Side).
		Set("type", p.Type).
		Set("timeInForce", p.TimeInForce).
		Set("quantity", p.Quantity).
		Set("quoteOrderQty", p.QuoteOrderQty).
		Set("price", p.Price).
		Set("newClientOrderId", p.ClientOrderID).
		Set("stopPrice", p.StopPrice).
		Set("icebergQty", p.IcebergQty).
		SetInt("recvWindow", p.RecvWindow)

	err := c.postSigned(ctx, pathOrder, params, &order)
	return order, err
}

// orderRef identifies an existing order by venue id or client id.
func orderRef(symbol string, orderID int64, clientOrderID string) (*sign.Params, error) {
	if orderID == 0 && clientOrderID == "" {
		return nil, fmt.Errorf("either orderID or clientOrderID must be provided")
	}
	params := sign.NewParams().Set("symbol", symbol)
	if orderID != 0 {
		params.SetInt("orderId", orderID)
	} else {
		params.Set("clientOrderId", clientOrderID)
	}
	return params, nil
}

// CancelOrder cancels an order identified by orderID or, when orderID is
// zero, by clientOrderID.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (OrderData, error) {
	var order OrderData
	params, err := orderRef(symbol, orderID, clientOrderID)
	if err != nil {
		return order, fmt.Errorf("cancel order: %w", err)
	}
	err = c.deleteSigned(ctx, pathOrder, params, &order)
	return order, err
}

// CancelAllOrders cancels all open orders for a symbol.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) ([]OrderData, error) {
	var orders []OrderData
	params := sign.NewParams().Set("symbol", symbol)
	err := c.deleteSigned(ctx, pathOpenOrders, params, &orders)
	return orders, err
}

// GetOrder returns the current state of an order identified by orderID or,
// when orderID is zero, by clientOrderID.
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (OrderData, error) {
	var order OrderData
	params, err := orderRef(symbol, orderID, clientOrderID)
	if err != nil {
		return order, fmt.Errorf("get order: %w", err)
	}
	err = c.getSigned(ctx, pathOrder, params, &order)
	return order, err
}

// OpenOrders returns open orders, for one symbol or, with an empty symbol,
// for all.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]OrderData, error) {
	var orders []OrderData
	params := sign.NewParams().Set("symbol", symbol)
	err := c.getSigned(ctx, pathOpenOrders, params, &orders)
	return orders, err
}

// OrderListParams narrows an order or trade history request. Zero fields are
// omitted.
type OrderListParams struct {
	OrderID   int64
	FromID    int64 // trade id lower bound, trade history only
	StartTime int64 // milliseconds
	EndTime   int64 // milliseconds
	Limit     int
}

func (p OrderListParams) encode(symbol string) *sign.Params {
	return sign.NewParams().
		Set("symbol", symbol).
		SetInt("orderId", p.OrderID).
		SetInt("fromId", p.FromID).
		SetInt("startTime", p.StartTime).
		SetInt("endTime", p.EndTime).
		SetInt("limit", int64(p.Limit))
}

// AllOrders returns the order history for a symbol: active, canceled, and
// filled.
func (c *Client) AllOrders(ctx context.Context, symbol string, p OrderListParams) ([]OrderData, error) {
	if symbol == "" {
		return nil, fmt.Errorf("all orders: symbol is required")
	}
	var orders []OrderData
	err := c.getSigned(ctx, pathAllOrders, p.encode(symbol), &orders)
	return orders, err
}

// MyTrades returns the account's fill history for a symbol.
func (c *Client) MyTrades(ctx context.Context, symbol string, p OrderListParams) ([]AccountTrade, error) {
	if symbol == "" {
		return nil, fmt.Errorf("my trades: symbol is required")
	}
	var trades []AccountTrade
	err := c.getSigned(ctx, pathMyTrades, p.encode(symbol), &trades)
	return trades, err
}
