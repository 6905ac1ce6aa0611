package rest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AndroidDev77/bydfipy/sign"
)

// Signed account endpoint paths.
const (
	pathAccountInfo     = "/api/v1/account"
	pathBalance         = "/api/v1/balance"
	pathDepositAddress  = "/api/v1/capital/deposit/address"
	pathDepositHistory  = "/api/v1/capital/deposit/history"
	pathWithdraw        = "/api/v1/capital/withdraw"
	pathWithdrawHistory = "/api/v1/capital/withdraw/history"
)

// AccountInfo returns account-level state, permissions, and balances.
func (c *Client) AccountInfo(ctx context.Context) (AccountData, error) {
	var acct AccountData
	err := c.getSigned(ctx, pathAccountInfo, nil, &acct)
	return acct, err
}

// Balances returns per-asset balances.
func (c *Client) Balances(ctx context.Context) ([]BalanceData, error) {
	var balances []BalanceData
	err := c.getSigned(ctx, pathBalance, nil, &balances)
	return balances, err
}

// DepositAddress returns the deposit address for a coin. Network is optional;
// empty selects the coin's default network.
func (c *Client) DepositAddress(ctx context.Context, coin, network string) (DepositAddressData, error) {
	var addr DepositAddressData
	params := sign.NewParams().
		Set("coin", coin).
		Set("network", network)
	err := c.getSigned(ctx, pathDepositAddress, params, &addr)
	return addr, err
}

// HistoryParams narrows a transfer history request. Zero fields are omitted.
// Status is a pointer because the venue's state codes start at zero: nil
// matches any state.
type HistoryParams struct {
	Coin      string
	Status    *int
	StartTime int64 // milliseconds
	EndTime   int64 // milliseconds
	Limit     int
}

func (p HistoryParams) encode() *sign.Params {
	params := sign.NewParams().Set("coin", p.Coin)
	if p.Status != nil {
		params.Set("status", strconv.Itoa(*p.Status))
	}
	return params.
		SetInt("startTime", p.StartTime).
		SetInt("endTime", p.EndTime).
		SetInt("limit", int64(p.Limit))
}

// DepositHistory returns past deposits matching the filter.
func (c *Client) DepositHistory(ctx context.Context, p HistoryParams) ([]TransferRecord, error) {
	var records []TransferRecord
	err := c.getSigned(ctx, pathDepositHistory, p.encode(), &records)
	return records, err
}

// WithdrawParams describes one withdrawal request.
type WithdrawParams struct {
	Coin    string
	Address string
	Amount  string
	Tag     string // tag/memo/payment id for coins that need one
	Network string
	Memo    string
}

// Withdraw requests a withdrawal.
func (c *Client) Withdraw(ctx context.Context, p WithdrawParams) (WithdrawResult, error) {
	var result WithdrawResult
	if p.Coin == "" || p.Address == "" || p.Amount == "" {
		return result, fmt.Errorf("withdraw: coin, address, and amount are required")
	}

	params := sign.NewParams().
		Set("coin", p.Coin).
		Set("address", p.Address).
		Set("amount", p.Amount).
		Set("tag", p.Tag).
		Set("network", p.Network).
		Set("memo", p.Memo)
	err := c.postSigned(ctx, pathWithdraw, params, &result)
	return result, err
}

// WithdrawHistory returns past withdrawals matching the filter.
func (c *Client) WithdrawHistory(ctx context.Context, p HistoryParams) ([]TransferRecord, error) {
	var records []TransferRecord
	err := c.getSigned(ctx, pathWithdrawHistory, p.encode(), &records)
	return records, err
}
