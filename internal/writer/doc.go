// Package writer implements batch writers for all data types.
//
// Writers:
//   - Ticker writer (TimescaleDB)
//   - Trade writer (TimescaleDB)
//   - Orderbook snapshot writer (TimescaleDB)
//
// All writers use append-only semantics (never update, only insert).
// Prices and quantities are kept as the decimal strings the exchange
// sends and stored in NUMERIC columns, preserving full precision.
package writer
