// Package database provides connection pool management for TimescaleDB.
//
// Each recorder writes its captured market data (ticks, trades, orderbook
// snapshots) to a single TimescaleDB instance.
package database
