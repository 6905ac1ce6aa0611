// Package poller implements the orderbook snapshot poller.
//
// The poller:
//   - Fetches full orderbook snapshots over REST on a fixed interval
//   - Provides a backup data source alongside the websocket feeds
//   - Bounds concurrent requests with a weighted semaphore
//   - Hands snapshots off with a source="rest" marker
package poller
