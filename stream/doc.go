// Package stream implements the BYDFi WebSocket streaming client.
//
// The client:
//   - Keeps one long-lived connection alive with JSON ping/pong probes
//   - Tracks subscribed feeds and replays them after every reconnect
//   - Authenticates private feeds with HMAC-signed AUTH frames
//   - Classifies inbound frames into envelopes and delivers them through
//     a bounded FIFO queue
//
// Transport failures are recovered internally; consumers observe an outage
// only as a gap in delivered messages.
package stream
