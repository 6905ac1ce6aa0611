// Package sign implements BYDFi request signing: millisecond timestamps,
// insertion-ordered canonical query strings, and hex-encoded HMAC-SHA256
// signatures over them. It is shared by the REST client and the WebSocket
// client's AUTH step.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Timestamp returns the current time as Unix epoch milliseconds, the format
// the venue expects in signed payloads.
func Timestamp() int64 {
	return time.Now().UnixMilli()
}

// Signature computes the hex-encoded HMAC-SHA256 of payload keyed by secret.
func Signature(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
