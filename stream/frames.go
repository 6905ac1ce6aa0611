package stream

import (
	"encoding/json"
	"fmt"
)

// Wire protocol: one JSON value per text frame.

// probeID correlates outbound probes with their acknowledgements.
const probeID = "ping"

const (
	methodSubscribe   = "SUBSCRIBE"
	methodUnsubscribe = "UNSUBSCRIBE"
	methodPing        = "ping"
	methodAuth        = "AUTH"
)

// commandFrame carries SUBSCRIBE and UNSUBSCRIBE requests.
type commandFrame struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

// pingFrame is the liveness probe.
type pingFrame struct {
	Method string `json:"method"`
	ID     string `json:"id"`
}

// authFrame authenticates the session for private feeds.
type authFrame struct {
	Method string     `json:"method"`
	Params authParams `json:"params"`
}

type authParams struct {
	APIKey    string `json:"apiKey"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

// wireError is the venue's error frame payload.
type wireError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// inboundFrame is the superset of inbound frame shapes. Exactly one of the
// error / probe-ack / stream interpretations applies per frame; anything
// else is discarded by the router.
type inboundFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
	Result json.RawMessage `json:"result"`
	ID     string          `json:"id"`
	Error  *wireError      `json:"error"`
}

// isProbeAck reports whether the frame acknowledges an outbound probe.
func (f *inboundFrame) isProbeAck() bool {
	return f.ID == probeID && f.Result != nil
}

func encodeSubscribe(feeds []string) ([]byte, error) {
	return json.Marshal(commandFrame{Method: methodSubscribe, Params: feeds})
}

func encodeUnsubscribe(feeds []string) ([]byte, error) {
	return json.Marshal(commandFrame{Method: methodUnsubscribe, Params: feeds})
}

func encodePing() []byte {
	data, _ := json.Marshal(pingFrame{Method: methodPing, ID: probeID})
	return data
}

func encodeAuth(apiKey string, timestampMs int64, signature string) ([]byte, error) {
	return json.Marshal(authFrame{
		Method: methodAuth,
		Params: authParams{APIKey: apiKey, Timestamp: timestampMs, Signature: signature},
	})
}

// decodeFrame parses one inbound text frame.
func decodeFrame(data []byte) (inboundFrame, error) {
	var f inboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return inboundFrame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
