package stream

import (
	"testing"
)

func TestEncodeSubscribe(t *testing.T) {
	data, err := encodeSubscribe([]string{"btc-usdt@ticker", "eth-usdt@trades"})
	if err != nil {
		t.Fatalf("encodeSubscribe failed: %v", err)
	}

	want := `{"method":"SUBSCRIBE","params":["btc-usdt@ticker","eth-usdt@trades"]}`
	if string(data) != want {
		t.Errorf("encodeSubscribe = %s, want %s", data, want)
	}
}

func TestEncodeUnsubscribe(t *testing.T) {
	data, err := encodeUnsubscribe([]string{"btc-usdt@ticker"})
	if err != nil {
		t.Fatalf("encodeUnsubscribe failed: %v", err)
	}

	want := `{"method":"UNSUBSCRIBE","params":["btc-usdt@ticker"]}`
	if string(data) != want {
		t.Errorf("encodeUnsubscribe = %s, want %s", data, want)
	}
}

func TestEncodePing(t *testing.T) {
	want := `{"method":"ping","id":"ping"}`
	if got := string(encodePing()); got != want {
		t.Errorf("encodePing = %s, want %s", got, want)
	}
}

func TestEncodeAuth(t *testing.T) {
	data, err := encodeAuth("key-1", 1591702613943, "deadbeef")
	if err != nil {
		t.Fatalf("encodeAuth failed: %v", err)
	}

	want := `{"method":"AUTH","params":{"apiKey":"key-1","timestamp":1591702613943,"signature":"deadbeef"}}`
	if string(data) != want {
		t.Errorf("encodeAuth = %s, want %s", data, want)
	}
}

func TestDecodeFrame_Data(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"stream":"btc-usdt@ticker","data":{"lastPrice":"40000"}}`))
	if err != nil {
		t.Fatalf("decodeFrame failed: %v", err)
	}

	if frame.Stream != "btc-usdt@ticker" {
		t.Errorf("Stream = %q, want %q", frame.Stream, "btc-usdt@ticker")
	}
	if string(frame.Data) != `{"lastPrice":"40000"}` {
		t.Errorf("Data = %s", frame.Data)
	}
	if frame.Error != nil {
		t.Errorf("Error = %+v, want nil", frame.Error)
	}
	if frame.isProbeAck() {
		t.Error("data frame classified as probe ack")
	}
}

func TestDecodeFrame_ProbeAck(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"ack with null result", `{"result":null,"id":"ping"}`, true},
		{"ack with result", `{"result":{},"id":"ping"}`, true},
		{"other id", `{"result":null,"id":"other"}`, false},
		{"no result", `{"id":"ping"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := decodeFrame([]byte(tt.raw))
			if err != nil {
				t.Fatalf("decodeFrame failed: %v", err)
			}
			if got := frame.isProbeAck(); got != tt.want {
				t.Errorf("isProbeAck = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeFrame_Error(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"error":{"code":1002,"msg":"invalid stream"}}`))
	if err != nil {
		t.Fatalf("decodeFrame failed: %v", err)
	}

	if frame.Error == nil {
		t.Fatal("Error = nil, want populated")
	}
	if frame.Error.Code != 1002 {
		t.Errorf("Error.Code = %d, want 1002", frame.Error.Code)
	}
	if frame.Error.Msg != "invalid stream" {
		t.Errorf("Error.Msg = %q, want %q", frame.Error.Msg, "invalid stream")
	}
}

func TestDecodeFrame_Malformed(t *testing.T) {
	for _, raw := range []string{"not json", `[1,2,3]`, `"quoted"`, ``} {
		if _, err := decodeFrame([]byte(raw)); err == nil {
			t.Errorf("decodeFrame(%q) succeeded, want error", raw)
		}
	}
}
