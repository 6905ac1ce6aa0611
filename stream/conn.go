package stream

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the minimal transport surface the client needs. The production
// implementation wraps gorilla/websocket; tests substitute scripted fakes
// through Config.Dialer.
type Conn interface {
	// ReadMessage blocks until the next text frame arrives.
	ReadMessage() ([]byte, error)

	// WriteMessage writes one text frame. Callers serialize writes.
	WriteMessage(data []byte) error

	// Close tears down the transport. Safe to call concurrently with reads.
	Close() error
}

// Dialer opens a transport connection to the given URL.
type Dialer func(ctx context.Context, url string) (Conn, error)

// wsConn adapts a gorilla websocket connection to Conn.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *wsConn) WriteMessage(data []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error {
	w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return w.conn.Close()
}

// newWebSocketDialer returns the production Dialer.
func newWebSocketDialer(handshakeTimeout, writeTimeout time.Duration) Dialer {
	return func(ctx context.Context, url string) (Conn, error) {
		dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		return &wsConn{conn: conn, writeTimeout: writeTimeout}, nil
	}
}
