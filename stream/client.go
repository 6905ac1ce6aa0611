package stream

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/AndroidDev77/bydfipy/sign"
)

// sessionState is the connection lifecycle. Transitions are guarded by
// Client.mu; establish is the only path from connecting to connected, and
// closed is terminal.
type sessionState int

const (
	stateDisconnected sessionState = iota
	stateConnecting
	stateConnected
	stateReconnecting
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	case stateReconnecting:
		return "reconnecting"
	case stateClosed:
		return "closed"
	default:
		return "disconnected"
	}
}

// Client is the streaming client. It owns the connection handle and the
// session auth state; all mutation goes through its methods. Safe for
// concurrent use.
type Client struct {
	cfg    Config
	logger *slog.Logger
	dial   Dialer

	registry  *subscriptionRegistry
	queue     *deliveryQueue
	keepalive *keepAlive

	mu    sync.Mutex
	cond  *sync.Cond
	state sessionState
	conn  Conn
	epoch uint64 // increments per successful connect; stale loops detect replacement
	auth  AuthState

	writeMu sync.Mutex // one frame on the wire at a time

	connLost  chan struct{} // capacity 1: at most one scheduled reconnect
	closed    chan struct{}
	closeCtx  context.Context
	closeFn   context.CancelFunc
	closeOnce sync.Once
	startOnce sync.Once
	wg        sync.WaitGroup

	statsMu     sync.Mutex
	frames      int64
	routed      int64
	parseErrors int64
	errorFrames int64
	discarded   int64
	reconnects  int64
}

// New creates a streaming client. The client does not connect until
// Connect, Subscribe, or the first Recv.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	c := &Client{
		cfg:       cfg,
		logger:    cfg.Logger,
		dial:      cfg.Dialer,
		registry:  newSubscriptionRegistry(),
		queue:     newDeliveryQueue(cfg.QueueSize),
		keepalive: newKeepAlive(cfg.PingTimeout),
		connLost:  make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	c.closeCtx, c.closeFn = context.WithCancel(context.Background())
	if c.dial == nil {
		c.dial = newWebSocketDialer(cfg.DialTimeout, cfg.WriteTimeout)
	}
	return c
}

// Connect establishes the connection if one is not already open; calling it
// while connected is a no-op. On failure the error is returned and a
// background retry is scheduled after the reconnect delay, so callers may
// ignore the error and still end up connected.
func (c *Client) Connect(ctx context.Context) error {
	c.start()
	return c.ensureConnected(ctx)
}

// Subscribe records the feeds as wanted and sends a SUBSCRIBE frame,
// connecting first if necessary. Intent is recorded even when the connect
// fails; the next successful connect replays it. Subscribing to private
// feeds without credentials fails with ErrCredentials before any network
// activity.
func (c *Client) Subscribe(ctx context.Context, feeds ...string) error {
	if len(feeds) == 0 {
		return nil
	}
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		for _, f := range feeds {
			if isPrivate(f) {
				return fmt.Errorf("subscribe %s: %w", f, ErrCredentials)
			}
		}
	}

	c.start()
	connErr := c.ensureConnected(ctx)
	c.registry.add(feeds...)
	if connErr != nil {
		return connErr
	}

	frame, err := encodeSubscribe(feeds)
	if err != nil {
		return err
	}
	if err := c.writeFrame(frame); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes the feeds from the wanted set and, when connected,
// sends an UNSUBSCRIBE frame. While disconnected there is no server-side
// subscription to undo, so removing intent is all that happens.
func (c *Client) Unsubscribe(ctx context.Context, feeds ...string) error {
	if len(feeds) == 0 {
		return nil
	}
	c.registry.remove(feeds...)

	frame, err := encodeUnsubscribe(feeds)
	if err != nil {
		return err
	}
	if err := c.writeFrame(frame); err != nil && !errors.Is(err, ErrNotConnected) {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// Authenticate signs a timestamp challenge and sends an AUTH frame,
// connecting first if necessary. It fails fast with ErrCredentials when no
// key/secret is configured. The session is marked authenticated as soon as
// the frame is written: the venue sends no auth acknowledgement, and a
// rejection arrives later as a generic error frame (observable only as an
// absence of private data).
func (c *Client) Authenticate(ctx context.Context) error {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return ErrCredentials
	}

	c.start()
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}
	if err := c.sendAuth(); err != nil {
		return err
	}
	c.registry.markAuthenticated()
	return nil
}

// SubscribeTicker subscribes to ticker updates for a symbol.
func (c *Client) SubscribeTicker(ctx context.Context, symbol string) error {
	return c.Subscribe(ctx, TickerFeed(symbol))
}

// SubscribeTicker24h subscribes to 24h rolling ticker updates for a symbol.
func (c *Client) SubscribeTicker24h(ctx context.Context, symbol string) error {
	return c.Subscribe(ctx, Ticker24hFeed(symbol))
}

// SubscribeOrderbook subscribes to orderbook updates for a symbol at the
// given depth (empty means "10").
func (c *Client) SubscribeOrderbook(ctx context.Context, symbol, depth string) error {
	return c.Subscribe(ctx, OrderbookFeed(symbol, depth))
}

// SubscribeTrades subscribes to trade updates for a symbol.
func (c *Client) SubscribeTrades(ctx context.Context, symbol string) error {
	return c.Subscribe(ctx, TradesFeed(symbol))
}

// SubscribeKlines subscribes to kline updates for a symbol and interval.
func (c *Client) SubscribeKlines(ctx context.Context, symbol, interval string) error {
	return c.Subscribe(ctx, KlineFeed(symbol, interval))
}

// SubscribeUserData authenticates if needed, then subscribes to the private
// account and order feeds.
func (c *Client) SubscribeUserData(ctx context.Context) error {
	if c.AuthStatus() != AuthAuthenticated {
		if err := c.Authenticate(ctx); err != nil {
			return err
		}
	}
	return c.Subscribe(ctx, "account", "order")
}

// Recv delivers the next envelope, connecting first if necessary. During an
// outage it blocks until reconnection restores delivery; it returns an error
// only when the client is closed or the context is cancelled.
func (c *Client) Recv(ctx context.Context) (Envelope, error) {
	c.start()
	if err := c.ensureConnected(ctx); err != nil {
		if errors.Is(err, ErrClosed) {
			return Envelope{}, err
		}
		// Transport trouble: a retry is already scheduled. Block for
		// delivery; the outage shows up as silence, not an error.
	}
	return c.queue.pop(ctx)
}

// Messages returns the conceptually infinite delivery sequence. Iteration
// ends only when the context is cancelled or the client is closed.
func (c *Client) Messages(ctx context.Context) iter.Seq[Envelope] {
	return func(yield func(Envelope) bool) {
		for {
			env, err := c.Recv(ctx)
			if err != nil {
				return
			}
			if !yield(env) {
				return
			}
		}
	}
}

// Close terminates the client: the connection is released, background loops
// stop, any pending reconnect is suppressed, and the delivery sequence ends.
// The subscription set is deliberately retained; it is consumer intent, not
// connection state.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = stateClosed
		conn := c.conn
		c.conn = nil
		c.auth = AuthNone
		c.cond.Broadcast()
		c.mu.Unlock()

		c.registry.markUnauthenticated()
		c.closeFn()
		close(c.closed)
		if conn != nil {
			conn.Close()
		}
		c.queue.close()
		c.wg.Wait()
		c.logger.Debug("stream client closed")
	})
	return nil
}

// Connected reports whether a live connection is established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected
}

// AuthStatus returns the session's authentication state.
func (c *Client) AuthStatus() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// Subscriptions returns the currently wanted feed ids, sorted.
func (c *Client) Subscriptions() []string {
	return c.registry.snapshot()
}

// Stats returns runtime counters.
func (c *Client) Stats() Stats {
	c.statsMu.Lock()
	s := Stats{
		FramesReceived: c.frames,
		Routed:         c.routed,
		ParseErrors:    c.parseErrors,
		ErrorFrames:    c.errorFrames,
		Discarded:      c.discarded,
		Reconnects:     c.reconnects,
	}
	c.statsMu.Unlock()
	s.Queue = c.queue.stats()
	return s
}

// start launches the supervisor on first use.
func (c *Client) start() {
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.supervise()
	})
}

// supervise owns recovery: each connection-lost signal is followed by the
// fixed reconnect delay and one attempt, whose own failure schedules the
// next. Close suppresses pending attempts, even those already signalled.
func (c *Client) supervise() {
	defer c.wg.Done()

	for {
		select {
		case <-c.closed:
			return
		case <-c.connLost:
		}

		select {
		case <-c.closed:
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}

		if err := c.reconnect(); err != nil {
			if errors.Is(err, ErrClosed) {
				return
			}
			c.logger.Warn("reconnect failed", "error", err)
		}
	}
}

// reconnect performs one supervisor-driven attempt, unless some other
// caller connected in the meantime.
func (c *Client) reconnect() error {
	c.mu.Lock()
	for c.state == stateConnecting {
		c.cond.Wait()
	}
	switch c.state {
	case stateClosed:
		c.mu.Unlock()
		return ErrClosed
	case stateConnected:
		c.mu.Unlock()
		return nil
	}
	c.state = stateConnecting
	c.mu.Unlock()

	return c.establish(c.closeCtx)
}

// ensureConnected blocks until a live connection exists, performing the
// attempt itself when no one else is. Attempt failures schedule a delayed
// background retry before propagating.
func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	for {
		switch c.state {
		case stateClosed:
			c.mu.Unlock()
			return ErrClosed
		case stateConnected:
			c.mu.Unlock()
			return nil
		case stateConnecting:
			c.cond.Wait()
		default:
			c.state = stateConnecting
			c.mu.Unlock()
			return c.establish(ctx)
		}
	}
}

// establish dials, replays recorded intent, then resumes the read pump.
// Caller must have moved the state to stateConnecting.
func (c *Client) establish(ctx context.Context) error {
	conn, err := c.dial(ctx, c.cfg.URL)
	if err != nil {
		c.connectFailed()
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.epoch++
	ep := c.epoch
	c.mu.Unlock()

	c.keepalive.reset()

	// Replay in one batch before the read pump starts, so the subscription
	// state is restored before new inbound frames are delivered.
	if err := c.replay(); err != nil {
		c.logger.Warn("replay failed", "error", err)
		c.connectFailed()
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.state = stateConnected
	c.cond.Broadcast()
	c.mu.Unlock()

	if ep > 1 {
		c.statsMu.Lock()
		c.reconnects++
		c.statsMu.Unlock()
	}
	c.logger.Info("connected", "url", c.cfg.URL, "feeds", c.registry.len())

	c.wg.Add(2)
	go c.readLoop(conn, ep)
	go c.probeLoop(ep)
	return nil
}

// connectFailed rolls a failed attempt back to reconnecting and schedules
// the delayed retry. Closed stays closed.
func (c *Client) connectFailed() {
	c.mu.Lock()
	if c.state != stateClosed {
		c.state = stateReconnecting
	}
	c.conn = nil
	c.auth = AuthNone
	c.cond.Broadcast()
	c.mu.Unlock()
	c.signalLost()
}

// replay re-sends one subscribe frame per wanted feed, then re-authenticates
// if the session was authenticated before the disconnect.
func (c *Client) replay() error {
	for _, feed := range c.registry.snapshot() {
		frame, err := encodeSubscribe([]string{feed})
		if err != nil {
			return err
		}
		if err := c.writeFrame(frame); err != nil {
			return fmt.Errorf("subscribe %s: %w", feed, err)
		}
	}
	if c.registry.wantAuth() {
		if err := c.sendAuth(); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}
	return nil
}

// sendAuth signs and writes the AUTH frame, moving the session to
// authenticated on send completion.
func (c *Client) sendAuth() error {
	c.setAuth(AuthPending)

	ts := sign.Timestamp()
	payload := sign.NewParams().SetInt("timestamp", ts).Encode()
	frame, err := encodeAuth(c.cfg.APIKey, ts, sign.Signature(c.cfg.APISecret, payload))
	if err != nil {
		c.setAuth(AuthNone)
		return err
	}
	if err := c.writeFrame(frame); err != nil {
		c.setAuth(AuthNone)
		return err
	}

	c.setAuth(AuthAuthenticated)
	return nil
}

func (c *Client) setAuth(s AuthState) {
	c.mu.Lock()
	c.auth = s
	c.mu.Unlock()
}

// writeFrame is the single serialized send path.
func (c *Client) writeFrame(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(data)
}

// readLoop reads and routes frames until the connection fails or the client
// closes. A failure from a still-current connection triggers recovery.
func (c *Client) readLoop(conn Conn, ep uint64) {
	defer c.wg.Done()

	for {
		data, err := conn.ReadMessage()
		at := time.Now()
		if err != nil {
			select {
			case <-c.closed:
			default:
				c.lostConn(ep, err)
			}
			return
		}
		c.route(data, at)
	}
}

// probeLoop sends a probe each period and checks the previous probe for a
// timely acknowledgement. A stale connection is torn down and recovery is
// scheduled. The loop dies with its connection epoch.
func (c *Client) probeLoop(ep uint64) {
	defer c.wg.Done()

	for {
		if !c.sessionLive(ep) {
			return
		}
		if err := c.writeFrame(encodePing()); err != nil {
			c.logger.Debug("probe send failed", "error", err)
		} else {
			c.keepalive.markProbe(time.Now())
		}

		select {
		case <-c.closed:
			return
		case <-time.After(c.cfg.PingInterval):
		}

		if !c.sessionLive(ep) {
			return
		}
		if c.keepalive.stale(time.Now()) {
			c.lostConn(ep, ErrStale)
			return
		}
	}
}

func (c *Client) sessionLive(ep uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected && c.epoch == ep
}

// lostConn tears down a still-current connection and schedules reconnect.
// Reports from replaced epochs and from closed clients are ignored.
func (c *Client) lostConn(ep uint64, cause error) {
	c.mu.Lock()
	if c.state != stateConnected || c.epoch != ep {
		c.mu.Unlock()
		return
	}
	c.state = stateReconnecting
	conn := c.conn
	c.conn = nil
	c.auth = AuthNone
	c.cond.Broadcast()
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.logger.Warn("connection lost",
		"error", cause,
		"reconnect_in", c.cfg.ReconnectDelay,
	)
	c.signalLost()
}

// signalLost requests a reconnect. The buffer bound keeps at most one
// outstanding request regardless of how many loops observe the failure.
func (c *Client) signalLost() {
	select {
	case c.connLost <- struct{}{}:
	default:
	}
}

// route classifies one inbound frame: error frames and probe acks are
// consumed here, stream frames become envelopes, everything else is
// discarded. Malformed frames never stop the loop.
func (c *Client) route(data []byte, at time.Time) {
	c.statsMu.Lock()
	c.frames++
	c.statsMu.Unlock()

	frame, err := decodeFrame(data)
	if err != nil {
		c.logger.Warn("skipping undecodable frame", "error", err)
		c.statsMu.Lock()
		c.parseErrors++
		c.statsMu.Unlock()
		return
	}

	switch {
	case frame.Error != nil:
		c.logger.Warn("venue error frame",
			"code", frame.Error.Code,
			"msg", frame.Error.Msg,
		)
		c.statsMu.Lock()
		c.errorFrames++
		c.statsMu.Unlock()

	case frame.isProbeAck():
		c.keepalive.markAck(at)

	case frame.Stream != "":
		env := Envelope{
			Kind:       Classify(frame.Stream),
			Stream:     frame.Stream,
			Data:       frame.Data,
			ReceivedAt: at,
		}
		if c.queue.push(env) {
			c.statsMu.Lock()
			c.routed++
			c.statsMu.Unlock()
		}

	default:
		c.statsMu.Lock()
		c.discarded++
		c.statsMu.Unlock()
	}
}
