package stream

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/exchange"
	"main/internal/model/enum"
	"main/pkg/exception"
)

const (
	defaultDialTimeout  = 10 * time.Second
	defaultPingInterval = 15 * time.Second
	defaultPingTimeout  = 5 * time.Second

	methodSubscribe   = "subscribe"
	methodUnsubscribe = "unsubscribe"
	methodPost        = "post"
)

// Option configures the stream client.
type Option struct {
	// URL is the upstream websocket endpoint. Required.
	URL string
	// DialTimeout bounds the websocket handshake. Optional; default 10s.
	DialTimeout time.Duration
	// PingInterval is the liveness probe period. Optional; default 15s.
	PingInterval time.Duration
	// PingTimeout bounds one liveness round trip. Optional; default 5s.
	PingTimeout time.Duration
	// OnDisconnect runs after the connection ends with the terminal error. Optional.
	OnDisconnect func(err error)
}

func (opt *Option) init() {
	if opt.DialTimeout <= 0 {
		opt.DialTimeout = defaultDialTimeout
	}
	if opt.PingInterval <= 0 {
		opt.PingInterval = defaultPingInterval
	}
	if opt.PingTimeout <= 0 {
		opt.PingTimeout = defaultPingTimeout
	}
}

// Health is the connectivity view exposed downstream.
type Health struct {
	State     enum.ConnState
	LatencyMs int64 // -1 when unknown
	Quality   enum.SignalQuality
}

// Client owns the one persistent connection: lifecycle, the inbound
// dispatcher, request correlation and subscription multiplexing.
//
// Reconnection is an explicit caller action; the client never retries on
// its own.
type Client struct {
	opt        Option
	correlator *Correlator
	mux        *Mux

	mu         sync.Mutex
	conn       *websocket.Conn
	state      enum.ConnState
	connCancel context.CancelFunc

	writeMu   sync.Mutex
	nextID    atomic.Uint64
	latencyMs atomic.Int64
}

// New validates the option and builds a disconnected client.
func New(option Option) (*Client, error) {
	if option.URL == "" {
		return nil, exception.ErrInvalidArgument
	}
	option.init()

	c := &Client{
		opt:        option,
		correlator: NewCorrelator(),
		state:      enum.ConnStateDisconnected,
	}
	c.mux = NewMux(c.sendSubscribe, c.sendUnsubscribe)
	c.latencyMs.Store(-1)
	return c, nil
}

// Connect dials the upstream endpoint. State moves connecting -> connected
// on success and -> disconnected on error or close.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case enum.ConnStateConnecting:
		c.mu.Unlock()
		return exception.ErrAlreadyConnecting
	case enum.ConnStateConnected:
		c.mu.Unlock()
		return nil
	}
	c.state = enum.ConnStateConnecting
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: c.opt.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.opt.URL, nil)
	if err != nil {
		c.mu.Lock()
		c.state = enum.ConnStateDisconnected
		c.mu.Unlock()
		return errors.Wrap(err, "dial upstream").With("url", c.opt.URL)
	}

	connCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.state = enum.ConnStateConnected
	c.connCancel = cancel
	c.mu.Unlock()

	logs.Info("stream connected")

	go c.readLoop(conn)
	go c.heartbeat(connCtx)
	return nil
}

// Close shuts the connection down. Pending requests are rejected.
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
}

// Health returns the connectivity state with the latest probe latency.
func (c *Client) Health() Health {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	latency := c.latencyMs.Load()
	return Health{
		State:     state,
		LatencyMs: latency,
		Quality:   QualityOf(latency),
	}
}

// Subscribe attaches a handler for the logical feed. Consumers of the same
// descriptor share one wire subscription. A disabled subscribe is a no-op
// returning an empty teardown, so callers can wire conditional consumers
// without branching.
func (c *Client) Subscribe(sub exchange.Subscription, handler Handler, enabled bool) (teardown func(), err error) {
	if !enabled {
		return func() {}, nil
	}
	return c.mux.Subscribe(sub, handler)
}

// Post sends a request envelope and resolves with the response payload
// carrying the same id. The promise is rejected on caller deadline and on
// disconnect; it never resolves twice.
func (c *Client) Post(ctx context.Context, request any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	ch, err := c.correlator.Register(id)
	if err != nil {
		return nil, err
	}

	envelope := exchange.PostRequest{Method: methodPost, ID: id, Request: request}
	if err := c.writeJSON(envelope); err != nil {
		c.correlator.Forget(id)
		return nil, errors.Wrap(err, "write post request")
	}

	select {
	case <-ctx.Done():
		c.correlator.Forget(id)
		return nil, errors.Wrap(exception.ErrRequestTimeout, ctx.Err().Error())
	case result := <-ch:
		if result.err != nil {
			return nil, result.err
		}
		return result.payload, nil
	}
}

// readLoop is the single dispatcher: inbound frames are processed strictly
// in arrival order and fan-out is synchronous.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(err)
			return
		}
		c.dispatch(raw)
	}
}

func (c *Client) dispatch(raw []byte) {
	env, kind, err := exchange.DecodeEnvelope(raw)
	if err != nil {
		logs.Warnf("drop inbound frame, err: %+v", err)
		return
	}

	switch kind {
	case exchange.KindResponse:
		resp, err := exchange.DecodePostResponse(env.Data)
		if err != nil {
			logs.Warnf("drop response frame, err: %+v", err)
			return
		}
		if resp.Response.Type == exchange.ResponseTypeError {
			c.correlator.Fail(resp.ID, errors.Wrap(exception.ErrResponseRejected, string(resp.Response.Payload)))
			return
		}
		if !c.correlator.Resolve(resp.ID, resp.Response.Payload) {
			logs.Warnf("response without pending request, id: %d", resp.ID)
		}
	case exchange.KindPong, exchange.KindSubscriptionAck:
		// control traffic, nothing to fan out
	case exchange.KindError:
		logs.Warnf("upstream error frame: %s", env.Data)
	case exchange.KindStream:
		c.mux.Dispatch(env.Channel, env.Data)
	}
}

// heartbeat measures the round trip of a lightweight status request at a
// fixed interval. The result feeds the connectivity indicator.
func (c *Client) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.opt.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			reqCtx, cancel := context.WithTimeout(ctx, c.opt.PingTimeout)
			_, err := c.Post(reqCtx, exchange.NewInfoRequest(exchange.InfoExchangeStatus, ""))
			cancel()
			if err != nil {
				c.latencyMs.Store(-1)
				continue
			}
			c.latencyMs.Store(time.Since(start).Milliseconds())
		}
	}
}

func (c *Client) handleDisconnect(err error) {
	c.mu.Lock()
	c.state = enum.ConnStateDisconnected
	c.conn = nil
	cancel := c.connCancel
	c.connCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.latencyMs.Store(-1)
	c.correlator.FailAll(exception.ErrConnectionClosed)

	logs.Warnf("stream disconnected, err: %+v", err)
	if c.opt.OnDisconnect != nil {
		c.opt.OnDisconnect(err)
	}
}

func (c *Client) sendSubscribe(sub exchange.Subscription) error {
	return c.writeJSON(exchange.SubscribeRequest{Method: methodSubscribe, Subscription: sub})
}

func (c *Client) sendUnsubscribe(sub exchange.Subscription) error {
	return c.writeJSON(exchange.SubscribeRequest{Method: methodUnsubscribe, Subscription: sub})
}

func (c *Client) writeJSON(v any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return exception.ErrNotConnected
	}

	payload, err := sonic.ConfigFastest.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}
