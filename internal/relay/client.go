// Package relay is the websocket transport between an arena client and
// the lobby relay server.
package relay

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/netsync"
	"pokemon-arena/internal/observability"
)

const (
	// DefaultInboundBuffer bounds messages waiting for the next frame.
	DefaultInboundBuffer = 512

	// DefaultOutboundBuffer bounds messages waiting for the writer.
	DefaultOutboundBuffer = 256

	// MaxReconnects before the client gives up.
	MaxReconnects = 10

	// ReconnectBaseDelay is the first reconnect wait; it doubles per attempt.
	ReconnectBaseDelay = 500 * time.Millisecond

	// MaxReconnectDelay caps the reconnect wait.
	MaxReconnectDelay = 30 * time.Second

	// WriteWait bounds a single frame write.
	WriteWait = 5 * time.Second

	// PingInterval for keep-alive.
	PingInterval = 30 * time.Second

	// DefaultHandshakeTimeout bounds one dial.
	DefaultHandshakeTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	URL            string // ws://host/lobbies/{id}/ws
	UID            string
	Username       string
	Binary         bool // msgpack lobbies use binary frames
	InboundBuffer  int
	OutboundBuffer int

	HandshakeTimeout time.Duration
}

// Client is a netsync.Transport over a gorilla websocket. Send never
// blocks: it fails fast when disconnected or when the writer is behind.
// mu guards conn and reconnectAttempts and is never held across a dial.
type Client struct {
	opts   Options
	dialer websocket.Dialer
	log    *logrus.Entry

	conn              *websocket.Conn
	isConnected       atomic.Bool
	dialing           atomic.Bool
	reconnectAttempts int

	inbound  chan []byte
	outbound chan []byte

	done     chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
}

// NewClient creates a disconnected client.
func NewClient(opts Options) *Client {
	if opts.InboundBuffer <= 0 {
		opts.InboundBuffer = DefaultInboundBuffer
	}
	if opts.OutboundBuffer <= 0 {
		opts.OutboundBuffer = DefaultOutboundBuffer
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &Client{
		opts:     opts,
		dialer:   websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		log:      logger.Log.WithField("uid", opts.UID),
		inbound:  make(chan []byte, opts.InboundBuffer),
		outbound: make(chan []byte, opts.OutboundBuffer),
		done:     make(chan struct{}),
	}
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	q := u.Query()
	q.Set("uid", c.opts.UID)
	if c.opts.Username != "" {
		q.Set("name", c.opts.Username)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect establishes the websocket connection. Only one dial runs at a
// time; a concurrent call returns ErrUnavailable.
func (c *Client) Connect(ctx context.Context) error {
	if c.isConnected.Load() {
		return nil
	}
	select {
	case <-c.done:
		return netsync.ErrClosed
	default:
	}
	if !c.dialing.CompareAndSwap(false, true) {
		return netsync.ErrUnavailable
	}
	defer c.dialing.Store(false)

	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}
	c.log.WithField("url", c.opts.URL).Info("🔌 Connecting to relay...")

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		conn.Close()
		return netsync.ErrClosed
	default:
	}
	c.conn = conn
	c.reconnectAttempts = 0
	c.isConnected.Store(true)
	c.log.Info("✅ Connected to relay")
	return nil
}

// Run reads until Close, reconnecting with exponential backoff. It also
// drives the writer. Call in a goroutine after Connect.
func (c *Client) Run(ctx context.Context) {
	go c.writeLoop()
	defer func() {
		c.mu.Lock()
		c.isConnected.Store(false)
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			c.log.Info("🔌 Relay client shutting down")
			return
		case <-ctx.Done():
			c.Close()
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			if err := c.reconnect(ctx); err != nil {
				c.log.WithError(err).Error("❌ Giving up on relay")
				c.Close()
				return
			}
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.log.WithError(err).Warn("⚠️ Relay read error")
			c.mu.Lock()
			if c.conn == conn {
				c.isConnected.Store(false)
				c.conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()
			continue
		}

		select {
		case c.inbound <- message:
		default:
			observability.RecordInbound("dropped")
		}
	}
}

// ReconnectDelay returns the wait before the given attempt.
func ReconnectDelay(attempt int) time.Duration {
	d := ReconnectBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= MaxReconnectDelay {
			return MaxReconnectDelay
		}
	}
	return d
}

func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	c.reconnectAttempts++
	attempts := c.reconnectAttempts
	c.mu.Unlock()

	if attempts > MaxReconnects {
		return fmt.Errorf("max reconnect attempts (%d) reached", MaxReconnects)
	}

	delay := ReconnectDelay(attempts)
	c.log.WithFields(logrus.Fields{
		"attempt": attempts,
		"delay":   delay,
	}).Info("🔄 Reconnecting to relay")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-c.done:
		return netsync.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if err := c.Connect(ctx); err != nil {
		c.log.WithError(err).Warn("⚠️ Reconnect failed")
	}
	return nil
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(PingInterval)
	defer ping.Stop()

	msgType := websocket.TextMessage
	if c.opts.Binary {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case <-c.done:
			return
		case data := <-c.outbound:
			c.write(msgType, data)
		case <-ping.C:
			c.write(websocket.PingMessage, nil)
		}
	}
}

func (c *Client) write(msgType int, data []byte) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		observability.RecordSyncDropped("disconnected")
		return
	}
	conn.SetWriteDeadline(time.Now().Add(WriteWait))
	if err := conn.WriteMessage(msgType, data); err != nil {
		c.log.WithError(err).Warn("⚠️ Relay write error")
		// Closing wakes the reader, which reconnects.
		conn.Close()
	}
}

// Send queues data for the writer.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return netsync.ErrClosed
	default:
	}

	if !c.isConnected.Load() {
		return netsync.ErrUnavailable
	}

	select {
	case c.outbound <- data:
		return nil
	default:
		return netsync.ErrResourceExhausted
	}
}

// Messages returns the inbound queue.
func (c *Client) Messages() <-chan []byte {
	return c.inbound
}

// IsConnected reports whether the websocket is up.
func (c *Client) IsConnected() bool {
	return c.isConnected.Load()
}

// Close stops the client. It is safe to call more than once.
func (c *Client) Close() error {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.isConnected.Store(false)
		if c.conn != nil {
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	})
	return nil
}
