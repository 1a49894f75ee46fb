package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/event"
)

var (
	// tuning parameters
	writeWait         = 10 * time.Second    // time allowed to write a message to the peer
	pongWait          = 20 * time.Second    // time allowed to read the next pong message from the peer
	pingInterval      = (pongWait * 9) / 10 // send pings to peer with this period
	maxMessageSize    = 64 * 1024           // max inbound message size (64KB)
	sendBufSize       = 256                 // per-connection outbound buffer size
	sendTimeout       = 2 * time.Second     // timeout for enqueuing outbound messages
	registerTimeout   = 5 * time.Second     // timeout for client registration
	unregisterTimeout = 5 * time.Second     // timeout for client unregistration
)

// Client is one live connection bound to exactly one identity. Inbound
// events are handled synchronously on the read goroutine, so events from a
// single connection are processed in order while connections stay
// independent of each other.
type Client struct {
	ID       string
	userName string
	role     string
	conn     *websocket.Conn
	hub      *Hub
	egress   chan event.Envelope

	cancel         context.CancelFunc
	ctx            context.Context
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

func newClient(identity *auth.Identity, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		ID:         uuid.New().String(),
		userName:   identity.UserName,
		role:       identity.Role,
		conn:       conn,
		hub:        h,
		egress:     make(chan event.Envelope, sendBufSize),
		cancel:     cancel,
		ctx:        ctx,
		connClosed: make(chan struct{}),
	}
}

func (c *Client) ReadMessages() {
	defer func() {
		select {
		case c.hub.unregister <- c:
			// unregistered successfully
		case <-time.After(unregisterTimeout):
			c.hub.logger.Warn("failed to unregister client: timeout", zap.String("client_id", c.ID))
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var ev event.Envelope

			if err := c.conn.ReadJSON(&ev); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					c.hub.logger.Info("client disconnected",
						zap.String("client_id", c.ID),
						zap.String("user_name", c.userName),
					)
					return
				}

				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					c.hub.logger.Warn("unexpected close",
						zap.String("client_id", c.ID),
						zap.Error(err),
					)
				}

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					c.hub.logger.Warn("client timed out, closing connection", zap.String("client_id", c.ID))
					return
				}

				c.hub.logger.Warn("error reading from client",
					zap.String("client_id", c.ID),
					zap.Error(err),
				)
				return
			}

			// Synchronous dispatch keeps per-connection ordering: the next
			// frame is not read until this one is fully handled.
			c.hub.dispatch(ev, c)
		}
	}
}

func (c *Client) WriteMessage() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	// Close closes the egress channel; draining it here means everything
	// enqueued before the close (a forceLogout in particular) still goes
	// out before the close frame.
	for {
		select {
		case ev, ok := <-c.egress:
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
					c.hub.logger.Debug("connection closed", zap.Error(err))
				}
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.hub.logger.Warn("write failed",
					zap.String("client_id", c.ID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Debug("ping failed",
					zap.String("client_id", c.ID),
					zap.Error(err),
				)
				return
			}
		}
	}
}

func (c *Client) pongHandler(pongMsg string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (c *Client) Close() {
	c.once.Do(func() {
		// Mark as closed BEFORE closing the channel
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()
		close(c.egress)

		if c.conn == nil {
			return
		}

		// Wait for WriteMessage to close conn, or force close after timeout
		go func() {
			select {
			case <-c.connClosed:
				// WriteMessage closed it properly
			case <-time.After(5 * time.Second):
				_ = c.conn.Close()
				c.hub.logger.Warn("safety timeout: force closed connection", zap.String("client_id", c.ID))
			}
		}()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// SafeSend attempts to enqueue an event for the client. Returns true if
// enqueued, false if the client is closed or the buffer stayed full past the
// timeout.
func (c *Client) SafeSend(ev event.Envelope, timeout time.Duration) bool {
	if c.IsClosed() {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(timeout):
		return false
	}
}
