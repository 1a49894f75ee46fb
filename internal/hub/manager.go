package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/event"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
)

const supersededReason = "You signed in from another location."

// Hub owns the presence registry and the delivery state machine. Register
// and unregister requests flow through channels into the single run
// goroutine, which is the only writer of the registry.
type Hub struct {
	register   chan *Client
	unregister chan *Client

	presence *Presence
	messages repo.MessageRepository
	verifier auth.Verifier
	logger   *zap.Logger

	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(messages repo.MessageRepository, verifier auth.Verifier, allowedOrigins []string, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		presence:   newPresence(),
		messages:   messages,
		verifier:   verifier,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	// run manager loop
	go h.run()

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.admit(c)
		case c := <-h.unregister:
			h.evict(c)
		}
	}
}

// admit binds the connection to its registry slot. A previous connection of
// the same user is told to log out and closed; its later disconnect will not
// touch the slot because of the deregister identity guard.
func (h *Hub) admit(c *Client) {
	if old := h.presence.register(c); old != nil {
		old.SafeSend(mustEnvelope(event.EventForceLogout, event.ForceLogout{Reason: supersededReason}), sendTimeout)
		old.Close()
	}

	h.logger.Info("client registered",
		zap.String("client_id", c.ID),
		zap.String("user_name", c.userName),
	)

	h.broadcastOnlineUsers()
}

func (h *Hub) evict(c *Client) {
	if h.presence.deregister(c) {
		h.logger.Info("client deregistered",
			zap.String("client_id", c.ID),
			zap.String("user_name", c.userName),
		)
		h.broadcastOnlineUsers()
	}
	c.Close()
}

// broadcastOnlineUsers pushes the full current online-username set to every
// admitted connection. This is the only proactively disseminated state.
func (h *Hub) broadcastOnlineUsers() {
	ev := mustEnvelope(event.EventOnlineUsers, h.presence.Snapshot())
	for _, c := range h.presence.Clients() {
		c.SafeSend(ev, sendTimeout)
	}
}

// AnnounceRegistration tells every connected client that a new account
// exists.
func (h *Hub) AnnounceRegistration(userName string) {
	ev := mustEnvelope(event.EventNewRegistration, userName)
	for _, c := range h.presence.Clients() {
		c.SafeSend(ev, sendTimeout)
	}
}

// TerminateSession severs the live session of the given user, if any. The
// connection receives a forceLogout notification carrying the reason before
// the registry entry is removed. Records are untouched; that is the
// caller's concern.
func (h *Hub) TerminateSession(userName, reason string) bool {
	c, ok := h.presence.Lookup(userName)
	if !ok {
		return false
	}

	c.SafeSend(mustEnvelope(event.EventForceLogout, event.ForceLogout{Reason: reason}), sendTimeout)

	select {
	case h.unregister <- c:
	case <-time.After(unregisterTimeout):
		h.logger.Warn("failed to unregister terminated session: timeout",
			zap.String("user_name", userName),
		)
	}

	h.logger.Info("session terminated",
		zap.String("user_name", userName),
		zap.String("reason", reason),
	)
	return true
}

func (h *Hub) Stop() {
	h.cancel()

	for _, c := range h.presence.Clients() {
		c.Close()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		return false
	}
}

// ServeWS is the connection gate: the credential is checked exactly once,
// before the upgrade, and a refused connection never touches the registry.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
			token = header[7:]
		}
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		h.logger.Warn("connection refused: authentication failed", zap.Error(err))
		http.Error(w, "Authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(identity, conn, h)

	select {
	case h.register <- c:
	case <-time.After(registerTimeout):
		h.logger.Warn("failed to register client: timeout", zap.String("client_id", c.ID))
		c.cancel()
		conn.Close()
		return
	}

	go c.WriteMessage()

	// Replay undelivered messages before live traffic from this connection
	// is accepted.
	h.runRedeliverySweep(c)

	go c.ReadMessages()
}

func mustEnvelope(name string, payload any) event.Envelope {
	raw, _ := json.Marshal(payload)
	return event.Envelope{Event: name, Payload: raw}
}
