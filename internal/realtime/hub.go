// Package realtime pushes notifications and chat events over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 32
)

// Frame is what chat clients send: {type: message|typing|read, content}.
type Frame struct {
	Type    services.ChatEventType `json:"type"`
	Content string                 `json:"content"`
}

// FrameHandler acts on one inbound chat frame for the connected user.
type FrameHandler func(ctx context.Context, f Frame) error

type Session struct {
	Role   models.Role
	UserID uuid.UUID
}

type userKey struct {
	role models.Role
	id   uuid.UUID
}

// Hub tracks live connections per user and per conversation.
type Hub struct {
	mu       sync.RWMutex
	users    map[userKey]map[*client]struct{}
	rooms    map[uuid.UUID]map[*client]struct{}
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub(origins []string, log zerolog.Logger) *Hub {
	h := &Hub{
		users: make(map[userKey]map[*client]struct{}),
		rooms: make(map[uuid.UUID]map[*client]struct{}),
		log:   log.With().Str("component", "realtime").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}
	return h
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	sess Session
	room uuid.UUID

	// mu guards send against a close racing a fanout.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// enqueue queues b for the write pump. It reports false when the client is
// already closed or too slow, in which case the caller should drop it.
func (c *client) enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// deliver enqueues b and disconnects the client when it cannot keep up.
func (c *client) deliver(b []byte) {
	if c.enqueue(b) {
		return
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.hub.log.Warn().Str("user_id", c.sess.UserID.String()).Msg("websocket client too slow, disconnecting")
	c.hub.unregister(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.room != uuid.Nil {
		if h.rooms[c.room] == nil {
			h.rooms[c.room] = make(map[*client]struct{})
		}
		h.rooms[c.room][c] = struct{}{}
		return
	}
	k := userKey{c.sess.Role, c.sess.UserID}
	if h.users[k] == nil {
		h.users[k] = make(map[*client]struct{})
	}
	h.users[k][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if c.room != uuid.Nil {
		delete(h.rooms[c.room], c)
		if len(h.rooms[c.room]) == 0 {
			delete(h.rooms, c.room)
		}
	} else {
		k := userKey{c.sess.Role, c.sess.UserID}
		delete(h.users[k], c)
		if len(h.users[k]) == 0 {
			delete(h.users, k)
		}
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) fanout(targets map[*client]struct{}, payload []byte) {
	for c := range targets {
		c.deliver(payload)
	}
}

func (h *Hub) snapshot(set map[*client]struct{}) map[*client]struct{} {
	out := make(map[*client]struct{}, len(set))
	for c := range set {
		out[c] = struct{}{}
	}
	return out
}

type notificationFrame struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

// PushNotification sends n to every notification socket of the recipient.
func (h *Hub) PushNotification(role models.Role, recipientID uuid.UUID, n *models.Notification) {
	h.mu.RLock()
	targets := h.snapshot(h.users[userKey{role, recipientID}])
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}
	payload, err := json.Marshal(notificationFrame{Type: "notification", Notification: n})
	if err != nil {
		h.log.Error().Err(err).Msg("encode notification frame")
		return
	}
	h.fanout(targets, payload)
}

// BroadcastChat sends ev to everyone connected to the conversation.
func (h *Hub) BroadcastChat(conversationID uuid.UUID, ev services.ChatEvent) {
	h.mu.RLock()
	targets := h.snapshot(h.rooms[conversationID])
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("encode chat frame")
		return
	}
	h.fanout(targets, payload)
}

// Connections reports how many sockets the user has open for notifications.
func (h *Hub) Connections(role models.Role, userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userKey{role, userID}])
}

// ServeNotifications upgrades the request and streams the user's notifications
// until the socket closes.
func (h *Hub) ServeNotifications(w http.ResponseWriter, r *http.Request, sess Session) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), sess: sess}
	h.register(c)
	go c.writePump()
	c.readPump(r.Context(), nil)
	return nil
}

type historyFrame struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message"`
}

// ServeChat joins the conversation room, replays history and hands inbound
// frames to onFrame.
func (h *Hub) ServeChat(w http.ResponseWriter, r *http.Request, sess Session, conversationID uuid.UUID, history []models.Message, onFrame FrameHandler) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer+len(history)), sess: sess, room: conversationID}
	for i := range history {
		if b, err := json.Marshal(historyFrame{Type: "previous_message", Message: &history[i]}); err == nil {
			c.send <- b
		}
	}
	h.register(c)
	go c.writePump()
	c.readPump(r.Context(), onFrame)
	return nil
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (c *client) readPump(ctx context.Context, onFrame FrameHandler) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The request context ends once the handler returns, so frames run on a
	// detached context scoped to this connection.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
		if onFrame == nil {
			continue
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.reply(errorFrame{Type: "error", Error: "Invalid JSON"})
			continue
		}
		if f.Type == "" {
			f.Type = services.ChatMessage
		}
		if err := onFrame(connCtx, f); err != nil {
			c.reply(errorFrame{Type: "error", Error: services.Message(err, "Failed to process message")})
		}
	}
}

func (c *client) reply(v any) {
	if b, err := json.Marshal(v); err == nil {
		c.deliver(b)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
