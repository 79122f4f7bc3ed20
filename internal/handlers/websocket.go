package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/middleware"
)

// Event types sent over the live socket
const (
	EventTaskUpdated    = "task_updated"
	EventGoalUpdated    = "goal_updated"
	EventGoalDeleted    = "goal_deleted"
	EventBreakdownSaved = "breakdown_saved"
)

// LiveEvent is the JSON message sent to connected clients
type LiveEvent struct {
	Type   string      `json:"type"`
	UserID string      `json:"userId"`
	Data   interface{} `json:"data,omitempty"`
}

const (
	liveWriteWait  = 10 * time.Second
	liveSendBuffer = 32
)

type socketWriter interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// connection owns one socket's writes. Publish only queues; writeLoop
// delivers, so a stalled peer never blocks a request handler.
type connection struct {
	ws   socketWriter
	send chan []byte
	done chan struct{}
}

func newConnection(ws socketWriter) *connection {
	return &connection{
		ws:   ws,
		send: make(chan []byte, liveSendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue drops the message when the buffer is full.
func (c *connection) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *connection) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.L().Warn("live event write failed", "error", err)
				return
			}
		}
	}
}

func (c *connection) close() {
	close(c.done)
}

// Hub fans events out to every socket a user has open
type Hub struct {
	mu    sync.RWMutex
	users map[uuid.UUID]map[*connection]bool
}

// Global hub instance
var WS = NewHub()

func NewHub() *Hub {
	return &Hub{users: make(map[uuid.UUID]map[*connection]bool)}
}

func (h *Hub) register(userID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*connection]bool)
	}
	h.users[userID][conn] = true
	logger.L().Debug("live socket opened", "user_id", userID, "connections", len(h.users[userID]))
}

func (h *Hub) unregister(userID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
	logger.L().Debug("live socket closed", "user_id", userID)
}

// Connections returns how many sockets the user has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Publish queues an event for all of the user's sockets without waiting
// for delivery. Events for a socket whose buffer is full are dropped.
func (h *Hub) Publish(userID uuid.UUID, eventType string, data interface{}) {
	h.mu.RLock()
	conns := make([]*connection, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	msg, err := json.Marshal(LiveEvent{Type: eventType, UserID: userID.String(), Data: data})
	if err != nil {
		logger.L().Error("live event marshal failed", "type", eventType, "error", err)
		return
	}
	for _, c := range conns {
		if !c.enqueue(msg) {
			logger.L().Warn("live event dropped", "user_id", userID, "type", eventType)
		}
	}
}

// WebSocketUpgrade checks the upgrade request and validates the JWT from
// ?token= or the Authorization header.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenString := c.Query("token")
		if tokenString == "" {
			tokenString, _ = middleware.BearerToken(c)
		}
		if tokenString == "" {
			return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Missing authentication token")
		}

		claims, err := middleware.ParseToken(tokenString)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// HandleLiveSocket keeps a user's socket registered until it closes.
func HandleLiveSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := newConnection(c)
	go conn.writeLoop()
	WS.register(userID, conn)
	defer func() {
		WS.unregister(userID, conn)
		conn.close()
	}()

	// Clients only send keepalives; reading detects the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
