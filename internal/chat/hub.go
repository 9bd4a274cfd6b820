// Package chat implements the websocket fan-out for admin/client
// conversation rooms.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clientdesk/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// PostFunc persists an inbound message and hands it back for broadcast.
// It matches domain.ChatService.Post.
type PostFunc func(ctx context.Context, roomID, senderID, senderRole, body string) (*domain.ChatMessage, error)

// inboundFrame is what connected clients send over the socket.
type inboundFrame struct {
	Body string `json:"body"`
}

// Hub tracks connected sockets per room and fans persisted messages out to
// everyone in the room. It implements services.MessageBroadcaster.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*roomClient]struct{}
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// roomClient is one websocket connection registered in a room. send is
// never closed; done tells writePump the client left, so a Broadcast racing
// an unregister can still send safely (the payload just goes undelivered).
type roomClient struct {
	conn   *websocket.Conn
	roomID string
	send   chan []byte
	done   chan struct{}
}

// NewHub returns a hub that accepts upgrades from the given origins.
// An empty Origin header (non-browser client) is always accepted.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Hub{
		rooms:  make(map[string]map[*roomClient]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[strings.TrimSuffix(origin, "/")]
				return ok
			},
		},
	}
}

// Broadcast sends the message to every socket in its room. Clients whose
// send buffer is full are dropped; a stalled reader must not block the room.
func (h *Hub) Broadcast(msg *domain.ChatMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "room_id", msg.RoomID, "err", err)
		return
	}

	h.mu.RLock()
	clients := make([]*roomClient, 0, len(h.rooms[msg.RoomID]))
	for c := range h.rooms[msg.RoomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			h.unregister(c)
		}
	}
}

// Serve upgrades the request and pumps messages for the connection until
// the peer goes away. Inbound frames are persisted through post before they
// are broadcast, so every delivered message has already been stored.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, roomID, senderID, senderRole string, post PostFunc) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn("websocket upgrade failed", "room_id", roomID, "err", err)
		return
	}

	c := &roomClient{conn: conn, roomID: roomID, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	h.register(c)

	go h.writePump(c)
	h.readPump(r.Context(), c, senderID, senderRole, post)
}

func (h *Hub) register(c *roomClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.roomID]
	if !ok {
		room = make(map[*roomClient]struct{})
		h.rooms[c.roomID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *roomClient) {
	h.mu.Lock()
	room, ok := h.rooms[c.roomID]
	if ok {
		if _, present := room[c]; present {
			delete(room, c)
			close(c.done)
		}
		if len(room) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Connections returns the number of sockets currently in the room.
func (h *Hub) Connections(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) readPump(ctx context.Context, c *roomClient, senderID, senderRole string, post PostFunc) {
	defer h.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read", "room_id", c.roomID, "err", err)
			}
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.logger.Warn("bad frame", "room_id", c.roomID, "err", err)
			continue
		}
		if _, err := post(ctx, c.roomID, senderID, senderRole, frame.Body); err != nil {
			h.logger.Warn("post message", "room_id", c.roomID, "err", err)
		}
	}
}

func (h *Hub) writePump(c *roomClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
