package handlers

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/models"
)

// LobbyRoom always exists; every other room is created on first join and
// destroyed when its last member leaves.
const LobbyRoom = "lobby"

var errUnknownRoom = errors.New("unknown room")

// Connection wraps one WebSocket and the user it belongs to. Outbound
// messages go through the buffered send channel; the write pump drains it.
type Connection struct {
	ws       *websocket.Conn
	userID   string
	username string

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func newConnection(ws *websocket.Conn, userID, username string) *Connection {
	return &Connection{
		ws:       ws,
		userID:   userID,
		username: username,
		send:     make(chan []byte, 256),
	}
}

// Send queues message for the write pump. It never blocks: a closed
// connection or a full buffer drops the message and reports false.
func (c *Connection) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Close shuts the send channel, ending the write pump. Idempotent.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Open reports whether the connection still accepts outbound messages.
func (c *Connection) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Hub owns presence and room membership. A single lock over both maps
// serializes every mutation, so message handlers never observe torn state.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*Connection
	rooms map[string]map[*Connection]bool
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*Connection),
		rooms: map[string]map[*Connection]bool{LobbyRoom: {}},
		log:   log,
	}
}

// Register binds userID to c. A prior connection for the same user is
// silently superseded: last writer wins, the old handle is not notified.
func (h *Hub) Register(userID string, c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.conns[userID]; ok && prev != c {
		h.log.Info("presence overwritten", zap.String("userId", userID))
	}
	h.conns[userID] = c
}

// Unregister removes c from presence and from every room it belongs to,
// evicting rooms it leaves empty. The presence entry is only cleared if it
// still points at c, so a superseded connection's late close cannot evict
// its replacement.
func (h *Hub) Unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[c.userID]; ok && cur == c {
		delete(h.conns, c.userID)
	}
	for name, members := range h.rooms {
		if members[c] {
			delete(members, c)
			h.evictIfEmpty(name)
		}
	}
}

// Lookup returns the live connection for userID, if any.
func (h *Hub) Lookup(userID string) (*Connection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[userID]
	return c, ok
}

// Deliver pushes msg to userID's connection. Best effort, at most once: an
// absent or closed recipient makes it a no-op and it reports false.
func (h *Hub) Deliver(userID string, msg *models.WSMessage) bool {
	c, ok := h.Lookup(userID)
	if !ok {
		return false
	}
	return c.Send(encode(msg))
}

// Join adds c to the named room, creating it on first reference. Idempotent.
func (h *Hub) Join(room string, c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Connection]bool)
		h.rooms[room] = members
	}
	members[c] = true
}

// Leave removes c from the named room, evicting the room if it is left
// empty. Leaving a room c is not in, or an unknown room, is a no-op.
func (h *Hub) Leave(room string, c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	h.evictIfEmpty(room)
}

// Broadcast sends msg to every open member of the named room, skipping
// closed ones. An unknown room is an error for the caller alone.
func (h *Hub) Broadcast(room string, msg *models.WSMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return errUnknownRoom
	}
	raw := encode(msg)
	for c := range members {
		if !c.Send(raw) {
			h.log.Debug("dropped broadcast",
				zap.String("room", room), zap.String("userId", c.userID))
		}
	}
	return nil
}

// RoomExists reports whether the named room currently exists.
func (h *Hub) RoomExists(room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[room]
	return ok
}

// evictIfEmpty deletes an empty room. The lobby is never evicted.
// Callers must hold h.mu.
func (h *Hub) evictIfEmpty(room string) {
	if room == LobbyRoom {
		return
	}
	if members, ok := h.rooms[room]; ok && len(members) == 0 {
		delete(h.rooms, room)
	}
}

func encode(msg *models.WSMessage) []byte {
	raw, err := json.Marshal(msg)
	if err != nil {
		// The envelope only holds plain fields; this cannot happen.
		return []byte(`{"action":"error","message":"encoding failure"}`)
	}
	return raw
}
