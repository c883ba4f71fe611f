package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/repository"
	"github.com/fourline-game/fourline-backend/responses"
	"github.com/fourline-game/fourline-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WsHandler upgrades the realtime connection. Query parameters: userId
// (required), gameId (optional initial room, default lobby), sessionId
// (optional; verified against the stored session when present).
func (h *Handler) WsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "userId is required."})
		return
	}

	user, err := h.store.UserByID(r.Context(), userID)
	if err == repository.ErrNotFound {
		utils.HandleError(w, responses.NotFoundError{Msg: "User not found."})
		return
	}
	if err != nil {
		h.log.Error("loading user for realtime connect", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	if sessionID := q.Get("sessionId"); sessionID != "" {
		sess, err := h.store.Session(r.Context(), userID, sessionID)
		if err != nil || sess.Expired(time.Now()) {
			utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
			return
		}
	}

	room := q.Get("gameId")
	if room == "" {
		room = LobbyRoom
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newConnection(ws, userID, user.Username)
	h.hub.Register(userID, c)
	h.hub.Join(room, c)
	h.log.Info("user connected",
		zap.String("userId", userID), zap.String("room", room))

	go c.writePump()
	h.readPump(c)
}

// readPump processes inbound messages one at a time, to completion. Close
// triggers immediate cleanup: deregistration plus eviction from every room.
func (h *Handler) readPump(c *Connection) {
	defer func() {
		h.hub.Unregister(c)
		c.Close()
		c.ws.Close()
		h.log.Info("user disconnected", zap.String("userId", c.userID))
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(c, message)
	}
}

func (c *Connection) writePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}
