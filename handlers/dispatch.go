package handlers

import (
	"encoding/json"

	"github.com/fourline-game/fourline-backend/models"
)

// dispatch is the single demultiplexing point for inbound realtime traffic.
// It owns no state of its own; every action delegates to the hub, the
// challenge coordinator or the game bridge. A payload that fails to decode
// gets a targeted error and the connection stays open.
func (h *Handler) dispatch(c *Connection, raw []byte) {
	var msg models.WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "invalid message format")
		return
	}

	switch msg.Action {
	case models.ActionJoin:
		h.handleJoin(c, &msg)
	case models.ActionLeave:
		h.handleLeave(c, &msg)
	case models.ActionMessage:
		h.handleRoomMessage(c, &msg)
	case models.ActionSendChallenge:
		h.handleSendChallenge(c, &msg)
	case models.ActionDeclineChallenge:
		h.handleDeclineChallenge(c, &msg)
	case models.ActionStartGame:
		h.handleStartGame(c, &msg)
	case models.ActionGameChat:
		h.handleGameChat(c, &msg)
	case models.ActionGameMove:
		h.handleGameMove(c, &msg)
	default:
		h.sendError(c, "unknown action")
	}
}

func (h *Handler) handleJoin(c *Connection, msg *models.WSMessage) {
	if msg.Room == "" {
		h.sendError(c, "room is required")
		return
	}
	h.hub.Join(msg.Room, c)
}

func (h *Handler) handleLeave(c *Connection, msg *models.WSMessage) {
	if msg.Room == "" {
		h.sendError(c, "room is required")
		return
	}
	h.hub.Leave(msg.Room, c)
}

func (h *Handler) handleRoomMessage(c *Connection, msg *models.WSMessage) {
	room := msg.Room
	if room == "" {
		room = LobbyRoom
	}
	out := &models.WSMessage{
		Action:  models.ActionMessage,
		Room:    room,
		Message: msg.Message,
		Sender:  c.username,
	}
	if err := h.hub.Broadcast(room, out); err != nil {
		h.sendError(c, "unknown room")
	}
}

func (h *Handler) handleGameChat(c *Connection, msg *models.WSMessage) {
	room := msg.Room
	if room == "" {
		room = msg.GameID
	}
	if room == "" {
		h.sendError(c, "room is required")
		return
	}
	out := &models.WSMessage{
		Action:  models.ActionGameChat,
		Room:    room,
		GameID:  msg.GameID,
		Message: msg.Message,
		Sender:  c.username,
	}
	if err := h.hub.Broadcast(room, out); err != nil {
		h.sendError(c, "unknown room")
	}
}
