package handlers

import (
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/models"
	"github.com/fourline-game/fourline-backend/repository"
)

// Handler carries the shared state every HTTP and realtime handler needs:
// the relational store, the finished-game archive, the hub and the logger.
type Handler struct {
	store   repository.Store
	archive repository.Archiver
	hub     *Hub
	log     *zap.Logger
	moves   *moveLog
}

func NewHandler(store repository.Store, archive repository.Archiver, hub *Hub, log *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		archive: archive,
		hub:     hub,
		log:     log,
		moves:   newMoveLog(),
	}
}

// sendError delivers an error envelope to the initiating connection only.
// The connection stays open.
func (h *Handler) sendError(c *Connection, message string) {
	c.Send(encode(&models.WSMessage{Action: models.ActionError, Message: message}))
}
