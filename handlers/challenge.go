package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/models"
	"github.com/fourline-game/fourline-backend/repository"
	"github.com/fourline-game/fourline-backend/responses"
	"github.com/fourline-game/fourline-backend/utils"
)

// SendChallenge persists a pending challenge from challengerId to userId and
// returns its id over the HTTP response. Notifying the target is the
// realtime sendChallenge action's job, not this endpoint's.
func (h *Handler) SendChallenge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"userId"`
		ChallengerID string `json:"challengerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.ChallengerID == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	if _, err := h.store.UserByID(r.Context(), req.UserID); err != nil {
		h.userLookupError(w, err)
		return
	}
	if _, err := h.store.UserByID(r.Context(), req.ChallengerID); err != nil {
		h.userLookupError(w, err)
		return
	}

	ch := &models.Challenge{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		ChallengerID: req.ChallengerID,
		Decision:     models.ChallengePending,
	}
	if err := h.store.CreateChallenge(r.Context(), ch); err != nil {
		h.log.Error("persisting challenge", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to create challenge."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"challengeId": ch.ID}))
}

// ChallengeResponse records the target's accept/decline decision. Accepting
// does not create the game here; game creation is an independent write with
// no rollback tie to this one.
func (h *Handler) ChallengeResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChallengeID string `json:"challengeId"`
		Reply       string `json:"reply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChallengeID == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	var decision string
	switch req.Reply {
	case "accept":
		decision = models.ChallengeAccepted
	case "decline":
		decision = models.ChallengeDeclined
	default:
		utils.HandleError(w, responses.BadRequestError{Msg: "Reply must be accept or decline."})
		return
	}

	if _, err := h.store.Challenge(r.Context(), req.ChallengeID); err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(w, responses.NotFoundError{Msg: "Challenge not found."})
			return
		}
		h.log.Error("loading challenge", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	if err := h.store.SetChallengeDecision(r.Context(), req.ChallengeID, decision); err != nil {
		h.log.Error("updating challenge decision", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to update challenge."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]bool{
		"accepted": decision == models.ChallengeAccepted,
	}))
}

// handleSendChallenge pushes a challenge notification to the target's live
// connection. No retry and no offline queue: an unregistered target is
// reported back to the sender only.
func (h *Handler) handleSendChallenge(c *Connection, msg *models.WSMessage) {
	if msg.TargetUserID == "" {
		h.sendError(c, "targetUserId is required")
		return
	}
	out := &models.WSMessage{
		Action:      models.ActionChallenge,
		ChallengeID: msg.ChallengeID,
		SenderID:    c.userID,
		Sender:      c.username,
	}
	if !h.hub.Deliver(msg.TargetUserID, out) {
		h.sendError(c, "target user is not connected")
	}
}

// handleDeclineChallenge records the decline and notifies the original
// challenger if connected. An offline challenger is logged, not surfaced.
func (h *Handler) handleDeclineChallenge(c *Connection, msg *models.WSMessage) {
	if msg.ChallengeID == "" {
		h.sendError(c, "challengeId is required")
		return
	}

	ctx := context.Background()
	ch, err := h.store.Challenge(ctx, msg.ChallengeID)
	if err == repository.ErrNotFound {
		h.sendError(c, "challenge not found")
		return
	}
	if err != nil {
		h.log.Error("loading challenge", zap.Error(err))
		h.sendError(c, "error processing request")
		return
	}

	if err := h.store.SetChallengeDecision(ctx, ch.ID, models.ChallengeDeclined); err != nil {
		h.log.Error("updating challenge decision", zap.Error(err))
		h.sendError(c, "error processing request")
		return
	}

	out := &models.WSMessage{
		Action:      models.ActionChallengeDeclined,
		ChallengeID: ch.ID,
		SenderID:    c.userID,
	}
	if !h.hub.Deliver(ch.ChallengerID, out) {
		h.log.Info("decline notice dropped, challenger offline",
			zap.String("challengeId", ch.ID),
			zap.String("challengerId", ch.ChallengerID))
	}
}

// handleStartGame creates the game session and independently notifies both
// participants. Either one being offline is tolerated; the created game is
// not rolled back.
func (h *Handler) handleStartGame(c *Connection, msg *models.WSMessage) {
	senderID := msg.SenderID
	accepterID := msg.AccepterID
	if accepterID == "" {
		accepterID = c.userID
	}
	if senderID == "" || senderID == accepterID {
		h.sendError(c, "senderId and accepterId are required")
		return
	}

	g, err := h.createGame(context.Background(), senderID, accepterID)
	if err != nil {
		if err == repository.ErrNotFound {
			h.sendError(c, "user not found")
			return
		}
		h.log.Error("creating game", zap.Error(err))
		h.sendError(c, "error processing request")
		return
	}

	out := &models.WSMessage{
		Action:     models.ActionStartGame,
		GameID:     g.ID,
		SenderID:   senderID,
		AccepterID: accepterID,
		Board:      &g.Board,
	}
	for _, userID := range []string{senderID, accepterID} {
		if !h.hub.Deliver(userID, out) {
			h.log.Info("startGame notice dropped",
				zap.String("gameId", g.ID), zap.String("userId", userID))
		}
	}
}

func (h *Handler) userLookupError(w http.ResponseWriter, err error) {
	if err == repository.ErrNotFound {
		utils.HandleError(w, responses.NotFoundError{Msg: "User not found."})
		return
	}
	h.log.Error("loading user", zap.Error(err))
	utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
}
