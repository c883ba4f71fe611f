package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/game"
	"github.com/fourline-game/fourline-backend/middleware"
	"github.com/fourline-game/fourline-backend/models"
	"github.com/fourline-game/fourline-backend/repository"
	"github.com/fourline-game/fourline-backend/responses"
	"github.com/fourline-game/fourline-backend/utils"
)

var (
	errNotYourTurn = errors.New("not your turn")
	errNotInGame   = errors.New("player is not in this game")
	errGameEnded   = errors.New("game has ended")
)

// moveLog keeps each in-progress game's accepted moves in memory until the
// end-of-game transition flushes them to the archive.
type moveLog struct {
	mu    sync.Mutex
	moves map[string][]models.Move
}

func newMoveLog() *moveLog {
	return &moveLog{moves: make(map[string][]models.Move)}
}

func (l *moveLog) append(gameID string, m models.Move) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.moves[gameID] = append(l.moves[gameID], m)
}

// take removes and returns the log for gameID.
func (l *moveLog) take(gameID string) []models.Move {
	l.mu.Lock()
	defer l.mu.Unlock()
	moves := l.moves[gameID]
	delete(l.moves, gameID)
	return moves
}

// createGame builds a fresh session: empty board, creator moves first.
func (h *Handler) createGame(ctx context.Context, userID, opponentID string) (*models.Game, error) {
	if _, err := h.store.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := h.store.UserByID(ctx, opponentID); err != nil {
		return nil, err
	}

	g := &models.Game{
		ID:          uuid.NewString(),
		Player1:     userID,
		Player2:     opponentID,
		Board:       game.NewBoard(),
		CurrentTurn: userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// applyMove validates and applies a gravity drop for playerID, flips the
// turn, persists, and returns the updated game and the resolved row. The
// stored game is untouched on any rejection. Moves never end a game; the
// terminal transition is triggered separately.
func (h *Handler) applyMove(ctx context.Context, gameID, playerID string, col int) (*models.Game, int, error) {
	g, err := h.store.Game(ctx, gameID)
	if err != nil {
		return nil, 0, err
	}
	if g.Ended() {
		return nil, 0, errGameEnded
	}
	mark := g.MarkOf(playerID)
	if mark == game.Empty {
		return nil, 0, errNotInGame
	}
	if playerID != g.CurrentTurn {
		return nil, 0, errNotYourTurn
	}

	row, err := g.Board.Drop(col, mark)
	if err != nil {
		return nil, 0, err
	}
	g.CurrentTurn = g.Opponent(playerID)

	if err := h.store.SaveGame(ctx, g); err != nil {
		return nil, 0, err
	}

	h.moves.append(g.ID, models.Move{
		PlayerID:  playerID,
		Col:       col,
		Row:       row,
		Timestamp: time.Now().UnixMilli(),
	})
	return g, row, nil
}

// notifyMove pushes the resolved move individually to both participants.
// Either being offline is tolerated.
func (h *Handler) notifyMove(g *models.Game, playerID string, col, row int) {
	out := &models.WSMessage{
		Action:   models.ActionGameMove,
		GameID:   g.ID,
		Col:      &col,
		Row:      &row,
		PlayerID: playerID,
	}
	for _, userID := range []string{g.Player1, g.Player2} {
		if !h.hub.Deliver(userID, out) {
			h.log.Debug("move notice dropped",
				zap.String("gameId", g.ID), zap.String("userId", userID))
		}
	}
}

func (h *Handler) handleGameMove(c *Connection, msg *models.WSMessage) {
	if msg.GameID == "" || msg.Col == nil {
		h.sendError(c, "gmId and col are required")
		return
	}
	playerID := msg.PlayerID
	if playerID == "" {
		playerID = c.userID
	}

	g, row, err := h.applyMove(context.Background(), msg.GameID, playerID, *msg.Col)
	if err != nil {
		h.sendError(c, moveErrorMessage(err))
		return
	}
	h.notifyMove(g, playerID, *msg.Col, row)
}

func moveErrorMessage(err error) string {
	switch err {
	case repository.ErrNotFound:
		return "game not found"
	case errNotYourTurn:
		return "not your turn"
	case errNotInGame:
		return "player is not in this game"
	case errGameEnded:
		return "game has ended"
	case game.ErrColumnFull:
		return "column is full"
	case game.ErrBadColumn:
		return "bad column"
	}
	return "error processing request"
}

// CreateGame is the HTTP variant of game creation.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"userId"`
		OpponentID string `json:"opponentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.OpponentID == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	g, err := h.createGame(r.Context(), req.UserID, req.OpponentID)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(w, responses.NotFoundError{Msg: "User not found."})
			return
		}
		h.log.Error("creating game", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to create game."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"gameId": g.ID}))
}

// FetchGame returns the full current state of one game.
func (h *Handler) FetchGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	g, err := h.store.Game(r.Context(), gameID)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(w, responses.NotFoundError{Msg: "Game not found."})
			return
		}
		h.log.Error("loading game", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(g))
}

// Move applies one column drop over HTTP.
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	var req struct {
		PlayerID string `json:"playerId"`
		Col      *int   `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" || req.Col == nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	g, row, err := h.applyMove(r.Context(), gameID, req.PlayerID, *req.Col)
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			utils.HandleError(w, responses.NotFoundError{Msg: "Game not found."})
		case errNotYourTurn, errNotInGame, errGameEnded, game.ErrColumnFull, game.ErrBadColumn:
			utils.HandleError(w, responses.BadRequestError{Msg: moveErrorMessage(err)})
		default:
			h.log.Error("applying move", zap.Error(err))
			utils.HandleError(w, responses.InternalServerError{Msg: "Failed to apply move."})
		}
		return
	}

	h.notifyMove(g, req.PlayerID, *req.Col, row)
	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{
		"gameId":      g.ID,
		"col":         *req.Col,
		"row":         row,
		"currentTurn": g.CurrentTurn,
	}))
}

// EndGame is the only transition into the terminal state. The board is
// re-evaluated and the declared outcome must match: a named winner needs a
// four-line on the board, an empty winner needs a full-board draw.
func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	var req struct {
		WinnerID string `json:"winnerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	g, err := h.store.Game(r.Context(), gameID)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(w, responses.NotFoundError{Msg: "Game not found."})
			return
		}
		h.log.Error("loading game", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}
	if g.Ended() {
		utils.HandleError(w, responses.BadRequestError{Msg: "Game has already ended."})
		return
	}

	result := g.Board.Evaluate()
	if req.WinnerID == "" {
		if result.Outcome != game.Draw {
			utils.HandleError(w, responses.BadRequestError{Msg: "Board is not a draw."})
			return
		}
	} else {
		if result.Outcome != game.Win || g.PlayerOf(result.WinnerMark) != req.WinnerID {
			utils.HandleError(w, responses.BadRequestError{Msg: "Board does not support that winner."})
			return
		}
	}

	now := time.Now().UTC()
	g.Winner = req.WinnerID
	g.FinishedAt = &now
	if err := h.store.SaveGame(r.Context(), g); err != nil {
		h.log.Error("persisting game end", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to end game."})
		return
	}

	// Archival is an independent write; a failure is logged, not rolled back.
	rec := &models.GameRecord{
		GameID:     g.ID,
		Players:    []string{g.Player1, g.Player2},
		Moves:      h.moves.take(g.ID),
		Winner:     g.Winner,
		CreatedAt:  g.CreatedAt,
		FinishedAt: now,
	}
	if err := h.archive.ArchiveGame(r.Context(), rec); err != nil {
		h.log.Error("archiving game history", zap.Error(err), zap.String("gameId", g.ID))
	}

	out := &models.WSMessage{
		Action: models.ActionGameOver,
		GameID: g.ID,
		Winner: g.Winner,
	}
	for _, userID := range []string{g.Player1, g.Player2} {
		h.hub.Deliver(userID, out)
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{
		"gameId": g.ID,
		"winner": g.Winner,
	}))
}

// FetchUserGames lists the authenticated user's games.
func (h *Handler) FetchUserGames(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	games, err := h.store.GamesForUser(r.Context(), userID)
	if err != nil {
		h.log.Error("listing games", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch user games."})
		return
	}
	if games == nil {
		games = []models.Game{}
	}

	utils.HandleSuccess(w, models.SuccessResponse(games))
}

// FetchGameHistory returns the archived move log of a finished game.
func (h *Handler) FetchGameHistory(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	rec, err := h.archive.GameHistory(r.Context(), gameID)
	if err != nil {
		if err == repository.ErrNotFound {
			utils.HandleError(w, responses.NotFoundError{Msg: "Game history not found."})
			return
		}
		h.log.Error("loading game history", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error fetching game history."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(rec))
}
