package models

import (
	"time"

	"github.com/fourline-game/fourline-backend/game"
)

// Game is the full mutable state of one board game session.
type Game struct {
	ID          string     `json:"gameId"`
	Player1     string     `json:"player1"`
	Player2     string     `json:"player2"`
	Board       game.Board `json:"gameState"`
	CurrentTurn string     `json:"currentTurn"`
	Winner      string     `json:"winner,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// Ended reports whether the game has reached its terminal state.
func (g *Game) Ended() bool {
	return g.Winner != "" || g.FinishedAt != nil
}

// MarkOf returns the board mark for playerID, or game.Empty for a
// non-participant.
func (g *Game) MarkOf(playerID string) int {
	switch playerID {
	case g.Player1:
		return game.Mark1
	case g.Player2:
		return game.Mark2
	}
	return game.Empty
}

// PlayerOf is the inverse of MarkOf.
func (g *Game) PlayerOf(mark int) string {
	switch mark {
	case game.Mark1:
		return g.Player1
	case game.Mark2:
		return g.Player2
	}
	return ""
}

// Opponent returns the other participant, or "" for a non-participant.
func (g *Game) Opponent(playerID string) string {
	switch playerID {
	case g.Player1:
		return g.Player2
	case g.Player2:
		return g.Player1
	}
	return ""
}

// Move is one accepted column drop, kept in the per-game move log and
// archived when the game ends.
type Move struct {
	PlayerID  string `json:"playerId" bson:"playerId"`
	Col       int    `json:"col" bson:"col"`
	Row       int    `json:"row" bson:"row"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

// GameRecord is the archived history of a finished game.
type GameRecord struct {
	GameID     string    `json:"gameId" bson:"gameId"`
	Players    []string  `json:"players" bson:"players"`
	Moves      []Move    `json:"moves" bson:"moves"`
	Winner     string    `json:"winner,omitempty" bson:"winner,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	FinishedAt time.Time `json:"finishedAt" bson:"finishedAt"`
}
