package models

import "github.com/fourline-game/fourline-backend/game"

// Realtime action tags. Inbound messages must carry one of the inbound set;
// anything else is rejected at dispatch. Outbound pushes reuse the envelope
// with a tag from the outbound set.
const (
	ActionJoin             = "join"
	ActionLeave            = "leave"
	ActionMessage          = "message"
	ActionSendChallenge    = "sendChallenge"
	ActionDeclineChallenge = "declineChallenge"
	ActionStartGame        = "startGame"
	ActionGameChat         = "gameChat"
	ActionGameMove         = "gameMove"

	ActionChallenge         = "challenge"
	ActionChallengeDeclined = "challengeDeclined"
	ActionGameOver          = "gameOver"
	ActionError             = "error"
)

// WSMessage is the single envelope for every realtime message, inbound and
// outbound. Col is a pointer so that column 0 is distinguishable from a
// missing field.
type WSMessage struct {
	Action       string      `json:"action"`
	Room         string      `json:"room,omitempty"`
	ChallengeID  string      `json:"challengeId,omitempty"`
	Message      string      `json:"message,omitempty"`
	TargetUserID string      `json:"targetUserId,omitempty"`
	SenderID     string      `json:"senderId,omitempty"`
	AccepterID   string      `json:"accepterId,omitempty"`
	GameID       string      `json:"gmId,omitempty"`
	Col          *int        `json:"col,omitempty"`
	Row          *int        `json:"row,omitempty"`
	PlayerID     string      `json:"playerId,omitempty"`
	Board        *game.Board `json:"board,omitempty"`
	Winner       string      `json:"winner,omitempty"`
	Sender       string      `json:"sender,omitempty"`
}
