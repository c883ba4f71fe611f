package models

// Challenge decisions.
const (
	ChallengePending  = "pending"
	ChallengeAccepted = "accepted"
	ChallengeDeclined = "declined"
)

// Challenge is a game invitation from ChallengerID to UserID.
type Challenge struct {
	ID           string `json:"challengeId"`
	UserID       string `json:"userId"`
	ChallengerID string `json:"challengerId"`
	Decision     string `json:"decision"`
}
