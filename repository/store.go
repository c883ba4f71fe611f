package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fourline-game/fourline-backend/models"
)

// ErrNotFound is returned for lookups of unknown users, sessions,
// challenges or games.
var ErrNotFound = errors.New("not found")

// Store is the relational persistence surface: accounts, session tokens,
// challenges and game state. The production implementation is PostgreSQL;
// tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (string, error)
	UserByName(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	SaveSession(ctx context.Context, userID, tok string, expiresAt time.Time) error
	Session(ctx context.Context, userID, tok string) (*models.Session, error)
	DeleteSession(ctx context.Context, userID, tok string) error

	CreateChallenge(ctx context.Context, ch *models.Challenge) error
	Challenge(ctx context.Context, id string) (*models.Challenge, error)
	SetChallengeDecision(ctx context.Context, id, decision string) error

	CreateGame(ctx context.Context, g *models.Game) error
	Game(ctx context.Context, id string) (*models.Game, error)
	SaveGame(ctx context.Context, g *models.Game) error
	GamesForUser(ctx context.Context, userID string) ([]models.Game, error)
}

// Archiver keeps finished-game histories. The production implementation is
// MongoDB, mirroring the relational/document split for live state vs logs.
type Archiver interface {
	ArchiveGame(ctx context.Context, rec *models.GameRecord) error
	GameHistory(ctx context.Context, gameID string) (*models.GameRecord, error)
}
