package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/fourline-game/fourline-backend/config"
	"github.com/fourline-game/fourline-backend/game"
	"github.com/fourline-game/fourline-backend/models"
)

// ConnectToPostgreSQL opens and pings the relational database.
func ConnectToPostgreSQL(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// PostgresStore implements Store on database/sql with lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id",
		username, passwordHash).Scan(&id)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *PostgresStore) UserByName(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE username = $1",
		username).Scan(&u.ID, &u.Username, &u.Password)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE id = $1",
		id).Scan(&u.ID, &u.Username, &u.Password)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) SaveSession(ctx context.Context, userID, tok string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, token) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		userID, tok, expiresAt)
	return err
}

func (s *PostgresStore) Session(ctx context.Context, userID, tok string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, token, expires_at FROM sessions WHERE user_id = $1 AND token = $2",
		userID, tok).Scan(&sess.UserID, &sess.Token, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, userID, tok string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND token = $2", userID, tok)
	return err
}

func (s *PostgresStore) CreateChallenge(ctx context.Context, ch *models.Challenge) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO challenges (id, user_id, challenger_id, decision) VALUES ($1, $2, $3, $4)",
		ch.ID, ch.UserID, ch.ChallengerID, ch.Decision)
	return err
}

func (s *PostgresStore) Challenge(ctx context.Context, id string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, challenger_id, decision FROM challenges WHERE id = $1",
		id).Scan(&ch.ID, &ch.UserID, &ch.ChallengerID, &ch.Decision)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *PostgresStore) SetChallengeDecision(ctx context.Context, id, decision string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE challenges SET decision = $2 WHERE id = $1", id, decision)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateGame(ctx context.Context, g *models.Game) error {
	board, err := json.Marshal(g.Board)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, player1, player2, board, current_turn, winner, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.Player1, g.Player2, board, g.CurrentTurn, nullable(g.Winner), g.CreatedAt)
	return err
}

func (s *PostgresStore) Game(ctx context.Context, id string) (*models.Game, error) {
	var (
		g      models.Game
		board  []byte
		winner sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, player1, player2, board, current_turn, winner, created_at, finished_at
		 FROM games WHERE id = $1`,
		id).Scan(&g.ID, &g.Player1, &g.Player2, &board, &g.CurrentTurn, &winner, &g.CreatedAt, &g.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		g.Winner = winner.String
	}
	if err := json.Unmarshal(board, &g.Board); err != nil {
		g.Board = game.NewBoard()
	}
	return &g, nil
}

func (s *PostgresStore) SaveGame(ctx context.Context, g *models.Game) error {
	board, err := json.Marshal(g.Board)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET board = $2, current_turn = $3, winner = $4, finished_at = $5
		 WHERE id = $1`,
		g.ID, board, g.CurrentTurn, nullable(g.Winner), g.FinishedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GamesForUser(ctx context.Context, userID string) ([]models.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player1, player2, current_turn, winner, created_at, finished_at
		 FROM games WHERE player1 = $1 OR player2 = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var (
			g      models.Game
			winner sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Player1, &g.Player2, &g.CurrentTurn, &winner, &g.CreatedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		if winner.Valid {
			g.Winner = winner.String
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
