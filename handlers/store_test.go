package handlers

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fourline-game/fourline-backend/models"
	"github.com/fourline-game/fourline-backend/repository"
)

// memStore is an in-memory Store for handler tests. Lookups return copies,
// like rows scanned from a database.
type memStore struct {
	mu         sync.Mutex
	nextID     int
	users      map[string]models.User
	sessions   map[string]models.Session
	challenges map[string]models.Challenge
	games      map[string]models.Game
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]models.User),
		sessions:   make(map[string]models.Session),
		challenges: make(map[string]models.Challenge),
		games:      make(map[string]models.Game),
	}
}

// addUser registers a user with a bcrypt-hashed password and returns its id.
func (s *memStore) addUser(username, password string) string {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	id, _ := s.CreateUser(context.Background(), username, string(hashed))
	return id
}

func (s *memStore) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.users[id] = models.User{ID: id, Username: username, Password: passwordHash}
	return id, nil
}

func (s *memStore) UserByName(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *memStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []models.User
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *memStore) SaveSession(ctx context.Context, userID, tok string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID+"|"+tok] = models.Session{UserID: userID, Token: tok, ExpiresAt: expiresAt}
	return nil
}

func (s *memStore) Session(ctx context.Context, userID, tok string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID+"|"+tok]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (s *memStore) DeleteSession(ctx context.Context, userID, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID+"|"+tok)
	return nil
}

func (s *memStore) CreateChallenge(ctx context.Context, ch *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.ID] = *ch
	return nil
}

func (s *memStore) Challenge(ctx context.Context, id string) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ch, nil
}

func (s *memStore) SetChallengeDecision(ctx context.Context, id, decision string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return repository.ErrNotFound
	}
	ch.Decision = decision
	s.challenges[id] = ch
	return nil
}

func (s *memStore) CreateGame(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = *g
	return nil
}

func (s *memStore) Game(ctx context.Context, id string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *memStore) SaveGame(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return repository.ErrNotFound
	}
	s.games[g.ID] = *g
	return nil
}

func (s *memStore) GamesForUser(ctx context.Context, userID string) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var games []models.Game
	for _, g := range s.games {
		if g.Player1 == userID || g.Player2 == userID {
			games = append(games, g)
		}
	}
	return games, nil
}

// memArchive is an in-memory Archiver for handler tests.
type memArchive struct {
	mu   sync.Mutex
	recs map[string]models.GameRecord
}

func newMemArchive() *memArchive {
	return &memArchive{recs: make(map[string]models.GameRecord)}
}

func (a *memArchive) ArchiveGame(ctx context.Context, rec *models.GameRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs[rec.GameID] = *rec
	return nil
}

func (a *memArchive) GameHistory(ctx context.Context, gameID string) (*models.GameRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.recs[gameID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}
