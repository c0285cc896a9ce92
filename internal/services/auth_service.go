package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qingchaji/teacal-sync/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a bad username/password pair. The
// same error covers both cases so login failures don't leak which usernames
// exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrSessionExpired is returned for missing or expired session tokens.
var ErrSessionExpired = errors.New("session expired or unknown")

const sessionTTL = 7 * 24 * time.Hour

type session struct {
	userID    string
	expiresAt time.Time
}

// AuthService handles registration, login, and session tokens. Sessions
// are process-local; a restart logs everyone out, which matches how the
// first client treated its stored token.
type AuthService struct {
	facade *SyncFacade

	mu       sync.Mutex
	sessions map[string]session
}

// NewAuthService builds an AuthService on top of the sync facade so account
// rows follow the same dual-store routing as everything else.
func NewAuthService(facade *SyncFacade) *AuthService {
	return &AuthService{
		facade:   facade,
		sessions: make(map[string]session),
	}
}

// Register creates an account with a bcrypt password hash and returns the
// new profile.
func (a *AuthService) Register(username, password string) (*models.User, error) {
	if len(username) < 2 {
		return nil, fmt.Errorf("username must be at least 2 characters")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	if _, err := a.facade.GetUserByUsername(username); err == nil {
		return nil, fmt.Errorf("username already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.facade.CreateProfile(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a session token.
func (a *AuthService) Login(username, password string) (*models.User, string, error) {
	u, err := a.facade.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	a.mu.Lock()
	a.sessions[token] = session{userID: u.ID, expiresAt: time.Now().Add(sessionTTL)}
	a.mu.Unlock()

	return u, token, nil
}

// ValidateSession resolves a token to a user ID.
func (a *AuthService) ValidateSession(token string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[token]
	if !ok {
		return "", ErrSessionExpired
	}
	if time.Now().After(s.expiresAt) {
		delete(a.sessions, token)
		return "", ErrSessionExpired
	}
	return s.userID, nil
}

// Logout drops a session token.
func (a *AuthService) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}
