// Package auth registers users and issues the bearer tokens the API checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

const (
	DefaultTokenTTL = 24 * time.Hour

	DemoUserID    = "1"
	DemoUserEmail = "demo@example.com"
	DemoUserName  = "مستخدم تجريبي"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingFields      = errors.New("email, password and name are required")
)

// Session is returned by Register and Login.
type Session struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Service keeps users in memory. Revoked token IDs are remembered until the
// token would have expired.
type Service struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // by normalized email
	byID    map[string]*domain.User
	revoked map[string]time.Time
	nextID  int

	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Service)

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Service) { s.ttl = d }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service signing tokens with secret.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("NewService: JWT secret is required")
	}
	s := &Service{
		users:   make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
		revoked: make(map[string]time.Time),
		nextID:  1,
		secret:  []byte(secret),
		ttl:     DefaultTokenTTL,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SeedDemoUser adds the demo account with the given password.
func (s *Service) SeedDemoUser(password string) error {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return fmt.Errorf("SeedDemoUser: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &domain.User{
		ID:           DemoUserID,
		Email:        DemoUserEmail,
		Name:         DemoUserName,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	s.users[normalizeEmail(u.Email)] = u
	s.byID[u.ID] = u
	if s.nextID <= 1 {
		s.nextID = 2
	}
	return nil
}

func (s *Service) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return Session{}, ErrMissingFields
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("Register: %w", err)
	}

	s.mu.Lock()
	key := normalizeEmail(email)
	if _, exists := s.users[key]; exists {
		s.mu.Unlock()
		return Session{}, ErrEmailTaken
	}
	u := &domain.User{
		ID:           strconv.Itoa(s.nextID),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	s.nextID++
	s.users[key] = u
	s.byID[u.ID] = u
	s.mu.Unlock()

	return s.issue(*u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.RLock()
	u, ok := s.users[normalizeEmail(email)]
	var user domain.User
	if ok {
		user = *u
	}
	s.mu.RUnlock()

	if !ok || !CheckPasswordHash(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Logout revokes token. Revoking an invalid token is an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// Verify returns the user a valid, unrevoked token was issued to.
func (s *Service) Verify(ctx context.Context, token string) (domain.User, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, revoked := s.revoked[claims.ID]; revoked {
		return domain.User{}, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}
	u, ok := s.byID[claims.Subject]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	return *u, nil
}

func (s *Service) issue(u domain.User) (Session, error) {
	token, claims, err := GenerateToken(s.secret, u.ID, u.Email, u.Name, s.now(), s.ttl)
	if err != nil {
		return Session{}, err
	}
	u.PasswordHash = nil
	return Session{User: u, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) pruneLocked() {
	now := time.Now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
