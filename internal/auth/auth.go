// Package auth provides local email/password identities with persisted sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/timesince/internal/model"
	"github.com/verte-zerg/timesince/internal/store"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 30 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Identity is the signed-in user as seen by the rest of the app.
type Identity struct {
	UserID string
	Email  string
}

// Store is the persistence the provider needs.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	UserByID(ctx context.Context, id string) (model.User, error)
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (model.Session, error)
	SessionByToken(ctx context.Context, token string) (model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Options tune a Provider.
type Options struct {
	SessionTTL time.Duration
	// Cost is the bcrypt cost; zero selects bcrypt.DefaultCost.
	Cost   int
	Logger *slog.Logger
}

// Provider signs users in and out and broadcasts identity changes.
type Provider struct {
	store     Store
	tokenPath string
	ttl       time.Duration
	cost      int
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	token   string
	subs    map[int]func(*Identity)
	nextSub int
}

// NewProvider creates a provider that keeps the session token at tokenPath.
func NewProvider(st Store, tokenPath string, opts Options) *Provider {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		store:     st,
		tokenPath: tokenPath,
		ttl:       ttl,
		cost:      cost,
		logger:    logger,
		now:       time.Now,
		subs:      make(map[int]func(*Identity)),
	}
}

// Session restores the persisted session. It returns nil when nobody is
// signed in; stale or unknown tokens are discarded.
func (p *Provider) Session(ctx context.Context) (*Identity, error) {
	token, err := p.readToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	sess, err := p.store.SessionByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		p.logger.Info("discarding unknown session token")
		return nil, p.removeToken()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if sess.Expired(p.now()) {
		p.logger.Info("discarding expired session", "user", sess.UserID)
		if err := p.store.DeleteSession(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
		return nil, p.removeToken()
	}
	user, err := p.store.UserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, p.removeToken()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return &Identity{UserID: user.ID, Email: user.Email}, nil
}

// SignUp registers a new account and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := p.store.CreateUser(ctx, email, string(hash))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	p.logger.Info("user signed up", "user", user.ID)
	return p.startSession(ctx, user)
}

// SignIn checks the credentials and starts a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := p.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.startSession(ctx, user)
}

// SignOut ends the current session and notifies subscribers with nil.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.token = ""
	p.mu.Unlock()

	if token != "" {
		if err := p.store.DeleteSession(ctx, token); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
	}
	if err := p.removeToken(); err != nil {
		return err
	}
	p.logger.Info("user signed out")
	p.notify(nil)
	return nil
}

// Subscribe registers fn for identity changes and returns its cancel func.
func (p *Provider) Subscribe(fn func(*Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) startSession(ctx context.Context, user model.User) (*Identity, error) {
	sess, err := p.store.CreateSession(ctx, user.ID, p.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	if err := p.writeToken(sess.Token); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.token = sess.Token
	p.mu.Unlock()

	id := &Identity{UserID: user.ID, Email: user.Email}
	p.logger.Info("session started", "user", user.ID)
	p.notify(id)
	return id, nil
}

func (p *Provider) notify(id *Identity) {
	p.mu.Lock()
	subs := make([]func(*Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(id)
	}
}

func (p *Provider) readToken() (string, error) {
	data, err := os.ReadFile(p.tokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *Provider) writeToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(p.tokenPath), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(p.tokenPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write session token: %w", err)
	}
	return nil
}

func (p *Provider) removeToken() error {
	if err := os.Remove(p.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session token: %w", err)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
