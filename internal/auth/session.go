package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/config"
	"github.com/trafficpulse/ads-tracker/internal/metrics"
)

// ErrInvalidPassword is returned when the login password does not match.
var ErrInvalidPassword = errors.New("invalid password")

// sessionKeyPrefix namespaces session tokens in Redis.
const sessionKeyPrefix = "session:"

// SessionStore issues and validates opaque dashboard session tokens. The
// shared password never leaves the server; clients only ever hold a token.
type SessionStore interface {
	// Login validates the password and returns a fresh session token.
	Login(ctx context.Context, password string) (string, error)
	// Validate reports whether the token belongs to a live session.
	Validate(ctx context.Context, token string) (bool, error)
	// Logout revokes the token. Revoking an unknown token is not an error.
	Logout(ctx context.Context, token string) error
}

// Service implements SessionStore on top of a token backend.
type Service struct {
	cfg     config.AuthConfig
	tokens  tokenBackend
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// tokenBackend stores live tokens with a TTL.
type tokenBackend interface {
	put(ctx context.Context, token string, ttl time.Duration) error
	exists(ctx context.Context, token string) (bool, error)
	delete(ctx context.Context, token string) error
}

// NewService builds a session service backed by Redis.
func NewService(cfg config.AuthConfig, client *redis.Client, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		tokens:  &redisTokens{client: client},
		logger:  logger,
		metrics: m,
	}
}

// NewMemoryService builds a session service that keeps tokens in process
// memory. Used when Redis is unavailable; sessions do not survive restarts.
func NewMemoryService(cfg config.AuthConfig, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		tokens:  newMemoryTokens(),
		logger:  logger,
		metrics: m,
	}
}

func (s *Service) Login(ctx context.Context, password string) (string, error) {
	ok := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if s.metrics != nil {
		s.metrics.RecordLogin(ok)
	}
	if !ok {
		return "", ErrInvalidPassword
	}

	token := uuid.NewString()
	if err := s.tokens.put(ctx, token, s.cfg.SessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
	s.logger.Info("session created", zap.Duration("ttl", s.cfg.SessionTTL))
	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.tokens.exists(ctx, token)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.delete(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	return nil
}

// redisTokens stores tokens as Redis keys with TTL.
type redisTokens struct {
	client *redis.Client
}

func (r *redisTokens) put(ctx context.Context, token string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+token, "1", ttl).Err()
}

func (r *redisTokens) exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisTokens) delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// memoryTokens is the in-process fallback backend.
type memoryTokens struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	now     func() time.Time
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *memoryTokens) put(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[token] = m.now().Add(ttl)
	return nil
}

func (m *memoryTokens) exists(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	deadline, ok := m.expires[token]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if m.now().After(deadline) {
		m.mu.Lock()
		delete(m.expires, token)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (m *memoryTokens) delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, token)
	return nil
}
