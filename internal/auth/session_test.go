package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:    true,
		Password:   "hunter2",
		SessionTTL: time.Hour,
	}
}

func newRedisService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(testAuthConfig(), client, zap.NewNop(), nil), mr
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newRedisService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newRedisService(t)

	_, err := svc.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _ := newRedisService(t)

	ok, err := svc.Validate(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newRedisService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	ok, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Revoking again is a no-op, not an error.
	assert.NoError(t, svc.Logout(ctx, token))
}

func TestSessionExpires(t *testing.T) {
	svc, mr := newRedisService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	ok, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryServiceFallback(t *testing.T) {
	svc := NewMemoryService(testAuthConfig(), zap.NewNop(), nil)
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)

	ok, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Logout(ctx, token))
	ok, err = svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTokensExpire(t *testing.T) {
	backend := newMemoryTokens()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return now }

	require.NoError(t, backend.put(context.Background(), "tok", time.Hour))

	ok, err := backend.exists(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	ok, err = backend.exists(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}
