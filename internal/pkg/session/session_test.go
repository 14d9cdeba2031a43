package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	xerrors "galaxy-airline/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("GALAXY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GALAXY_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestSessionLifecycle(t *testing.T) {
	m := NewManager(testRedis(t), nil)
	ctx := context.Background()
	acc, jti := ulid.Make().String(), ulid.Make().String()

	require.NoError(t, m.CreateSession(ctx, &SessionData{
		JTI:       jti,
		AccountID: acc,
		Email:     "demo@galaxy.com",
		LoginAt:   time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	got, err := m.GetSession(ctx, acc, jti)
	require.NoError(t, err)
	assert.Equal(t, "demo@galaxy.com", got.Email)
	require.NoError(t, m.TouchSession(ctx, acc, jti))

	require.NoError(t, m.InvalidateSession(ctx, acc, jti))
	_, err = m.GetSession(ctx, acc, jti)
	assert.True(t, errors.Is(err, xerrors.ErrSessionExpired))

	blocked, err := m.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, blocked)
	require.NoError(t, m.BlacklistToken(ctx, jti, time.Minute))
	blocked, err = m.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestCreateExpiredSessionFails(t *testing.T) {
	m := NewManager(testRedis(t), nil)
	err := m.CreateSession(context.Background(), &SessionData{JTI: "x", AccountID: "y", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

func TestLoginRateLimit(t *testing.T) {
	r := NewRateLimiter(testRedis(t))
	ctx := context.Background()
	email := ulid.Make().String() + "@galaxy.com"
	t.Cleanup(func() { _ = r.ResetLoginAttempts(ctx, "127.0.0.1", email) })

	for i := 0; i < maxLoginAttempts; i++ {
		allowed, _, err := r.CheckLoginAttempt(ctx, "127.0.0.1", email)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, remaining, err := r.CheckLoginAttempt(ctx, "127.0.0.1", email)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	require.NoError(t, r.ResetLoginAttempts(ctx, "127.0.0.1", email))
	left, err := r.GetRemainingAttempts(ctx, "127.0.0.1", email)
	require.NoError(t, err)
	assert.EqualValues(t, maxLoginAttempts, left)
}
