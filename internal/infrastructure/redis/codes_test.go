package redisinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travel-planner-api/internal/domain"
)

func newTestStore(t *testing.T) (*CodeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCodeStore(client), mr
}

func accept(*domain.VerificationCode) error { return nil }

func TestRedisCodeStore_ConsumeOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &domain.VerificationCode{Identifier: "a@b.com", CodeHash: "h"}))

	require.NoError(t, s.Consume(ctx, "a@b.com", accept))
	assert.ErrorIs(t, s.Consume(ctx, "a@b.com", accept), domain.ErrCodeNotFound)
}

func TestRedisCodeStore_FailedCheckKeepsCode(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &domain.VerificationCode{Identifier: "a@b.com", CodeHash: "h"}))

	err := s.Consume(ctx, "a@b.com", func(*domain.VerificationCode) error { return domain.ErrCodeMismatch })
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)
	assert.True(t, mr.Exists(keyPrefix+"a@b.com"))
}

func TestRedisCodeStore_PutSetsKeyTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Put(ctx, &domain.VerificationCode{
		Identifier: "a@b.com",
		CodeHash:   "h",
		IssuedAt:   now,
		ExpiresAt:  now.Add(10 * time.Minute),
	}))
	assert.Greater(t, mr.TTL(keyPrefix+"a@b.com"), 9*time.Minute)

	mr.FastForward(11 * time.Minute)
	assert.ErrorIs(t, s.Consume(ctx, "a@b.com", accept), domain.ErrCodeNotFound)
}

func TestRedisCodeStore_NoExpiryKeepsKey(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &domain.VerificationCode{Identifier: "a@b.com", CodeHash: "h"}))
	assert.Equal(t, time.Duration(0), mr.TTL(keyPrefix+"a@b.com"))
}

func TestRedisCodeStore_ExpiredByClock(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Put(ctx, &domain.VerificationCode{
		Identifier: "a@b.com",
		CodeHash:   "h",
		ExpiresAt:  now.Add(time.Minute),
	}))
	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.ErrorIs(t, s.Consume(ctx, "a@b.com", accept), domain.ErrCodeNotFound)
}
