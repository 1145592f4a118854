package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/travel-planner-api/internal/config"
	"github.com/travel-planner-api/internal/domain"
)

const keyPrefix = "verification_code:"

// NewClient creates a Redis client from cfg.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// CodeStore keeps verification codes in Redis, one key per identifier.
// Key expiry mirrors ExpiresAt so abandoned codes do not accumulate.
type CodeStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client, now: time.Now}
}

func (s *CodeStore) Put(ctx context.Context, v *domain.VerificationCode) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	var ttl time.Duration
	if !v.ExpiresAt.IsZero() {
		ttl = v.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.client.Del(ctx, keyPrefix+v.Identifier).Err()
		}
	}
	if err := s.client.Set(ctx, keyPrefix+v.Identifier, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set verification code: %w", err)
	}
	return nil
}

// Consume reads, checks and deletes the code inside a WATCH transaction.
// A concurrent writer on the same key aborts the transaction, which is
// reported as ErrCodeNotFound: the code this caller saw is gone.
func (s *CodeStore) Consume(ctx context.Context, identifier string, check func(*domain.VerificationCode) error) error {
	key := keyPrefix + identifier
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrCodeNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get verification code: %w", err)
		}
		var v domain.VerificationCode
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("unmarshal verification code: %w", err)
		}
		if v.Expired(s.now()) {
			_, _ = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Del(ctx, key)
				return nil
			})
			return domain.ErrCodeNotFound
		}
		if err := check(&v); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrCodeNotFound
	}
	return err
}
