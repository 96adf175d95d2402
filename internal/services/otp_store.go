package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/duitku/backend/internal/models"
)

// CodeStore persists one-time codes keyed by phone number. Get returns
// (nil, nil) when no live code exists.
type CodeStore interface {
	Get(ctx context.Context, phone string) (*models.OneTimeCode, error)
	Put(ctx context.Context, code *models.OneTimeCode, ttl time.Duration) error
	Delete(ctx context.Context, phone string) error
}

type redisCodeStore struct {
	redis *redis.Client
}

// NewRedisCodeStore returns a CodeStore backed by Redis. Records are stored
// as JSON under otp:<phone> with the code TTL, so an abandoned record also
// ages out server-side.
func NewRedisCodeStore(redisClient *redis.Client) CodeStore {
	return &redisCodeStore{redis: redisClient}
}

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

func (s *redisCodeStore) Get(ctx context.Context, phone string) (*models.OneTimeCode, error) {
	raw, err := s.redis.Get(ctx, otpKey(phone)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var code models.OneTimeCode
	if err := json.Unmarshal([]byte(raw), &code); err != nil {
		return nil, err
	}
	return &code, nil
}

func (s *redisCodeStore) Put(ctx context.Context, code *models.OneTimeCode, ttl time.Duration) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, otpKey(code.PhoneNumber), raw, ttl).Err()
}

func (s *redisCodeStore) Delete(ctx context.Context, phone string) error {
	return s.redis.Del(ctx, otpKey(phone)).Err()
}
