package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/duitku/backend/internal/models"
)

func TestRedisCodeStore(t *testing.T) {
	ctx := context.Background()
	record := &models.OneTimeCode{
		PhoneNumber: "+628111111111",
		Email:       "a@b.co",
		Purpose:     models.OTPRegister,
		Code:        "123456",
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ExpiresAt:   time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(record)
	assert.NoError(t, err)

	t.Run("put stores json with ttl", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		store := NewRedisCodeStore(redisClient)

		mock.ExpectSet("otp:+628111111111", raw, 5*time.Minute).SetVal("OK")

		err := store.Put(ctx, record, 5*time.Minute)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get round trips the record", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		store := NewRedisCodeStore(redisClient)

		mock.ExpectGet("otp:+628111111111").SetVal(string(raw))

		got, err := store.Get(ctx, "+628111111111")
		assert.NoError(t, err)
		assert.Equal(t, record.Code, got.Code)
		assert.Equal(t, record.Purpose, got.Purpose)
	})

	t.Run("missing key is nil nil", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		store := NewRedisCodeStore(redisClient)

		mock.ExpectGet("otp:+628999999999").RedisNil()

		got, err := store.Get(ctx, "+628999999999")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		store := NewRedisCodeStore(redisClient)

		mock.ExpectDel("otp:+628111111111").SetVal(1)

		assert.NoError(t, store.Delete(ctx, "+628111111111"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
