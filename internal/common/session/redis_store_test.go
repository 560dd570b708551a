package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisStore(client)
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()

	s := &Session{
		ID:        "abc123",
		UserID:    3,
		Username:  "admin",
		Email:     "admin@hospital.test",
		FullName:  "Site Admin",
		Role:      "admin",
		LoggedIn:  true,
		LoginTime: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, s, 2*time.Hour))

	assert.True(t, mr.Exists(redisKeyPrefix+"abc123"))
	assert.Equal(t, 2*time.Hour, mr.TTL(redisKeyPrefix+"abc123"))

	got, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, s.FullName, got.FullName)
	assert.True(t, got.LoggedIn)
	assert.True(t, s.LoginTime.Equal(got.LoginTime))

	require.NoError(t, store.Delete(ctx, "abc123"))
	_, err = store.Get(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_MissingAndExpired(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, &Session{ID: "short", UserID: 1, LoggedIn: true}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, store := setupRedisStore(t)
	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
