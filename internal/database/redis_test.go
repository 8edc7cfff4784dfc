package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/vegan-dog-recipes/backend/config"
)

func TestNewRedisClientFromHostPort(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{
		RedisHost: mr.Host(),
		RedisPort: mr.Port(),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestNewRedisClientPrefersURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{
		RedisHost: "unreachable.invalid",
		RedisPort: "1",
		RedisURL:  "redis://" + mr.Addr() + "/0",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, mr.Addr(), client.Options().Addr)
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(&config.Config{RedisURL: "not a url"}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "failed to parse Redis URL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(&config.Config{RedisURL: "redis://" + addr}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
