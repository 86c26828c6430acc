package main

import (
	"testing"
	"time"

	"github.com/demoforge/demoforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("NilWhenUnconfigured", func(t *testing.T) {
		assert.Nil(t, newRedisClient(config.RedisConfig{}))
	})

	t.Run("ClientWhenConfigured", func(t *testing.T) {
		c := newRedisClient(config.RedisConfig{Addr: "localhost:6379", DB: 1})
		require.NotNil(t, c)
		defer c.Close()
		assert.Equal(t, "localhost:6379", c.Options().Addr)
		assert.Equal(t, 1, c.Options().DB)
	})
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Minute, parseDuration("30m", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("bogus", time.Hour))
}
