package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-lotes/pkg/config"
)

func newCooldown(t *testing.T) (*redis.Cooldown, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewCooldown(client), mr
}

func TestCooldown_AcquireSuprimeHastaExpirar(t *testing.T) {
	cd, mr := newCooldown(t)
	ctx := context.Background()

	ok, err := cd.Acquire(ctx, "expiry:p1:default", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cd.Acquire(ctx, "expiry:p1:default", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Hour + time.Second)

	ok, err = cd.Acquire(ctx, "expiry:p1:default", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldown_ResetLiberaLaClave(t *testing.T) {
	cd, _ := newCooldown(t)
	ctx := context.Background()

	ok, err := cd.Acquire(ctx, "low-stock:p1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, cd.Reset(ctx, "low-stock:p1"))

	ok, err = cd.Acquire(ctx, "low-stock:p1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCooldown_ClavesIndependientes(t *testing.T) {
	cd, mr := newCooldown(t)
	ctx := context.Background()

	_, err := cd.Acquire(ctx, "expiry:p1:a", time.Hour)
	require.NoError(t, err)
	ok, err := cd.Acquire(ctx, "expiry:p1:b", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("inventario:cooldown:expiry:p1:a"))
}

func TestNewClient_SinServidor(t *testing.T) {
	_, err := redis.NewClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
