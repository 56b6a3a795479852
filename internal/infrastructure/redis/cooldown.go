// Package redis cool-downs de notificaciones compartidos entre réplicas.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/pkg/config"
)

const keyPrefix = "inventario:cooldown:"

var _ ports.Cooldown = (*Cooldown)(nil)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Cooldown ventanas de supresión con SET NX PX.
type Cooldown struct {
	client *goredis.Client
}

// NewCooldown construye el adaptador sobre un cliente existente.
func NewCooldown(client *goredis.Client) *Cooldown {
	return &Cooldown{client: client}
}

// Acquire reserva key por ttl; false si ya estaba reservada.
func (c *Cooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, keyPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown acquire: %w", err)
	}
	return ok, nil
}

// Reset libera key.
func (c *Cooldown) Reset(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cooldown reset: %w", err)
	}
	return nil
}
