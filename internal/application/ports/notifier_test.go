package ports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-lotes/internal/application/ports"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

type notifierFunc func(ctx context.Context, n entity.Notification) error

func (f notifierFunc) Notify(ctx context.Context, n entity.Notification) error { return f(ctx, n) }

func TestNotifySafely(t *testing.T) {
	ctx := context.Background()
	n := entity.Notification{Type: entity.NotificationLowStock}

	assert.NoError(t, ports.NotifySafely(ctx, nil, n))
	assert.NoError(t, ports.NotifySafely(ctx, notifierFunc(func(context.Context, entity.Notification) error { return nil }), n))

	err := ports.NotifySafely(ctx, notifierFunc(func(context.Context, entity.Notification) error {
		return errors.New("smtp caído")
	}), n)
	assert.True(t, errors.Is(err, domain.ErrNotificationFailed))

	assert.NotPanics(t, func() {
		err = ports.NotifySafely(ctx, notifierFunc(func(context.Context, entity.Notification) error {
			panic("canal roto")
		}), n)
	})
	assert.True(t, errors.Is(err, domain.ErrNotificationFailed))
	assert.Contains(t, err.Error(), "canal roto")
}
