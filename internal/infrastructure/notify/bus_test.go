package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/notify"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

type failingSink struct{}

func (failingSink) Create(context.Context, *entity.Notification) error {
	return errors.New("connection refused")
}
func (failingSink) ListRecent(context.Context, int) ([]*entity.Notification, error) { return nil, nil }

func TestBus_NotifyPersisteYPublica(t *testing.T) {
	store := memory.NewStore()
	bus := notify.NewBus(store.NotificationRepository(), logger.Nop())

	var got []entity.Notification
	require.NoError(t, bus.Subscribe(func(n entity.Notification) { got = append(got, n) }))

	err := bus.Notify(context.Background(), entity.Notification{
		Type: entity.NotificationLowStock, Title: "Stock bajo", ProductID: "p1",
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ProductID)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())

	recent, err := bus.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, entity.NotificationLowStock, recent[0].Type)
}

func TestBus_FalloDeBandejaNoPublica(t *testing.T) {
	bus := notify.NewBus(failingSink{}, logger.Nop())
	published := false
	require.NoError(t, bus.Subscribe(func(entity.Notification) { published = true }))

	err := bus.Notify(context.Background(), entity.Notification{Type: entity.NotificationLowStock})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotificationFailed))
	assert.False(t, published)
}
