package scheduler_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/scheduler"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

func TestNew_ZonaHorariaInvalida(t *testing.T) {
	_, err := scheduler.New(config.SchedulerConfig{Timezone: "Marte/Olympus"}, logger.Nop())
	assert.Error(t, err)
}

func TestAdd_ExpresionInvalida(t *testing.T) {
	s, err := scheduler.New(config.SchedulerConfig{Timezone: "America/Bogota"}, logger.Nop())
	require.NoError(t, err)
	err = s.Add("reprice", "cada seis horas", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestAdd_ExpresionDeCincoCampos(t *testing.T) {
	s, err := scheduler.New(config.SchedulerConfig{}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, s.Add("reprice", "0 */6 * * *", func(context.Context) error { return nil }))
	assert.NoError(t, s.Add("expiry", "@daily", func(context.Context) error { return nil }))
}

func TestRunNow_ErrorNoEscapa(t *testing.T) {
	s, err := scheduler.New(config.SchedulerConfig{}, logger.Nop())
	require.NoError(t, err)

	var calls atomic.Int32
	s.RunNow("falla", func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})
	assert.Equal(t, int32(1), calls.Load())
}

func TestStart_EjecutaTareaPeriodica(t *testing.T) {
	s, err := scheduler.New(config.SchedulerConfig{}, logger.Nop())
	require.NoError(t, err)

	var calls atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		calls.Add(1)
		return nil
	}))
	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestRunNow_UnaObservacionPorCorrida(t *testing.T) {
	s, err := scheduler.New(config.SchedulerConfig{}, logger.Nop())
	require.NoError(t, err)
	store := memory.NewStore()
	m := batch.NewManager(memory.NewTxRunner(store), store.Repos(), logger.Nop())

	s.RunNow("reprice", func(ctx context.Context) error {
		_, err := m.RepriceAll(ctx)
		return err
	})

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `inventario_jobs_duration_seconds_count{job="reprice",status="ok"} 1`)
}
