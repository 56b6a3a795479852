// Package scheduler tareas periódicas (barrido de descuentos y alertas de vencimiento).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

// JobFunc tarea programada.
type JobFunc func(ctx context.Context) error

// Scheduler envuelve cron con zona horaria, recuperación de pánicos y métricas por tarea.
type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New crea el scheduler con expresiones de 5 campos (y descriptores @every, @daily...).
func New(cfg config.SchedulerConfig, log *logger.Logger) (*Scheduler, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("zona horaria %q: %w", tz, err)
	}
	log = log.Named("scheduler")
	cl := cronLogger{log: log}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{cron: c, log: log, ctx: ctx, cancel: cancel, timeout: time.Hour}, nil
}

// Add registra una tarea con su expresión cron.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("registrar tarea %s (%q): %w", name, spec, err)
	}
	s.log.Info().Str("job", name).Str("spec", spec).Msg("Tarea programada")
	return nil
}

// RunNow ejecuta la tarea de inmediato con el mismo registro y métricas.
func (s *Scheduler) RunNow(name string, fn JobFunc) {
	s.run(name, fn)
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	var err error
	defer metrics.ObserveJob(name, time.Now(), &err)
	start := time.Now()
	err = fn(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("Tarea programada falló")
		return
	}
	s.log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("Tarea programada completada")
}

// Start inicia el scheduler en segundo plano.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancela las tareas en curso y espera a que terminen o a que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapta logger.Logger a cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
