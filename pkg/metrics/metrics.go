// Package metrics instrumentación Prometheus del motor de inventario.
// Expone métricas HTTP, del ledger, de lotes y de tareas programadas sobre un registro propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventario"

var (
	// RequestDuration latencia HTTP por método, ruta y status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// MovementsRecorded movimientos escritos en el ledger por tipo.
	MovementsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movements_total",
			Help:      "Movimientos de stock registrados.",
		},
		[]string{"kind"},
	)

	// BatchesRepriced lotes re-guardados por el barrido o el backfill.
	BatchesRepriced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "repriced_total",
			Help:      "Lotes repreciados.",
		},
		[]string{"source", "status"}, // source: sweep|backfill; status: ok|failed
	)

	// BatchUnitsConsumed unidades descontadas de lotes (FIFO por vencimiento).
	BatchUnitsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "batch",
		Name:      "units_consumed_total",
		Help:      "Unidades consumidas de lotes.",
	})

	// Notifications notificaciones por tipo y resultado.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Notificaciones emitidas.",
		},
		[]string{"type", "status"}, // status: sent|failed|suppressed
	)

	// JobDuration duración de tareas programadas.
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Duración de tareas programadas en segundos.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		},
		[]string{"job", "status"},
	)
)

// Registry registro Prometheus de la aplicación.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		MovementsRecorded,
		BatchesRepriced,
		BatchUnitsConsumed,
		Notifications,
		JobDuration,
	)
}

// Handler expone el registro en formato Prometheus/OpenMetrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Middleware mide cada petición Fiber usando la ruta registrada (no la URL cruda).
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		RequestDuration.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveJob registra la duración de una tarea:
//
//	defer metrics.ObserveJob("reprice", time.Now(), &err)
func ObserveJob(job string, start time.Time, errp *error) {
	status := "ok"
	if errp != nil && *errp != nil {
		status = "failed"
	}
	JobDuration.WithLabelValues(job, status).Observe(time.Since(start).Seconds())
}
