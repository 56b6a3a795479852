package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_RegistraRutaNoURL(t *testing.T) {
	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/api/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	body := scrape(t)
	assert.Contains(t, body, `route="/api/items/:id"`)
	assert.NotContains(t, body, `route="/api/items/42"`)
}

func TestObserveJob_Estado(t *testing.T) {
	var err error
	metrics.ObserveJob("prueba", time.Now(), &err)
	err = errors.New("falló")
	metrics.ObserveJob("prueba", time.Now(), &err)

	body := scrape(t)
	assert.Contains(t, body, `job="prueba",status="ok"`)
	assert.Contains(t, body, `job="prueba",status="failed"`)
}

func TestHandler_ExponeContadores(t *testing.T) {
	metrics.MovementsRecorded.WithLabelValues("ENTRY").Inc()
	assert.Contains(t, scrape(t), "inventario_ledger_movements_total")
}
