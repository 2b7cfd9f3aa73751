package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
)

func logLine(t *testing.T, handler fiber.Handler) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.New(&buf)))
	app.Get("/x", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

// ────────────────────────────────────────────────────────────────
// Registro de peticiones
// ────────────────────────────────────────────────────────────────

func TestRequestLogger_Exito(t *testing.T) {
	entry := logLine(t, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 201, entry["status"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/x", entry["path"])
}

func TestRequestLogger_FiberErrorEnvuelto(t *testing.T) {
	entry := logLine(t, func(*fiber.Ctx) error {
		return fmt.Errorf("buscar recurso: %w", fiber.NewError(fiber.StatusNotFound, "no existe"))
	})
	assert.EqualValues(t, 404, entry["status"])
	assert.Equal(t, "warn", entry["level"])
}

func TestRequestLogger_ErrorDesconocido(t *testing.T) {
	entry := logLine(t, func(*fiber.Ctx) error { return errors.New("boom") })
	assert.EqualValues(t, 500, entry["status"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}
