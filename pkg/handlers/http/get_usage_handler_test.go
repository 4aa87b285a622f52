package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgatehq/floodgate/pkg/admission"
	"github.com/floodgatehq/floodgate/pkg/admission/registry"
	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
	handlers "github.com/floodgatehq/floodgate/pkg/handlers/http"
	"github.com/floodgatehq/floodgate/pkg/types"
)

func newUsageApp(t *testing.T) (*fiber.App, *admission.Engine) {
	t.Helper()
	logger := logrus.New()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Add(rule.Rule{
		ID:       "tight",
		Strategy: rule.StrategyFixedWindow,
		Limit:    5,
		Window:   time.Minute,
		Scope:    rule.ScopePerIP,
	}))
	engine := admission.NewEngine(logger, store.NewMemoryStore(), reg, nil)

	app := fiber.New()
	app.Get("/api/v1/usage", handlers.NewGetUsageHandler(logger, engine).Handle)
	app.Delete("/api/v1/usage", handlers.NewResetLimitHandler(logger, engine).Handle)
	return app, engine
}

func TestGetUsageHandler_ReturnsRecord(t *testing.T) {
	app, engine := newUsageApp(t)

	result := engine.CheckAdmission(context.Background(), types.RequestDescriptor{ClientIP: "10.0.0.1", Path: "/x"})
	require.True(t, result.Allowed)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage?key=tight:ip:10.0.0.1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "tight", out["rule_id"])
	assert.Equal(t, float64(1), out["count"])
}

func TestGetUsageHandler_NotFound(t *testing.T) {
	app, _ := newUsageApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage?key=tight:ip:9.9.9.9", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetUsageHandler_MissingKey(t *testing.T) {
	app, _ := newUsageApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResetLimitHandler_ClearsCounter(t *testing.T) {
	app, engine := newUsageApp(t)

	result := engine.CheckAdmission(context.Background(), types.RequestDescriptor{ClientIP: "10.0.0.1", Path: "/x"})
	require.True(t, result.Allowed)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/usage?key=tight:ip:10.0.0.1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// A second reset finds nothing.
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
