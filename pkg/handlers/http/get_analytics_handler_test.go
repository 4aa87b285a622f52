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

	"github.com/floodgatehq/floodgate/pkg/admission/analytics"
	"github.com/floodgatehq/floodgate/pkg/admission/registry"
	"github.com/floodgatehq/floodgate/pkg/admission/store"
	handlers "github.com/floodgatehq/floodgate/pkg/handlers/http"
)

func TestGetAnalyticsHandler(t *testing.T) {
	st := store.NewMemoryStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := st.Mutate(context.Background(), "r1:ip:10.0.0.1", func(rec *store.CounterRecord) {
		rec.RuleID = "r1"
		rec.ScopeKey = "ip:10.0.0.1"
		rec.Count = 10
		rec.DeniedCount = 2
		rec.FirstSeen = now
		rec.LastSeen = now
	})
	require.NoError(t, err)

	aggregator := analytics.NewAggregator(st, registry.NewRegistry(), 5)
	app := fiber.New()
	app.Get("/api/v1/analytics", handlers.NewGetAnalyticsHandler(logrus.New(), aggregator).Handle)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, float64(12), out["total_requests"])
	assert.Equal(t, float64(10), out["allowed"])
	assert.Equal(t, float64(2), out["blocked"])
}

func TestGetAnalyticsHandler_RejectsBadRange(t *testing.T) {
	aggregator := analytics.NewAggregator(store.NewMemoryStore(), registry.NewRegistry(), 5)
	app := fiber.New()
	app.Get("/api/v1/analytics", handlers.NewGetAnalyticsHandler(logrus.New(), aggregator).Handle)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics?from=yesterday", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
