package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission"
	"github.com/floodgatehq/floodgate/pkg/handlers/http/response"
)

type getUsageHandler struct {
	logger *logrus.Logger
	engine *admission.Engine
}

func NewGetUsageHandler(logger *logrus.Logger, engine *admission.Engine) Handler {
	return &getUsageHandler{logger: logger, engine: engine}
}

// Handle looks up one counter record by its "<ruleID>:<scopeKey>" key,
// supplied as a query parameter because scope keys contain path separators.
func (h *getUsageHandler) Handle(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing key parameter"})
	}

	rec, ok, err := h.engine.GetUsage(c.Context(), key)
	if err != nil {
		h.logger.WithError(err).WithField("key", key).Error("failed to read usage")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read usage"})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "usage record not found"})
	}

	return c.Status(fiber.StatusOK).JSON(response.FromCounterRecord(rec))
}
