package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission"
)

type resetLimitHandler struct {
	logger *logrus.Logger
	engine *admission.Engine
}

func NewResetLimitHandler(logger *logrus.Logger, engine *admission.Engine) Handler {
	return &resetLimitHandler{logger: logger, engine: engine}
}

func (h *resetLimitHandler) Handle(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing key parameter"})
	}

	ok, err := h.engine.ResetLimit(c.Context(), key)
	if err != nil {
		h.logger.WithError(err).WithField("key", key).Error("failed to reset limit")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reset limit"})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "usage record not found"})
	}

	h.logger.WithField("key", key).Info("usage counter reset")
	return c.SendStatus(fiber.StatusNoContent)
}
