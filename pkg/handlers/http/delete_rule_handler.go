package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission"
)

type deleteRuleHandler struct {
	logger *logrus.Logger
	engine *admission.Engine
}

func NewDeleteRuleHandler(logger *logrus.Logger, engine *admission.Engine) Handler {
	return &deleteRuleHandler{logger: logger, engine: engine}
}

func (h *deleteRuleHandler) Handle(c *fiber.Ctx) error {
	ruleID := c.Params("rule_id")
	if ruleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing rule id"})
	}

	if !h.engine.RemoveRule(ruleID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "rule not found"})
	}

	h.logger.WithField("rule", ruleID).Info("rule removed")
	return c.SendStatus(fiber.StatusNoContent)
}
