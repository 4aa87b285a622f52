package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission"
	"github.com/floodgatehq/floodgate/pkg/handlers/http/response"
)

type listRulesHandler struct {
	logger *logrus.Logger
	engine *admission.Engine
}

func NewListRulesHandler(logger *logrus.Logger, engine *admission.Engine) Handler {
	return &listRulesHandler{logger: logger, engine: engine}
}

func (h *listRulesHandler) Handle(c *fiber.Ctx) error {
	rules := h.engine.Rules()
	out := make([]response.RuleOutput, 0, len(rules))
	for _, r := range rules {
		out = append(out, response.FromRule(r))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"rules": out})
}
