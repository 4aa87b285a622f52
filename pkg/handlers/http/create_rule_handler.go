package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
	"github.com/floodgatehq/floodgate/pkg/handlers/http/request"
	"github.com/floodgatehq/floodgate/pkg/handlers/http/response"
)

type createRuleHandler struct {
	logger *logrus.Logger
	engine *admission.Engine
}

func NewCreateRuleHandler(logger *logrus.Logger, engine *admission.Engine) Handler {
	return &createRuleHandler{logger: logger, engine: engine}
}

func (h *createRuleHandler) Handle(c *fiber.Ctx) error {
	var req request.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to parse create rule request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	r, err := req.ToRule()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.engine.AddRule(r); err != nil {
		if errors.Is(err, rule.ErrRuleAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).WithField("rule", r.ID).Error("failed to register rule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(response.FromRule(r))
}
