package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/common"
)

type admittedHandler struct {
	logger *logrus.Logger
}

func NewAdmittedHandler(logger *logrus.Logger) Handler {
	return &admittedHandler{logger: logger}
}

// Handle terminates requests that cleared admission control. Rate-limit
// headers were already set by the middleware chain.
func (h *admittedHandler) Handle(c *fiber.Ctx) error {
	requestID, _ := c.Locals(common.RequestIDContextKey).(string)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "admitted",
		"request_id": requestID,
	})
}
