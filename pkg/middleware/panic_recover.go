package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/common"
)

type panicRecoverMiddleware struct {
	logger *logrus.Logger
}

func NewPanicRecoverMiddleware(logger *logrus.Logger) Middleware {
	return &panicRecoverMiddleware{logger: logger}
}

// Middleware converts a downstream panic into a 500 so a single bad request
// cannot take the whole admission path down with it.
func (m *panicRecoverMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestID, _ := c.Locals(common.RequestIDContextKey).(string)
			m.logger.WithFields(logrus.Fields{
				"panic":      r,
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": requestID,
				"stack":      string(debug.Stack()),
			}).Error("panic recovered while handling request")

			if c.Response().StatusCode() == fiber.StatusOK {
				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()

		return c.Next()
	}
}
