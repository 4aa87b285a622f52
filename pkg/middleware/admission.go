package middleware

import (
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission"
	"github.com/floodgatehq/floodgate/pkg/common"
	"github.com/floodgatehq/floodgate/pkg/types"
)

// ipHeaders are checked in order of preference before falling back to the
// connection's remote address.
var ipHeaders = []string{
	"X-Real-IP",
	"X-Forwarded-For",
	"True-Client-IP",
	"CF-Connecting-IP",
}

type admissionMiddleware struct {
	logger *logrus.Logger
	engine *admission.Engine
}

func NewAdmissionMiddleware(logger *logrus.Logger, engine *admission.Engine) Middleware {
	return &admissionMiddleware{logger: logger, engine: engine}
}

// Middleware runs the admission check before any downstream handler. It
// translates the result into rate-limit response headers and short-circuits
// denials with a structured 429 body.
func (m *admissionMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(common.RequestIDContextKey, uuid.New().String())

		descriptor := m.buildDescriptor(c)
		c.Locals(common.DescriptorContextKey, descriptor)

		result := m.engine.CheckAdmission(c.Context(), descriptor)

		for name, value := range result.Headers {
			c.Set(name, value)
		}

		if !result.Allowed {
			m.logger.WithFields(logrus.Fields{
				"rule": result.RuleID,
				"ip":   descriptor.ClientIP,
				"path": descriptor.Path,
			}).Debug("request rejected by admission control")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":        common.RateLimitExceededCode,
				"message":     result.Reason,
				"limit":       result.Limit,
				"reset_time":  result.ResetTime.Unix(),
				"retry_after": retryAfterSeconds(result.RetryAfter),
			})
		}

		return c.Next()
	}
}

// retryAfterSeconds rounds up so a sub-second wait never advertises zero,
// matching the Retry-After header the engine emits.
func retryAfterSeconds(d time.Duration) int64 {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (m *admissionMiddleware) buildDescriptor(c *fiber.Ctx) types.RequestDescriptor {
	descriptor := types.RequestDescriptor{
		ClientIP:     m.clientIP(c),
		UserID:       c.Get(common.HeaderUserID),
		CredentialID: c.Get(common.HeaderCredential),
		Path:         c.Path(),
		Method:       c.Method(),
	}

	attributes := make(map[string]string)
	if tier := c.Get(common.HeaderTier); tier != "" {
		attributes[common.AttributeTier] = tier
	}
	if userType := c.Get(common.HeaderUserType); userType != "" {
		attributes[common.AttributeUserType] = userType
	}
	if subscription := c.Get(common.HeaderSubscription); subscription != "" {
		attributes[common.AttributeSubscription] = subscription
	}
	if len(attributes) > 0 {
		descriptor.Attributes = attributes
	}

	return descriptor
}

func (m *admissionMiddleware) clientIP(c *fiber.Ctx) string {
	for _, header := range ipHeaders {
		if value := c.Get(header); value != "" {
			// X-Forwarded-For accumulates one entry per hop; the first is
			// the originating client.
			if ip := strings.TrimSpace(strings.SplitN(value, ",", 2)[0]); ip != "" {
				return ip
			}
		}
	}
	return c.IP()
}
