package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission/analytics"
)

type getAnalyticsHandler struct {
	logger     *logrus.Logger
	aggregator *analytics.Aggregator
}

func NewGetAnalyticsHandler(logger *logrus.Logger, aggregator *analytics.Aggregator) Handler {
	return &getAnalyticsHandler{logger: logger, aggregator: aggregator}
}

// Handle produces a usage summary for the requested range. "from" and "to"
// are unix seconds; both default to unbounded.
func (h *getAnalyticsHandler) Handle(c *fiber.Ctx) error {
	from, err := parseUnixQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from parameter"})
	}
	to, err := parseUnixQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to parameter"})
	}

	summary, err := h.aggregator.GetAnalytics(c.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("failed to compute analytics")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute analytics"})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func parseUnixQuery(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}
