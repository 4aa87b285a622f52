package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/floodgatehq/floodgate/pkg/types"
)

// Condition fields a rule may predicate on.
const (
	FieldTimeOfDay    = "time_of_day"
	FieldTier         = "tier"
	FieldUserType     = "user_type"
	FieldSubscription = "subscription"
	FieldEndpoint     = "endpoint"
	FieldMethod       = "method"
)

// Condition is a single predicate over request attributes. All of a rule's
// conditions must hold for the rule to apply.
type Condition struct {
	Field  string   `json:"field" mapstructure:"field"`
	Values []string `json:"values" mapstructure:"values"`
}

func (c Condition) Validate() error {
	switch c.Field {
	case FieldTimeOfDay, FieldTier, FieldUserType, FieldSubscription, FieldEndpoint, FieldMethod:
	default:
		return fmt.Errorf("%w: unknown condition field %q", ErrInvalidRule, c.Field)
	}
	if len(c.Values) == 0 {
		return fmt.Errorf("%w: condition %q requires at least one value", ErrInvalidRule, c.Field)
	}
	if c.Field == FieldTimeOfDay {
		for _, v := range c.Values {
			if _, _, err := parseTimeOfDayRange(v); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidRule, err)
			}
		}
	}
	return nil
}

// Matches evaluates the predicate against a request descriptor at the given
// instant. The instant only matters for time_of_day conditions.
func (c Condition) Matches(d types.RequestDescriptor, now time.Time) bool {
	switch c.Field {
	case FieldTimeOfDay:
		for _, v := range c.Values {
			start, end, err := parseTimeOfDayRange(v)
			if err != nil {
				continue
			}
			minute := now.Hour()*60 + now.Minute()
			if start <= end {
				if minute >= start && minute < end {
					return true
				}
			} else if minute >= start || minute < end {
				// range wraps past midnight
				return true
			}
		}
		return false
	case FieldTier:
		return containsFold(c.Values, d.Attribute("tier"))
	case FieldUserType:
		return containsFold(c.Values, d.Attribute("user_type"))
	case FieldSubscription:
		return containsFold(c.Values, d.Attribute("subscription"))
	case FieldEndpoint:
		return containsFold(c.Values, d.Path)
	case FieldMethod:
		return containsFold(c.Values, d.Method)
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// parseTimeOfDayRange parses "HH:MM-HH:MM" into minutes since midnight.
func parseTimeOfDayRange(v string) (int, int, error) {
	parts := strings.SplitN(v, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time_of_day range %q", v)
	}
	start, err := parseMinutes(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseMinutes(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseMinutes(v string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}
