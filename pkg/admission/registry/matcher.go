package registry

import (
	"strings"
	"time"

	"github.com/floodgatehq/floodgate/pkg/domain/rule"
	"github.com/floodgatehq/floodgate/pkg/types"
)

// ruleApplies reports whether a rule matches the request: an empty endpoint
// set matches every path, and every condition predicate must hold.
func ruleApplies(r rule.Rule, d types.RequestDescriptor, now time.Time) bool {
	if len(r.Endpoints) > 0 {
		matched := false
		for _, pattern := range r.Endpoints {
			if matchEndpoint(pattern, d.Path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, c := range r.Conditions {
		if !c.Matches(d, now) {
			return false
		}
	}
	return true
}

// matchEndpoint matches a path against a pattern: exact, or prefix when the
// pattern ends in "*" (e.g. "/api/v1/*").
func matchEndpoint(pattern, path string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == path
}
