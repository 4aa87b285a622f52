package admission

import (
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
	"github.com/floodgatehq/floodgate/pkg/types"
)

// ScopeKey derives the identity a rule tracks its counter against, e.g.
// "ip:10.0.0.1" or "user:42".
func ScopeKey(r rule.Rule, d types.RequestDescriptor) string {
	switch r.Scope {
	case rule.ScopePerIP:
		ip := d.ClientIP
		if ip == "" {
			ip = "unknown"
		}
		return "ip:" + ip
	case rule.ScopePerUser:
		user := d.UserID
		if user == "" {
			user = "anonymous"
		}
		return "user:" + user
	case rule.ScopePerCredential:
		cred := d.CredentialID
		if cred == "" {
			cred = "anonymous"
		}
		return "credential:" + cred
	case rule.ScopePerEndpoint:
		return "endpoint:" + d.Path
	default:
		return "global"
	}
}

// RecordKey is the store key for a (rule, scope key) pair.
func RecordKey(ruleID, scopeKey string) string {
	return ruleID + ":" + scopeKey
}
