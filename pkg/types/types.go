package types

import (
	"time"
)

// RequestDescriptor carries the facts the admission engine needs about an
// inbound request. It is built once by the transport adapter and never
// mutated afterwards.
type RequestDescriptor struct {
	ClientIP     string            `json:"client_ip"`
	UserID       string            `json:"user_id,omitempty"`
	CredentialID string            `json:"credential_id,omitempty"`
	Path         string            `json:"path"`
	Method       string            `json:"method"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// Attribute returns a caller attribute or "" when it was not supplied.
func (d RequestDescriptor) Attribute(name string) string {
	if d.Attributes == nil {
		return ""
	}
	return d.Attributes[name]
}

// AdmissionResult is the outcome of a single admission check.
type AdmissionResult struct {
	Allowed    bool              `json:"allowed"`
	Limit      int               `json:"limit"`
	Remaining  int               `json:"remaining"`
	ResetTime  time.Time         `json:"reset_time"`
	RetryAfter time.Duration     `json:"retry_after,omitempty"`
	RuleID     string            `json:"rule_id,omitempty"`
	Headers    map[string]string `json:"headers"`
	Reason     string            `json:"reason,omitempty"`
}
