package admission

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission/registry"
	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/admission/strategy"
	"github.com/floodgatehq/floodgate/pkg/common"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
	"github.com/floodgatehq/floodgate/pkg/infra/prometheus"
	"github.com/floodgatehq/floodgate/pkg/types"
)

const implicitDefaultRuleID = "default"

// Engine is the admission façade: it matches rules, probes their strategies,
// charges the most restrictive one and turns the verdict into an
// AdmissionResult. It never returns an error to the caller; internal faults
// fail open.
type Engine struct {
	logger        *logrus.Logger
	store         store.Store
	registry      *registry.Registry
	defaultLimit  int
	defaultWindow time.Duration
	timeProvider  func() time.Time
}

type EngineOpts struct {
	DefaultLimit  int
	DefaultWindow time.Duration
	TimeProvider  func() time.Time
}

func NewEngine(logger *logrus.Logger, st store.Store, reg *registry.Registry, opts *EngineOpts) *Engine {
	e := &Engine{
		logger:        logger,
		store:         st,
		registry:      reg,
		defaultLimit:  100,
		defaultWindow: time.Minute,
		timeProvider:  time.Now,
	}
	if opts != nil {
		if opts.DefaultLimit > 0 {
			e.defaultLimit = opts.DefaultLimit
		}
		if opts.DefaultWindow > 0 {
			e.defaultWindow = opts.DefaultWindow
		}
		if opts.TimeProvider != nil {
			e.timeProvider = opts.TimeProvider
		}
	}
	return e
}

func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) Store() store.Store {
	return e.store
}

// CheckAdmission decides whether the request may proceed. Matched rules are
// probed against copies of their counter records; only the winning rule's
// record is charged, under its key lock, so concurrent checks for the same
// pair serialize and non-winning rules are never double-charged.
func (e *Engine) CheckAdmission(ctx context.Context, d types.RequestDescriptor) types.AdmissionResult {
	start := time.Now()
	defer func() {
		prometheus.AdmissionLatency.Observe(float64(time.Since(start).Microseconds()))
	}()

	now := e.timeProvider()
	matched := e.registry.Applicable(d, now)
	if len(matched) == 0 {
		matched = []rule.Rule{e.implicitDefaultRule()}
	}

	candidates := make([]candidate, 0, len(matched))
	for _, r := range matched {
		scopeKey := ScopeKey(r, d)
		rec, _, err := e.store.Get(ctx, RecordKey(r.ID, scopeKey))
		if err != nil {
			return e.failOpen(err)
		}
		probe := rec
		out, err := strategy.Evaluate(r, &probe, now)
		if err != nil {
			return e.failOpen(err)
		}
		candidates = append(candidates, candidate{rule: r, scopeKey: scopeKey, outcome: out})
	}

	winner := candidates[mostRestrictive(candidates)]

	var final strategy.Outcome
	var evalErr error
	_, err := e.store.Mutate(ctx, RecordKey(winner.rule.ID, winner.scopeKey), func(rec *store.CounterRecord) {
		if rec.FirstSeen.IsZero() {
			rec.RuleID = winner.rule.ID
			rec.ScopeKey = winner.scopeKey
			rec.Limit = winner.rule.Limit
			rec.Window = winner.rule.Window
			rec.FirstSeen = now
		}
		final, evalErr = strategy.Evaluate(winner.rule, rec, now)
	})
	if err != nil {
		return e.failOpen(err)
	}
	if evalErr != nil {
		return e.failOpen(evalErr)
	}

	result := e.buildResult(winner.rule, final, now)
	prometheus.AdmissionTotal.WithLabelValues(decisionLabel(result), winner.rule.ID).Inc()
	return result
}

// buildResult applies the winning rule's violation actions and populates the
// caller-facing header map.
func (e *Engine) buildResult(r rule.Rule, out strategy.Outcome, now time.Time) types.AdmissionResult {
	result := types.AdmissionResult{
		Allowed:    out.Allowed,
		Limit:      r.Limit,
		Remaining:  out.Remaining,
		ResetTime:  out.ResetTime,
		RetryAfter: out.RetryAfter,
		RuleID:     r.ID,
	}

	if !out.Allowed {
		switch {
		case r.HasAction(rule.ActionLog):
			// Violation is recorded but the request goes through.
			e.logger.WithFields(logrus.Fields{
				"rule":  r.ID,
				"limit": r.Limit,
			}).Warn("rate limit exceeded, admitting per log action")
			result.Allowed = true
			result.Reason = "limit exceeded (log only)"
		case r.HasAction(rule.ActionAlert):
			e.logger.WithFields(logrus.Fields{
				"rule":  r.ID,
				"limit": r.Limit,
			}).Warn("rate limit alert triggered")
			result.Reason = "rate limit exceeded"
		case r.HasAction(rule.ActionDelay):
			result.Reason = "rate limited, retry after backoff"
		default:
			result.Reason = "rate limit exceeded"
		}
	}

	result.Headers = buildHeaders(result)
	return result
}

func (e *Engine) implicitDefaultRule() rule.Rule {
	return rule.Rule{
		ID:       implicitDefaultRuleID,
		Strategy: rule.StrategyFixedWindow,
		Limit:    e.defaultLimit,
		Window:   e.defaultWindow,
		Scope:    rule.ScopePerIP,
	}
}

// failOpen is the evaluation-error path: admission control availability must
// never become a total outage, so the request is admitted with the engine's
// defaults and the fault is logged for operators.
func (e *Engine) failOpen(err error) types.AdmissionResult {
	e.logger.WithError(err).Error("admission check failed, failing open")
	now := e.timeProvider()
	result := types.AdmissionResult{
		Allowed:   true,
		Limit:     e.defaultLimit,
		Remaining: e.defaultLimit,
		ResetTime: now.Add(e.defaultWindow),
		Reason:    "admission fault, failing open",
	}
	result.Headers = buildHeaders(result)
	prometheus.AdmissionTotal.WithLabelValues("fail_open", implicitDefaultRuleID).Inc()
	return result
}

func buildHeaders(result types.AdmissionResult) map[string]string {
	headers := map[string]string{
		common.HeaderRateLimitLimit:     strconv.Itoa(result.Limit),
		common.HeaderRateLimitRemaining: strconv.Itoa(result.Remaining),
		common.HeaderRateLimitReset:     strconv.FormatInt(result.ResetTime.Unix(), 10),
	}
	if !result.Allowed {
		headers[common.HeaderRetryAfter] = strconv.FormatInt(retryAfterSeconds(result.RetryAfter), 10)
	}
	return headers
}

func retryAfterSeconds(d time.Duration) int64 {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func decisionLabel(result types.AdmissionResult) string {
	if result.Allowed {
		return "allowed"
	}
	return "blocked"
}
