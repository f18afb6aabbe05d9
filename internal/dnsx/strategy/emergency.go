package strategy

import (
	"fmt"
	"strings"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

// EmergencyError is the structured diagnostics surface raised when every
// registered upstream is unhealthy, or grafted onto an attempt error that
// exhausted a strategy's full retry budget without a single success. It is
// the only mechanism by which a caller learns about a catastrophic
// all-upstreams-down state — there is no silent fallback upstream.
type EmergencyError struct {
	Strategy      string
	FailingCount  int
	Upstreams     []upstream.FailingUpstream
	AttemptCause  error // the underlying attempt error, if any
}

func (e *EmergencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s strategy: %d upstream(s) failing", e.Strategy, e.FailingCount)
	for _, u := range e.Upstreams {
		fmt.Fprintf(&b, "; %s (%s) consecutive_failures=%d last_failure=%.0fs ago",
			u.Name, u.ServerField, u.ConsecutiveFailures, u.SecondsSinceFailure)
	}
	if e.AttemptCause != nil {
		fmt.Fprintf(&b, ": %v", e.AttemptCause)
	}
	return b.String()
}

func (e *EmergencyError) Unwrap() error { return e.AttemptCause }

// CheckEmergency returns a non-nil EmergencyError when every registered
// upstream is unhealthy, for the resolver facade to check before issuing a
// query (§4.6 step 3).
func CheckEmergency(registry *upstream.Registry, strategyName string) *EmergencyError {
	if !registry.AllUnhealthy() {
		return nil
	}
	summary := registry.EmergencySummary()
	return &EmergencyError{
		Strategy:     strategyName,
		FailingCount: len(summary),
		Upstreams:    summary,
	}
}

// EnrichWithDiagnostics wraps cause (typically an *AttemptError) with the
// same structured per-upstream summary, for the "every strategy-dictated
// attempt exhausted" path (§4.6 step 6) even when the registry isn't (yet)
// universally unhealthy.
func EnrichWithDiagnostics(cause error, registry *upstream.Registry, strategyName string) error {
	if cause == nil {
		return nil
	}
	summary := registry.EmergencySummary()
	return &EmergencyError{
		Strategy:     strategyName,
		FailingCount: len(summary),
		Upstreams:    summary,
		AttemptCause: cause,
	}
}
