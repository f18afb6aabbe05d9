package strategy

import (
	"context"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

// fifoEngine tries upstreams in registration order, up to RetryCount
// requests per upstream, stopping at the first success.
type fifoEngine struct {
	opts Options
}

func (e *fifoEngine) Kind() Kind { return FIFO }

func (e *fifoEngine) Run(ctx context.Context, attempt AttemptFunc) (Result, error) {
	names := e.opts.Registry.Names()
	if len(names) == 0 {
		return Result{}, &AttemptError{Strategy: FIFO.String()}
	}

	var failures []AttemptFailure
	for _, name := range names {
		spec, _, ok := e.opts.Registry.Get(name)
		if !ok {
			continue
		}

		succeeded, result, failure, stop := e.tryUpstream(ctx, spec, attempt)
		if succeeded {
			return result, nil
		}
		failures = append(failures, failure)
		if stop {
			break
		}
	}
	return Result{}, &AttemptError{Strategy: FIFO.String(), Failures: failures}
}

// tryUpstream retries spec up to RetryCount times before FIFO moves on
// to the next upstream in registration order. RetryCount bounds attempts
// against a single upstream, not how many upstreams get tried overall.
func (e *fifoEngine) tryUpstream(ctx context.Context, spec upstream.Spec, attempt AttemptFunc) (bool, Result, AttemptFailure, bool) {
	var lastErr error
	for i := 0; i < e.opts.RetryCount; i++ {
		start := time.Now()
		resp, cdnAccurate, err := attempt(ctx, spec)
		if err == nil {
			e.opts.Registry.RecordSuccess(spec.Name, time.Since(start), cdnAccurate)
			return true, Result{Response: resp, Spec: spec}, AttemptFailure{}, false
		}
		e.opts.Registry.RecordFailure(spec.Name)
		lastErr = err

		if ctx.Err() != nil {
			return false, Result{}, AttemptFailure{Name: spec.Name, Err: lastErr}, true
		}
	}
	return false, Result{}, AttemptFailure{Name: spec.Name, Err: lastErr}, false
}
