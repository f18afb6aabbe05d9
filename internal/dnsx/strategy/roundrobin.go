package strategy

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	roundRobinAttempts     = 3
	roundRobinInterAttempt = 50 * time.Millisecond
)

// roundRobinEngine tries up to three consecutive upstreams starting at a
// shared, ever-advancing index, sleeping between attempts.
type roundRobinEngine struct {
	opts Options
	next int64
}

func (e *roundRobinEngine) Kind() Kind { return ROUND_ROBIN }

func (e *roundRobinEngine) Run(ctx context.Context, attempt AttemptFunc) (Result, error) {
	names := e.opts.Registry.Names()
	if len(names) == 0 {
		return Result{}, &AttemptError{Strategy: ROUND_ROBIN.String()}
	}

	attempts := roundRobinAttempts
	if attempts > len(names) {
		attempts = len(names)
	}

	var failures []AttemptFailure
	for i := 0; i < attempts; i++ {
		idx := atomic.AddInt64(&e.next, 1) - 1
		name := names[int(idx)%len(names)]

		spec, _, ok := e.opts.Registry.Get(name)
		if !ok {
			continue
		}

		start := time.Now()
		resp, cdnAccurate, err := attempt(ctx, spec)
		if err == nil {
			e.opts.Registry.RecordSuccess(spec.Name, time.Since(start), cdnAccurate)
			return Result{Response: resp, Spec: spec}, nil
		}
		e.opts.Registry.RecordFailure(spec.Name)
		failures = append(failures, AttemptFailure{Name: spec.Name, Err: err})

		if ctx.Err() != nil {
			break
		}
		if i < attempts-1 {
			e.opts.Sleep(roundRobinInterAttempt)
		}
	}
	return Result{}, &AttemptError{Strategy: ROUND_ROBIN.String(), Failures: failures}
}
