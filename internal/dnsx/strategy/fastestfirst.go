package strategy

import (
	"context"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

// FastestFirst issues attempt against every spec concurrently and returns
// the first successful response, broadcasting cancellation to the losing
// goroutines. It is the resolver facade's internal fallback primitive, not
// one of the three user-facing strategies, so it takes an explicit spec
// list rather than reading a registry's configured strategy.
//
// Cancellation is cooperative: attempt must itself respect ctx so a loser
// can actually stop work once the winner is chosen.
func FastestFirst(ctx context.Context, registry *upstream.Registry, specs []upstream.Spec, attempt AttemptFunc) (Result, error) {
	if len(specs) == 0 {
		return Result{}, &AttemptError{Strategy: "fastest_first"}
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result  Result
		ok      bool
		failure AttemptFailure
	}
	results := make(chan outcome, len(specs))

	for _, spec := range specs {
		go func(spec upstream.Spec) {
			start := time.Now()
			resp, cdnAccurate, err := attempt(attemptCtx, spec)
			if err != nil {
				registry.RecordFailure(spec.Name)
				results <- outcome{failure: AttemptFailure{Name: spec.Name, Err: err}}
				return
			}
			registry.RecordSuccess(spec.Name, time.Since(start), cdnAccurate)
			results <- outcome{result: Result{Response: resp, Spec: spec}, ok: true}
		}(spec)
	}

	var failures []AttemptFailure
	for i := 0; i < len(specs); i++ {
		select {
		case o := <-results:
			if o.ok {
				cancel()
				return o.result, nil
			}
			failures = append(failures, o.failure)
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return Result{}, &AttemptError{Strategy: "fastest_first", Failures: failures}
}
