package strategy

import (
	"context"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
)

// warmupQueryThreshold is the total-observed-queries gate below which
// SMART explores uniformly instead of ranking.
const warmupQueryThreshold = 20

// smartExploitProbability is the chance SMART picks the top-ranked
// upstream once warm-up is over; the rest of the time it picks uniformly
// among the remaining healthy candidates to preserve diversity.
const smartExploitProbability = 0.8

type smartEngine struct {
	opts Options
}

func (e *smartEngine) Kind() Kind { return SMART }

func (e *smartEngine) Run(ctx context.Context, attempt AttemptFunc) (Result, error) {
	tried := make(map[string]bool)
	var failures []AttemptFailure

	for i := 0; i < e.opts.RetryCount; i++ {
		candidate, ok := e.selectCandidate(tried)
		if !ok {
			break
		}
		tried[candidate.Spec.Name] = true

		start := time.Now()
		resp, cdnAccurate, err := attempt(ctx, candidate.Spec)
		if err == nil {
			e.opts.Registry.RecordSuccess(candidate.Spec.Name, time.Since(start), cdnAccurate)
			return Result{Response: resp, Spec: candidate.Spec}, nil
		}
		e.opts.Registry.RecordFailure(candidate.Spec.Name)
		failures = append(failures, AttemptFailure{Name: candidate.Spec.Name, Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	if len(failures) == 0 {
		return Result{}, &AttemptError{Strategy: SMART.String()}
	}
	return Result{}, &AttemptError{Strategy: SMART.String(), Failures: failures}
}

// selectCandidate implements §4.4's SMART rule: warm-up exploration below
// 20 total observed queries, then 80/20 exploit/explore among healthy
// upstreams, falling back to the fewest-consecutive-failures candidate
// when nothing is healthy.
func (e *smartEngine) selectCandidate(tried map[string]bool) (upstream.Candidate, bool) {
	ranked := e.opts.Registry.Ranked()
	available := make([]upstream.Candidate, 0, len(ranked))
	for _, c := range ranked {
		if !tried[c.Spec.Name] {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return upstream.Candidate{}, false
	}

	if e.opts.Registry.TotalQueries() < warmupQueryThreshold {
		return e.pickWarmup(available), true
	}
	return e.pickRanked(available), true
}

func (e *smartEngine) pickWarmup(available []upstream.Candidate) upstream.Candidate {
	minTotal := available[0].Metrics.Total
	for _, c := range available[1:] {
		if c.Metrics.Total < minTotal {
			minTotal = c.Metrics.Total
		}
	}
	pool := make([]upstream.Candidate, 0, len(available))
	for _, c := range available {
		if c.Metrics.Total == minTotal {
			pool = append(pool, c)
		}
	}
	return pool[e.opts.Rand.Intn(len(pool))]
}

func (e *smartEngine) pickRanked(available []upstream.Candidate) upstream.Candidate {
	healthy := make([]upstream.Candidate, 0, len(available))
	for _, c := range available {
		if c.Metrics.Health != upstream.HealthUnhealthy {
			healthy = append(healthy, c)
		}
	}

	if len(healthy) == 0 {
		best := available[0]
		for _, c := range available[1:] {
			if c.Metrics.ConsecutiveFailures < best.Metrics.ConsecutiveFailures {
				best = c
			}
		}
		return best
	}

	if e.opts.Rand.Float64() < smartExploitProbability || len(healthy) == 1 {
		return healthy[0]
	}
	rest := healthy[1:]
	return rest[e.opts.Rand.Intn(len(rest))]
}
