package resolver

import (
	"context"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/wire"
)

// canaryDomain is the fixed query §9's "Upstream monitoring" note issues
// against every upstream on each tick.
const canaryDomain = "google.com."
const canaryRecordType = wire.TypeA

// StartUpstreamMonitoring launches the optional background canary loop:
// every interval, it issues a single A-record query against each
// registered upstream directly (bypassing the cache and the query
// strategy) and feeds the outcome into that upstream's metrics, so an
// upstream that nobody has queried recently still has its health state
// kept current. Calling it twice without Close in between is a no-op;
// interval <= 0 disables it.
func (r *Resolver) StartUpstreamMonitoring(interval time.Duration) {
	if interval <= 0 {
		return
	}
	if r.monitorStop != nil {
		return
	}
	r.monitorStop = make(chan struct{})
	r.monitorDone = make(chan struct{})

	stop, done := r.monitorStop, r.monitorDone
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.runCanaryRound()
			case <-stop:
				return
			}
		}
	}()
}

func (r *Resolver) runCanaryRound() {
	for _, name := range r.registry.Names() {
		spec, _, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		attempt := r.buildAttempt(Request{Domain: canaryDomain, RecordType: canaryRecordType}, nil, r.defaultTimeout)
		start := r.clock.Now()
		_, _, err := attempt(context.Background(), spec)
		if err != nil {
			r.registry.RecordFailure(spec.Name)
			r.logger.Debug(map[string]any{"upstream": spec.Name, "error": err}, "canary query failed")
			continue
		}
		r.registry.RecordSuccess(spec.Name, r.clock.Now().Sub(start), true)
	}
}

func (r *Resolver) stopMonitoring() {
	if r.monitorStop == nil {
		return
	}
	close(r.monitorStop)
	<-r.monitorDone
	r.monitorStop, r.monitorDone = nil, nil
}
