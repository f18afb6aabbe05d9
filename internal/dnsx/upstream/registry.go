package upstream

import (
	"sort"
	"sync"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/clock"
	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

type entry struct {
	spec    Spec
	metrics Metrics
}

// Registry owns the configured upstream specs and their live metrics,
// guarded by a single reader-writer lock — scoring takes the read side,
// commit hooks take the write side, matching the "many readers, exclusive
// committer" discipline spec.md §5 describes.
type Registry struct {
	mu      sync.RWMutex
	order   []string // registration order, for FIFO and round-robin
	entries map[string]*entry

	cfg    HealthConfig
	clock  clock.Clock
	region string
}

// NewRegistry builds an empty registry. region is the resolver's own
// configured region, used by Score's region-affinity multiplier.
func NewRegistry(cfg HealthConfig, c clock.Clock, region string) *Registry {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Registry{
		entries: make(map[string]*entry),
		cfg:     cfg,
		clock:   c,
		region:  region,
	}
}

// Add registers spec, rejecting a duplicate name.
func (r *Registry) Add(spec Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[spec.Name]; exists {
		return xerrors.InvalidConfig("upstreams", "duplicate upstream name: "+spec.Name)
	}
	r.entries[spec.Name] = &entry{spec: spec, metrics: Metrics{Health: HealthUnknown}}
	r.order = append(r.order, spec.Name)
	return nil
}

// Remove drops a spec and its metrics.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the spec and a snapshot of its metrics.
func (r *Registry) Get(name string) (Spec, Metrics, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Spec{}, Metrics{}, false
	}
	return e.spec, e.metrics, true
}

// Names returns upstream names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered upstreams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// RecordSuccess commits a successful attempt against name.
func (r *Registry) RecordSuccess(name string, latency time.Duration, cdnAccurate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}
	e.metrics.RecordSuccess(r.clock.Now(), latency, cdnAccurate, r.cfg)
}

// RecordFailure commits a failed attempt against name.
func (r *Registry) RecordFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}
	e.metrics.RecordFailure(r.clock.Now(), r.cfg)
}

// Candidate pairs a spec with a scoring-relevant metrics snapshot, returned
// by the read-only ranking helpers below for the strategy engine to consume.
type Candidate struct {
	Spec    Spec
	Metrics Metrics
	Score   float64
}

// Ranked returns every registered upstream, scored and sorted by
// descending Score.
func (r *Registry) Ranked() []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.clock.Now()
	out := make([]Candidate, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		out = append(out, Candidate{
			Spec:    e.spec,
			Metrics: e.metrics,
			Score:   e.metrics.Score(now, r.region, e.spec.Region),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Healthy returns candidates (unscored order preserved from registration)
// whose health is Healthy or Unknown.
func (r *Registry) Healthy() []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.clock.Now()
	out := make([]Candidate, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		if e.metrics.Health == HealthUnhealthy {
			continue
		}
		out = append(out, Candidate{
			Spec:    e.spec,
			Metrics: e.metrics,
			Score:   e.metrics.Score(now, r.region, e.spec.Region),
		})
	}
	return out
}

// TotalQueries sums Metrics.Total across every registered upstream — the
// SMART strategy's warm-up gate.
func (r *Registry) TotalQueries() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total uint64
	for _, e := range r.entries {
		total += e.metrics.Total
	}
	return total
}

// AllUnhealthy reports whether every registered upstream is Unhealthy.
// An empty registry is not considered "all unhealthy" — there is simply
// nothing registered, a distinct builder-time validation failure.
func (r *Registry) AllUnhealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return false
	}
	for _, e := range r.entries {
		if e.metrics.Health != HealthUnhealthy {
			return false
		}
	}
	return true
}

// FailingUpstream is one row of the emergency-diagnostics summary.
type FailingUpstream struct {
	Name                string
	ServerField         string
	ConsecutiveFailures uint32
	SecondsSinceFailure float64
}

// EmergencySummary builds the structured per-upstream diagnostics used when
// every upstream is unhealthy, or to enrich an all-attempts-failed error.
func (r *Registry) EmergencySummary() []FailingUpstream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.clock.Now()
	out := make([]FailingUpstream, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		out = append(out, FailingUpstream{
			Name:                e.spec.Name,
			ServerField:         e.spec.Server,
			ConsecutiveFailures: e.metrics.ConsecutiveFailures,
			SecondsSinceFailure: e.metrics.SecondsSinceLastFailure(now),
		})
	}
	return out
}
