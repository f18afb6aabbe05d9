// Package strategy implements the query strategy engine: FIFO,
// ROUND_ROBIN and SMART upstream selection, the concurrent fastest-first
// primitive used by the resolver facade's fallback path, and the
// emergency-diagnostics surface raised when every upstream is unhealthy.
package strategy

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/upstream"
	"github.com/haukened/dnsx/internal/dnsx/wire"
	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// Kind names one of the three user-facing strategies.
type Kind int

const (
	FIFO Kind = iota
	SMART
	ROUND_ROBIN
)

func (k Kind) String() string {
	switch k {
	case FIFO:
		return "fifo"
	case SMART:
		return "smart"
	case ROUND_ROBIN:
		return "round_robin"
	default:
		return "unknown"
	}
}

// AttemptFunc issues one query against spec and returns the decoded
// response, whether the response's EDNS Client Subnet scope matched what
// was requested (feeds Metrics.CDNAccuracy), or a transport-layer error.
// Engines never decide the wire format or transport kind — that is
// resolved by the caller building this closure, typically the resolver
// facade binding a C2 transport.
type AttemptFunc func(ctx context.Context, spec upstream.Spec) (resp wire.Response, cdnAccurate bool, err error)

// Result is a successful attempt's response paired with the upstream that
// produced it, so the caller can commit metrics and build the outgoing
// response.
type Result struct {
	Response wire.Response
	Spec     upstream.Spec
}

// Engine selects which upstream(s) a query fans out to and drives the
// attempt loop (including any strategy-specific pacing, such as
// ROUND_ROBIN's inter-attempt sleep).
type Engine interface {
	Kind() Kind
	Run(ctx context.Context, attempt AttemptFunc) (Result, error)
}

// RandSource is the randomness seam SMART's exploration/exploit split and
// warm-up tie-breaking draw from. *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

// Options configures every Engine implementation; not every field applies
// to every Kind (Sleep and Rand are SMART/ROUND_ROBIN only).
type Options struct {
	Registry   *upstream.Registry
	RetryCount int // 1..10, validated by the builder

	// Sleep and Rand are test seams; nil defaults to time.Sleep and a
	// time-seeded rand.Rand respectively.
	Sleep func(time.Duration)
	Rand  RandSource
}

func (o Options) withDefaults() Options {
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.RetryCount <= 0 {
		o.RetryCount = 1
	}
	return o
}

// New builds the Engine for kind.
func New(kind Kind, opts Options) (Engine, error) {
	opts = opts.withDefaults()
	if opts.Registry == nil {
		return nil, xerrors.InvalidConfig("strategy", "registry is required")
	}
	switch kind {
	case FIFO:
		return &fifoEngine{opts: opts}, nil
	case ROUND_ROBIN:
		return &roundRobinEngine{opts: opts}, nil
	case SMART:
		return &smartEngine{opts: opts}, nil
	default:
		return nil, xerrors.InvalidConfig("strategy", "unknown strategy kind")
	}
}

// AttemptError aggregates every per-upstream failure a Run call
// accumulated before giving up.
type AttemptError struct {
	Strategy string
	Failures []AttemptFailure
}

// AttemptFailure names one failed upstream attempt.
type AttemptFailure struct {
	Name string
	Err  error
}

func (e *AttemptError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = fmt.Sprintf("%s: %v", f.Name, f.Err)
	}
	return fmt.Sprintf("%s strategy: all %d attempt(s) failed: %s", e.Strategy, len(e.Failures), strings.Join(names, "; "))
}

func (e *AttemptError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}
