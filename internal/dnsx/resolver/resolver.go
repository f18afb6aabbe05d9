// Package resolver implements the facade (§4.6): query(request) →
// response, orchestrating cache lookup, emergency detection, strategy-
// driven upstream selection, transport exchange, and metrics/cache
// commit, in that order.
package resolver

import (
	"context"
	"math/rand"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/cache"
	"github.com/haukened/dnsx/internal/dnsx/clock"
	"github.com/haukened/dnsx/internal/dnsx/log"
	"github.com/haukened/dnsx/internal/dnsx/strategy"
	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/upstream"
	"github.com/haukened/dnsx/internal/dnsx/wire"
	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

const maxDomainLength = 253

// Options wires a Resolver's collaborators. Every field is required
// except Logger and Clock, which default to the global logger and the
// real clock —
// generalized from the same narrow-interface DI shape the teacher's own
// resolver uses, widened to this domain's (cache, registry, strategy)
// collaborator set.
type Options struct {
	Registry *upstream.Registry
	Strategy strategy.Engine
	// Transports maps an upstream's Spec.Name to the already-built
	// Transport that talks to it.
	Transports map[string]transport.Transport
	Codec      wire.Codec

	// Cache is nil when caching is disabled.
	Cache *cache.Cache

	DefaultTimeout time.Duration

	// ConcurrentQueries is carried through for callers who want to read
	// back the configured self-limit; the engine itself never enforces
	// it (§9(b): informational only).
	ConcurrentQueries int

	Logger log.Logger
	Clock  clock.Clock
}

// Resolver is the query facade. Safe for concurrent use: every
// collaborator it holds already guards its own mutable state.
type Resolver struct {
	registry       *upstream.Registry
	engine         strategy.Engine
	transports     map[string]transport.Transport
	codec          wire.Codec
	cache          *cache.Cache
	defaultTimeout    time.Duration
	concurrentQueries int
	logger            log.Logger
	clock             clock.Clock

	monitorStop chan struct{}
	monitorDone chan struct{}
}

// New builds a Resolver from opts.
func New(opts Options) *Resolver {
	r := &Resolver{
		registry:          opts.Registry,
		engine:            opts.Strategy,
		transports:        opts.Transports,
		codec:             opts.Codec,
		cache:             opts.Cache,
		defaultTimeout:    opts.DefaultTimeout,
		concurrentQueries: opts.ConcurrentQueries,
		logger:            opts.Logger,
		clock:             opts.Clock,
	}
	if r.logger == nil {
		r.logger = log.GetLogger()
	}
	if r.clock == nil {
		r.clock = clock.RealClock{}
	}
	return r
}

// ConcurrentQueries reports the caller's configured self-limit (§9(b)):
// the engine does not enforce it, so a caller issuing many concurrent
// Query calls is expected to gate itself with its own semaphore sized
// to this value.
func (r *Resolver) ConcurrentQueries() int {
	return r.concurrentQueries
}

// Close stops any background work the resolver owns (the cache's eviction
// sweeper and the upstream monitoring canary loop, if started) and waits
// for it to exit. Safe to call even if neither was ever started.
func (r *Resolver) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
	r.stopMonitoring()
}

// Query answers a single request. It never panics or returns a Go error;
// every failure path (§7) comes back as a Response with Success=false and
// a populated Error string.
func (r *Resolver) Query(ctx context.Context, req Request) Response {
	start := r.clock.Now()

	queryID := randomUint16()
	if req.QueryID != nil {
		queryID = *req.QueryID
	}

	resp := Response{
		QueryID:    queryID,
		Domain:     req.Domain,
		RecordType: req.RecordType,
	}

	if err := validateRequest(req); err != nil {
		resp.Error = err.Error()
		return resp
	}

	var subnet *wire.ClientSubnet
	if req.EnableEDNS && req.ClientSubnet != "" {
		cs, err := parseClientSubnet(req.ClientSubnet)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		subnet = &cs
	}

	cacheKey := wire.Query{Name: req.Domain, Type: req.RecordType, Class: wire.ClassIN}.CacheKey()
	if r.cache != nil && !req.DisableCache {
		if cached, hit := r.cache.Get(cacheKey); hit {
			r.logger.Debug(map[string]any{"key": cacheKey}, "cache hit")
			return fromWireResponse(resp, cached, "", r.clock.Now().Sub(start))
		}
	}

	if em := strategy.CheckEmergency(r.registry, r.engine.Kind().String()); em != nil {
		r.logger.Warn(map[string]any{"domain": req.Domain, "failing": em.FailingCount}, "all upstreams unhealthy, refusing query")
		resp.Error = em.Error()
		resp.DurationMs = r.clock.Now().Sub(start).Milliseconds()
		return resp
	}

	timeout := r.defaultTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}

	attempt := r.buildAttempt(req, subnet, timeout)
	result, err := r.engine.Run(ctx, attempt)
	if err != nil {
		var fbErr error
		result, fbErr = r.runFallback(ctx, attempt)
		if fbErr != nil {
			enriched := strategy.EnrichWithDiagnostics(err, r.registry, r.engine.Kind().String())
			r.logger.Error(map[string]any{"domain": req.Domain, "error": enriched}, "all strategy attempts failed")
			resp.Error = enriched.Error()
			resp.DurationMs = r.clock.Now().Sub(start).Milliseconds()
			return resp
		}
	}

	if result.Response.IsError() {
		resp.Error = rcodeError(result.Response.RCode).Error()
		resp.ServerUsed = result.Spec.Name
		resp.DurationMs = r.clock.Now().Sub(start).Milliseconds()
		return resp
	}

	if r.cache != nil && !req.DisableCache {
		r.cache.Set(cacheKey, result.Response, recordTTLs(result.Response))
	}

	return fromWireResponse(resp, result.Response, result.Spec.Name, r.clock.Now().Sub(start))
}

// buildAttempt closes over the per-query fields (domain, EDNS subnet,
// timeout) that every upstream attempt needs, deferring the actual
// transport choice to whichever Spec the strategy engine hands it. Each
// invocation mints its own wire query id, since a retry against a
// different upstream is a fresh DNS message, not a resend of the same one.
func (r *Resolver) buildAttempt(req Request, subnet *wire.ClientSubnet, timeout time.Duration) strategy.AttemptFunc {
	return func(ctx context.Context, spec upstream.Spec) (wire.Response, bool, error) {
		tr, ok := r.transports[spec.Name]
		if !ok {
			return wire.Response{}, false, xerrors.Config("no transport configured for upstream " + spec.Name)
		}

		id := randomUint16()
		query := wire.Query{ID: id, Name: req.Domain, Type: req.RecordType, Class: wire.ClassIN}

		wireReq, err := r.codec.EncodeQuery(query, subnet)
		if err != nil {
			return wire.Response{}, false, err
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		raw, err := tr.Send(attemptCtx, wireReq)
		if err != nil {
			return wire.Response{}, false, err
		}

		wireResp, err := r.codec.DecodeResponse(raw, id)
		if err != nil {
			return wire.Response{}, false, err
		}

		return wireResp, cdnAccuracy(subnet, wireResp), nil
	}
}

// runFallback is the façade's last resort once the configured strategy
// exhausts its own attempts: fan the same query out to every
// currently-healthy upstream concurrently via the internal
// concurrent-fastest-first primitive, returning whichever answers first.
func (r *Resolver) runFallback(ctx context.Context, attempt strategy.AttemptFunc) (strategy.Result, error) {
	healthy := r.registry.Healthy()
	if len(healthy) == 0 {
		return strategy.Result{}, &strategy.AttemptError{Strategy: "fastest_first"}
	}
	specs := make([]upstream.Spec, len(healthy))
	for i, c := range healthy {
		specs[i] = c.Spec
	}
	return strategy.FastestFirst(ctx, r.registry, specs, attempt)
}

func validateRequest(req Request) error {
	if req.Domain == "" {
		return xerrors.InvalidConfig("domain", "must not be empty")
	}
	if len(req.Domain) > maxDomainLength {
		return xerrors.InvalidConfig("domain", "exceeds 253 bytes")
	}
	if !supportedRecordTypes[req.RecordType] {
		return xerrors.InvalidConfig("record_type", "unsupported record type "+req.RecordType.String())
	}
	return nil
}

var supportedRecordTypes = map[wire.RRType]bool{
	wire.TypeA:     true,
	wire.TypeAAAA:  true,
	wire.TypeCNAME: true,
	wire.TypeMX:    true,
	wire.TypeTXT:   true,
	wire.TypeNS:    true,
	wire.TypeSOA:   true,
	wire.TypePTR:   true,
	wire.TypeSRV:   true,
	wire.TypeCAA:   true,
	wire.TypeANY:   true,
}

// rcodeError maps a non-success rcode to the error taxonomy (§7).
func rcodeError(rc wire.RCode) error {
	switch rc {
	case wire.RCodeNXDomain:
		return xerrors.NXDomain()
	case wire.RCodeRefused:
		return xerrors.Refused()
	case wire.RCodeServerFailure:
		return xerrors.ServerFailure()
	case wire.RCodeFormatError:
		return xerrors.FormatError()
	case wire.RCodeNotImplemented:
		return xerrors.NotImplemented("upstream does not implement this opcode")
	default:
		return xerrors.Server("upstream returned rcode " + rc.String())
	}
}

// recordTTLs gathers every record's TTL across all three sections, the
// basis for the cache entry's min-TTL computation.
func recordTTLs(resp wire.Response) []uint32 {
	out := make([]uint32, 0, len(resp.Answers)+len(resp.Authority)+len(resp.Additional))
	for _, r := range resp.Answers {
		out = append(out, r.TTL)
	}
	for _, r := range resp.Authority {
		out = append(out, r.TTL)
	}
	for _, r := range resp.Additional {
		out = append(out, r.TTL)
	}
	return out
}

func fromWireResponse(resp Response, wr wire.Response, serverUsed string, elapsed time.Duration) Response {
	resp.Success = true
	resp.Records = wr.Answers
	resp.ServerUsed = serverUsed
	resp.DurationMs = elapsed.Milliseconds()
	resp.DNSSEC = detectDNSSEC(wr)
	return resp
}

func randomUint16() uint16 {
	return uint16(rand.Intn(1 << 16))
}
