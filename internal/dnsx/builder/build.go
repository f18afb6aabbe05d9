package builder

import (
	"strconv"
	"time"

	"github.com/haukened/dnsx/internal/dnsx/cache"
	"github.com/haukened/dnsx/internal/dnsx/clock"
	"github.com/haukened/dnsx/internal/dnsx/log"
	"github.com/haukened/dnsx/internal/dnsx/metrics"
	"github.com/haukened/dnsx/internal/dnsx/resolver"
	"github.com/haukened/dnsx/internal/dnsx/strategy"
	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/upstream"
	"github.com/haukened/dnsx/internal/dnsx/wire"
)

// cacheSweepInterval is the fixed cadence the background eviction
// sweeper runs at when caching is enabled; TTL expiry itself is still
// governed by the records' own TTLs capped at MaxCacheTTL, this just
// bounds how stale a never-accessed expired entry can get before it's
// reclaimed.
const cacheSweepInterval = time.Minute

// Build validates opts and wires a fully-constructed *resolver.Resolver,
// or a typed config error naming the offending field. There is no
// default resolver: every Options field §4.7 enumerates is required.
func Build(opts Options) (*resolver.Resolver, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	cfg := upstream.DefaultHealthConfig()
	if opts.EmergencyThreshold > 0 {
		cfg.MinSuccessRate = opts.EmergencyThreshold
	}

	registry := upstream.NewRegistry(cfg, clock.RealClock{}, opts.Region)
	transports := make(map[string]transport.Transport, len(opts.Upstreams))
	codec := wire.NewCodec()
	defaultPort := strconv.Itoa(opts.Port)

	for _, u := range opts.Upstreams {
		kind, err := parseProtocol(u.Protocol)
		if err != nil {
			return nil, err
		}

		spec := upstream.Spec{
			Name:        u.Name,
			Kind:        kind,
			Server:      u.Address,
			ResolvedIP:  u.ResolvedIP,
			Weight:      u.Weight,
			Region:      u.Region,
			DoHMethod:   dohMethod(u.DoHMethod),
			DefaultPort: defaultPort,
		}
		if err := registry.Add(spec); err != nil {
			return nil, err
		}

		tr, err := buildTransport(spec, u.InsecureSkipVerify, opts.DefaultTimeout)
		if err != nil {
			return nil, err
		}
		transports[u.Name] = tr
	}

	engine, err := strategy.New(strategyKind(opts.Strategy), strategy.Options{
		Registry:   registry,
		RetryCount: opts.RetryCount,
	})
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if opts.EnableCache {
		c, err = cache.New(cache.Options{
			MaxTTL:            opts.MaxCacheTTL,
			EnableBloomFilter: true,
			Clock:             clock.RealClock{},
		})
		if err != nil {
			return nil, err
		}
		c.StartSweeper(cacheSweepInterval)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}

	r := resolver.New(resolver.Options{
		Registry:          registry,
		Strategy:          engine,
		Transports:        transports,
		Codec:             codec,
		Cache:             c,
		DefaultTimeout:    opts.DefaultTimeout,
		ConcurrentQueries: opts.ConcurrentQueries,
		Logger:            logger,
		Clock:             clock.RealClock{},
	})

	if opts.EnableUpstreamMonitoring {
		r.StartUpstreamMonitoring(opts.UpstreamMonitoringInterval)
	}

	if opts.EnableStats {
		if _, err := metrics.Register(opts.Registerer, registry); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func buildTransport(spec upstream.Spec, insecureSkipVerify bool, timeout time.Duration) (transport.Transport, error) {
	hostname, err := spec.Hostname()
	if err != nil {
		return nil, err
	}
	dialAddr, err := spec.DialAddress()
	if err != nil {
		return nil, err
	}

	return transport.New(transport.Params{
		Kind:       spec.Kind,
		DialAddr:   dialAddr,
		ServerName: hostname,
		InsecureSkipVerify: insecureSkipVerify,
		URL:        spec.Server,
		ResolvedIP: spec.ResolvedIP,
		Method:     spec.DoHMethod,
		Timeout:    timeout,
	})
}

func strategyKind(name StrategyName) strategy.Kind {
	switch name {
	case StrategySMART:
		return strategy.SMART
	case StrategyRoundRobin:
		return strategy.ROUND_ROBIN
	default:
		return strategy.FIFO
	}
}

func dohMethod(s string) transport.Method {
	if s == "GET" {
		return transport.MethodGET
	}
	return transport.MethodPOST
}
