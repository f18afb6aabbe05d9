// Package dnsx is the public entry point: build a Resolver with Build,
// then call Query. Everything else lives under internal/dnsx and is not
// part of the supported API surface.
package dnsx

import (
	"github.com/haukened/dnsx/internal/dnsx/builder"
	"github.com/haukened/dnsx/internal/dnsx/log"
	"github.com/haukened/dnsx/internal/dnsx/resolver"
	"github.com/haukened/dnsx/internal/dnsx/wire"
)

// Re-exported so callers never need to import internal/dnsx/wire just to
// name a record type.
type RecordType = wire.RRType

const (
	TypeA     = wire.TypeA
	TypeNS    = wire.TypeNS
	TypeCNAME = wire.TypeCNAME
	TypeSOA   = wire.TypeSOA
	TypePTR   = wire.TypePTR
	TypeMX    = wire.TypeMX
	TypeTXT   = wire.TypeTXT
	TypeAAAA  = wire.TypeAAAA
	TypeSRV   = wire.TypeSRV
	TypeCAA   = wire.TypeCAA
	TypeANY   = wire.TypeANY
)

// Strategy selects how the resolver picks among configured upstreams.
type Strategy = builder.StrategyName

const (
	FIFO        = builder.StrategyFIFO
	SMART       = builder.StrategySMART
	ROUND_ROBIN = builder.StrategyRoundRobin
)

// Upstream describes one configured DNS upstream.
type Upstream = builder.UpstreamOption

// Options is the strict builder's full configuration surface (§4.7):
// every field is required, nothing is defaulted.
type Options = builder.Options

// Request is a single query request (§6).
type Request = resolver.Request

// Response is a single query's result (§6).
type Response = resolver.Response

// Resolver is a built, ready-to-query resolver instance.
type Resolver = resolver.Resolver

// Logger is the logging seam every resolver component logs through.
type Logger = log.Logger

// Build validates opts and constructs a Resolver, or returns a typed
// config error naming the offending field. There is no default
// resolver — every option in Options must be set explicitly.
func Build(opts Options) (*Resolver, error) {
	return builder.Build(opts)
}
