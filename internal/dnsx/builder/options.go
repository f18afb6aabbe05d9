// Package builder implements the strict, no-defaults configuration
// surface (§4.7): every knob is required, nothing is silently fixed up,
// and a failing field comes back as a typed, field-named error.
package builder

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/haukened/dnsx/internal/dnsx/log"
	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// UpstreamOption describes one configured upstream, in the shape the
// caller supplies it — `Build` turns it into an `upstream.Spec` and a
// live `transport.Transport`.
type UpstreamOption struct {
	Name     string `validate:"required"`
	Protocol string `validate:"required,oneof=udp tcp dot doh"`
	// Address is host:port for udp/tcp/dot, or a https:// URL for doh.
	Address string `validate:"required"`
	Weight  uint32 `validate:"gte=1"`
	Region  string

	// ResolvedIP overrides the connect address only; never the TLS SNI
	// or DoH Host header.
	ResolvedIP string
	// DoHMethod selects GET or POST; ignored for non-doh protocols.
	// Empty defaults to POST.
	DoHMethod string `validate:"omitempty,oneof=GET POST"`

	InsecureSkipVerify bool
}

// StrategyName is the user-facing strategy selector.
type StrategyName string

const (
	StrategyFIFO       StrategyName = "FIFO"
	StrategySMART      StrategyName = "SMART"
	StrategyRoundRobin StrategyName = "ROUND_ROBIN"
)

// Options enumerates every knob §4.7's table names. There is no
// zero-value resolver: every required field must be set explicitly.
type Options struct {
	Strategy StrategyName `validate:"required,oneof=FIFO SMART ROUND_ROBIN"`

	DefaultTimeout time.Duration `validate:"required,gte=1000000,lte=300000000000"` // 1ms..300s in ns
	RetryCount     int           `validate:"required,gte=1,lte=10"`

	EnableCache bool
	MaxCacheTTL time.Duration `validate:"required_if=EnableCache true"`

	EnableUpstreamMonitoring   bool
	UpstreamMonitoringInterval time.Duration `validate:"required_if=EnableUpstreamMonitoring true"`

	Port int `validate:"required,gte=1,lte=65535"`

	ConcurrentQueries int `validate:"required,gte=1,lte=1000"`
	BufferSize        int `validate:"required,gte=512,lte=65536"`

	EmergencyThreshold float64 `validate:"gte=0,lte=1"`

	Upstreams []UpstreamOption `validate:"required,min=1,dive"`

	EnableStats bool
	// Registerer is where per-upstream Prometheus metrics attach when
	// EnableStats is true. Never a global registry — the caller owns it.
	Registerer prometheus.Registerer `validate:"required_if=EnableStats true"`

	// Region is this resolver instance's own region, feeding the SMART
	// strategy's region-affinity score multiplier. Optional.
	Region string

	Logger log.Logger
}

var validate = validator.New()

// validateOptions runs struct-tag validation and turns the first failing
// field into a typed *xerrors.Error naming it, per §4.7: "Build fails
// with a typed config error naming the offending field."
func validateOptions(opts Options) error {
	if err := validate.Struct(opts); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return xerrors.InvalidConfig(fe.Namespace(), fe.Tag())
		}
		return xerrors.Config(err.Error())
	}

	for i, u := range opts.Upstreams {
		if err := validateUpstream(i, u); err != nil {
			return err
		}
	}
	return nil
}

func validateUpstream(i int, u UpstreamOption) error {
	kind, err := parseProtocol(u.Protocol)
	if err != nil {
		return err
	}
	if kind == transport.DoH {
		if len(u.Address) < 8 || u.Address[:8] != "https://" {
			return xerrors.InvalidConfig(upstreamField(i, "address"), "doh address must start with https://")
		}
	}
	return nil
}

func parseProtocol(s string) (transport.Kind, error) {
	switch s {
	case "udp":
		return transport.UDP, nil
	case "tcp":
		return transport.TCP, nil
	case "dot":
		return transport.DoT, nil
	case "doh":
		return transport.DoH, nil
	default:
		return 0, xerrors.InvalidConfig("protocol", "unknown protocol: "+s)
	}
}

func upstreamField(i int, field string) string {
	return "upstreams[" + strconv.Itoa(i) + "]." + field
}
