// Package upstream holds the registry of configured DNS upstreams and the
// per-upstream performance metrics the query strategy engine scores against.
package upstream

import (
	"net"
	"strings"

	"github.com/haukened/dnsx/internal/dnsx/transport"
	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// Spec is an immutable description of one configured upstream. Specs are
// registered once at build time and never mutated afterward; only the
// Metrics tracked alongside a Spec change over its lifetime.
type Spec struct {
	Name string

	Kind transport.Kind

	// Server carries the address in the shape the Kind expects:
	// UDP/TCP/DoT: host[:port]; DoH: a full https://... URL.
	Server string

	// ResolvedIP overrides the connect address only. It never substitutes
	// for DoT's TLS SNI hostname or DoH's Host header / URL.
	ResolvedIP string

	Weight uint32
	Region string

	// DoHMethod selects GET or POST for a DoH upstream. Ignored for other
	// kinds. Zero value is transport.MethodPOST.
	DoHMethod transport.Method

	// DefaultPort is the port used when Server omits one, sourced from
	// the builder's required Port option. Ignored for DoH, whose port
	// comes from its URL.
	DefaultPort string
}

// Hostname returns the bare host portion of Server, without port, for
// UDP/TCP/DoT kinds. For DoH it returns the URL's hostname.
func (s Spec) Hostname() (string, error) {
	switch s.Kind {
	case transport.UDP, transport.TCP, transport.DoT:
		return splitHost(s.Server)
	case transport.DoH:
		return hostnameFromURL(s.Server)
	default:
		return "", xerrors.InvalidConfig("upstream.kind", "unknown upstream kind")
	}
}

// DialAddress returns the host:port to dial for UDP/TCP/DoT, honoring
// ResolvedIP when set and falling back to DefaultPort when Server omits
// a port. DoH upstreams dial through the URL's own host unless
// ResolvedIP is supplied, handled inside the DoH transport itself, so
// DialAddress returns the empty string for DoH.
func (s Spec) DialAddress() (string, error) {
	switch s.Kind {
	case transport.UDP, transport.TCP, transport.DoT:
		return dialAddress(s.Server, s.ResolvedIP, s.DefaultPort)
	case transport.DoH:
		return "", nil
	default:
		return "", xerrors.InvalidConfig("upstream.kind", "unknown upstream kind")
	}
}

func dialAddress(server, resolvedIP, defaultPort string) (string, error) {
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		host, port = server, defaultPort
	}
	if resolvedIP != "" {
		host = resolvedIP
	}
	return net.JoinHostPort(host, port), nil
}

func splitHost(server string) (string, error) {
	host, _, err := net.SplitHostPort(server)
	if err != nil {
		return server, nil
	}
	return host, nil
}

func hostnameFromURL(rawURL string) (string, error) {
	rest := rawURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexAny(rest, "/?"); idx >= 0 {
		rest = rest[:idx]
	}
	host, _, err := net.SplitHostPort(rest)
	if err != nil {
		return rest, nil
	}
	return host, nil
}
