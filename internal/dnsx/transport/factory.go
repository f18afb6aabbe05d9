package transport

import "time"

// Params bundles everything any one of the four constructors might need;
// callers only populate the fields relevant to Kind.
type Params struct {
	Kind Kind

	// UDP / TCP / DoT dial address (host:port), already resolved-or-not
	// per the upstream spec's resolved_ip override.
	DialAddr string

	// DoT: certificate/SNI hostname, always the spec's own host, never
	// DialAddr's IP when the two differ.
	ServerName         string
	InsecureSkipVerify bool

	// DoH
	URL        string
	ResolvedIP string
	Method     Method

	Timeout time.Duration
	Dial    DialFunc
}

// New builds the Transport named by p.Kind, grounded on the same
// kind-dispatch shape as a server-side transport factory, generalized to
// client dialers.
func New(p Params) (Transport, error) {
	switch p.Kind {
	case UDP:
		return NewUDP(p.DialAddr, p.Timeout, p.Dial), nil
	case TCP:
		return NewTCP(p.DialAddr, p.Timeout, p.Dial), nil
	case DoT:
		return NewDoT(p.DialAddr, p.ServerName, p.InsecureSkipVerify, p.Timeout, p.Dial), nil
	case DoH:
		return NewDoH(p.URL, p.ResolvedIP, p.Method, p.Timeout, p.Dial)
	default:
		return nil, errUnknownKind(p.Kind)
	}
}

type unknownKindErr struct{ kind Kind }

func (e *unknownKindErr) Error() string { return "transport: unknown kind " + e.kind.String() }

func errUnknownKind(k Kind) error { return &unknownKindErr{kind: k} }
