package resolver

import "github.com/haukened/dnsx/internal/dnsx/wire"

// Request is a caller's query description (§6's "Query request").
type Request struct {
	Domain     string
	RecordType wire.RRType

	// QueryID is a caller-supplied correlation tag echoed into the
	// response. Nil means the resolver mints one.
	QueryID *uint16

	EnableEDNS bool
	// ClientSubnet is a dotted/colon CIDR, e.g. "203.0.113.0/24". Ignored
	// unless EnableEDNS is set.
	ClientSubnet string

	// TimeoutMs overrides DefaultTimeout for this query's attempts. Zero
	// keeps the resolver's configured default.
	TimeoutMs uint64

	DisableCache bool
}

// DNSSECStatus hints whether the response carries DNSSEC records. The
// codec doesn't decode DNSSEC record data, but such records keep their
// true Type, so Present is reported whenever any response section holds
// one; no signature is validated.
type DNSSECStatus int

const (
	DNSSECIndeterminate DNSSECStatus = iota
	DNSSECPresent
)

func (s DNSSECStatus) String() string {
	if s == DNSSECPresent {
		return "present"
	}
	return "indeterminate"
}

// Response is the resolver's answer to a Request (§6's "Query response").
type Response struct {
	QueryID    uint16
	Domain     string
	RecordType wire.RRType

	Success bool
	Error   string

	Records []wire.Record

	DurationMs int64
	ServerUsed string

	DNSSEC DNSSECStatus
}
