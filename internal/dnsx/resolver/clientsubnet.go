package resolver

import (
	"encoding/binary"
	"net"

	"github.com/haukened/dnsx/internal/dnsx/wire"
	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// parseClientSubnet turns a dotted/colon CIDR string into the EDNS Client
// Subnet option payload §3 describes. ScopePrefix is always 0 on a
// request; the server fills it in on response.
func parseClientSubnet(cidr string) (wire.ClientSubnet, error) {
	ip, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return wire.ClientSubnet{}, xerrors.InvalidConfig("client_subnet", "not a valid CIDR: "+cidr)
	}
	ones, _ := network.Mask.Size()

	family := uint16(2)
	if ip4 := ip.To4(); ip4 != nil {
		family = 1
	}

	return wire.ClientSubnet{
		Family:       family,
		SourcePrefix: uint8(ones),
		Address:      ip,
	}, nil
}

// dnssecRRTypes are the record types whose presence in a response flips
// the DNSSEC status hint from Indeterminate to Present. The codec here
// doesn't special-case any of them, so they decode as UnknownData but
// still carry their true Type.
var dnssecRRTypes = map[wire.RRType]bool{
	43: true, // DS
	46: true, // RRSIG
	47: true, // NSEC
	48: true, // DNSKEY
	50: true, // NSEC3
	51: true, // NSEC3PARAM
}

func detectDNSSEC(resp wire.Response) DNSSECStatus {
	for _, section := range [][]wire.Record{resp.Answers, resp.Authority, resp.Additional} {
		for _, r := range section {
			if dnssecRRTypes[r.Type] {
				return DNSSECPresent
			}
		}
	}
	return DNSSECIndeterminate
}

// extractScopePrefix finds the EDNS Client Subnet option inside resp's
// Additional section and returns its ScopePrefix, matching the raw TLV
// bytes the codec stashed in the OPT record's UnknownData.
func extractScopePrefix(resp wire.Response) (uint8, bool) {
	for _, r := range resp.Additional {
		if r.Type != wire.TypeOPT {
			continue
		}
		raw, ok := r.Data.(wire.UnknownData)
		if !ok {
			continue
		}
		opt, ok := findClientSubnetOption(raw.Raw)
		if !ok {
			continue
		}
		cs, err := wire.DecodeClientSubnet(opt)
		if err != nil {
			continue
		}
		return cs.ScopePrefix, true
	}
	return 0, false
}

// findClientSubnetOption scans a sequence of (code, length, data) TLVs for
// the Client Subnet option, per RFC 6891's OPT rdata layout.
func findClientSubnetOption(rdata []byte) ([]byte, bool) {
	i := 0
	for i+4 <= len(rdata) {
		code := binary.BigEndian.Uint16(rdata[i : i+2])
		length := int(binary.BigEndian.Uint16(rdata[i+2 : i+4]))
		i += 4
		if i+length > len(rdata) {
			return nil, false
		}
		if code == wire.EdnsOptionClientSubnet {
			return rdata[i : i+length], true
		}
		i += length
	}
	return nil, false
}

// cdnAccuracy reports whether the upstream's response reflects the
// requested client subnet: accurate by default when no subnet was
// requested, and when one was, accurate only if the server echoed back a
// nonzero scope indicating it actually used the hint.
func cdnAccuracy(requested *wire.ClientSubnet, resp wire.Response) bool {
	if requested == nil {
		return true
	}
	scope, ok := extractScopePrefix(resp)
	if !ok {
		return false
	}
	return scope > 0
}
