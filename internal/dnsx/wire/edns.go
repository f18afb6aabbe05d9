package wire

import (
	"encoding/binary"
	"net"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// EDNS option codes this codec understands. Unknown options round-trip as
// raw bytes inside EdnsOptRecord.Options.
const (
	EdnsOptionClientSubnet uint16 = 8
)

// ClientSubnet is the EDNS Client Subnet option (RFC 7871) payload.
type ClientSubnet struct {
	Family       uint16 // 1 = IPv4, 2 = IPv6
	SourcePrefix uint8
	ScopePrefix  uint8 // 0 on request
	Address      net.IP
}

// Encode serializes the option per RFC 7871: the address is truncated to
// ceil(SourcePrefix/8) bytes.
func (c ClientSubnet) Encode() []byte {
	n := (int(c.SourcePrefix) + 7) / 8
	out := make([]byte, 4+n)
	binary.BigEndian.PutUint16(out[0:2], c.Family)
	out[2] = c.SourcePrefix
	out[3] = c.ScopePrefix

	var raw []byte
	if c.Family == 1 {
		raw = c.Address.To4()
	} else {
		raw = c.Address.To16()
	}
	copy(out[4:], raw[:n])
	return out
}

// DecodeClientSubnet parses an EDNS Client Subnet option payload.
func DecodeClientSubnet(data []byte) (ClientSubnet, error) {
	if len(data) < 4 {
		return ClientSubnet{}, xerrors.FormatError()
	}
	family := binary.BigEndian.Uint16(data[0:2])
	sourcePrefix := data[2]
	scopePrefix := data[3]

	var addrLen int
	switch family {
	case 1:
		addrLen = 4
	case 2:
		addrLen = 16
	default:
		return ClientSubnet{}, xerrors.FormatError()
	}

	addrBytes := make([]byte, addrLen)
	available := len(data) - 4
	n := available
	if n > addrLen {
		n = addrLen
	}
	if n < 0 {
		n = 0
	}
	copy(addrBytes, data[4:4+n])

	var ip net.IP
	if family == 1 {
		ip = net.IPv4(addrBytes[0], addrBytes[1], addrBytes[2], addrBytes[3])
	} else {
		ip = net.IP(addrBytes)
	}

	return ClientSubnet{
		Family:       family,
		SourcePrefix: sourcePrefix,
		ScopePrefix:  scopePrefix,
		Address:      ip,
	}, nil
}

// EdnsOption is a single (code, data) tuple carried inside an OPT record.
type EdnsOption struct {
	Code uint16
	Data []byte
}

// EdnsOptRecord is the Additional-section pseudo-RR described by RFC 6891:
// owner ".", type 41, with UDP payload size packed into Class and the
// extended rcode/version/flags packed into the TTL field.
type EdnsOptRecord struct {
	UDPPayloadSize uint16
	ExtendedRCode  uint8
	Version        uint8
	DO             bool // DNSSEC OK
	Options        []EdnsOption
}

// encodeRData serializes the OPT record's option list (everything after
// the 10-byte RR header that writeOptRecord writes).
func (o EdnsOptRecord) encodeRData() []byte {
	var out []byte
	for _, opt := range o.Options {
		header := make([]byte, 4)
		binary.BigEndian.PutUint16(header[0:2], opt.Code)
		binary.BigEndian.PutUint16(header[2:4], uint16(len(opt.Data)))
		out = append(out, header...)
		out = append(out, opt.Data...)
	}
	return out
}

func (o EdnsOptRecord) flagsAndVersion() (ttl uint32) {
	var z uint16
	if o.DO {
		z = 0x8000
	}
	ttl = uint32(o.ExtendedRCode)<<24 | uint32(o.Version)<<16 | uint32(z)
	return ttl
}

func decodeEdnsOptRecord(class RRClass, ttl uint32, rdata []byte) (EdnsOptRecord, error) {
	o := EdnsOptRecord{
		UDPPayloadSize: uint16(class),
		ExtendedRCode:  uint8(ttl >> 24),
		Version:        uint8(ttl >> 16),
		DO:             ttl&0x8000 != 0,
	}
	i := 0
	for i < len(rdata) {
		if i+4 > len(rdata) {
			return EdnsOptRecord{}, xerrors.FormatError()
		}
		code := binary.BigEndian.Uint16(rdata[i : i+2])
		length := int(binary.BigEndian.Uint16(rdata[i+2 : i+4]))
		i += 4
		if i+length > len(rdata) {
			return EdnsOptRecord{}, xerrors.FormatError()
		}
		data := make([]byte, length)
		copy(data, rdata[i:i+length])
		o.Options = append(o.Options, EdnsOption{Code: code, Data: data})
		i += length
	}
	return o, nil
}
