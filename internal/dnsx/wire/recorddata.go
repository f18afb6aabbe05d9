package wire

import "github.com/haukened/dnsx/internal/dnsx/xerrors"

// RecordData is the tagged-union payload of a Record. Its concrete type
// is determined by the owning Record's Type field.
type RecordData interface {
	recordData()
}

// AData is the A-record payload: a 4-byte IPv4 address.
type AData struct {
	Addr [4]byte
}

func (AData) recordData() {}

// AAAAData is the AAAA-record payload: a 16-byte IPv6 address.
type AAAAData struct {
	Addr [16]byte
}

func (AAAAData) recordData() {}

// NameData is the payload shared by CNAME, NS, and PTR records: a single
// domain name.
type NameData struct {
	Name string
}

func (NameData) recordData() {}

// MXData is the MX-record payload.
type MXData struct {
	Preference uint16
	Exchange   string
}

func (MXData) recordData() {}

// SOAData is the SOA-record payload.
type SOAData struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (SOAData) recordData() {}

// SRVData is the SRV-record payload.
type SRVData struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (SRVData) recordData() {}

// TXTData is the TXT-record payload: an ordered list of character-strings,
// each at most 255 bytes.
type TXTData struct {
	Segments [][]byte
}

func (TXTData) recordData() {}

// CAAData is the CAA-record payload.
type CAAData struct {
	Flag  uint8
	Tag   string
	Value []byte
}

func (CAAData) recordData() {}

// UnknownData preserves the raw rdata for any record type this codec does
// not know how to decode structurally.
type UnknownData struct {
	Raw []byte
}

func (UnknownData) recordData() {}

// encodeRData serializes data per the wire rules for rrtype t.
func encodeRData(t RRType, data RecordData) ([]byte, error) {
	switch t {
	case TypeA:
		return encodeAData(data)
	case TypeAAAA:
		return encodeAAAAData(data)
	case TypeCNAME, TypeNS, TypePTR:
		return encodeNameData(data)
	case TypeMX:
		return encodeMXData(data)
	case TypeSOA:
		return encodeSOAData(data)
	case TypeSRV:
		return encodeSRVData(data)
	case TypeTXT:
		return encodeTXTData(data)
	case TypeCAA:
		return encodeCAAData(data)
	default:
		u, ok := data.(UnknownData)
		if !ok {
			return nil, xerrors.Protocol("rdata does not match record type")
		}
		return u.Raw, nil
	}
}

// decodeRData parses the rdlen bytes of rdata for rrtype t found at
// msg[offset:offset+rdlen]. msg is the whole message so name-bearing
// rdata can follow compression pointers.
func decodeRData(t RRType, msg []byte, offset, rdlen int) (RecordData, error) {
	if offset < 0 || rdlen < 0 || offset+rdlen > len(msg) {
		return nil, xerrors.FormatError()
	}
	rdata := msg[offset : offset+rdlen]
	switch t {
	case TypeA:
		return decodeAData(rdata)
	case TypeAAAA:
		return decodeAAAAData(rdata)
	case TypeCNAME, TypeNS, TypePTR:
		return decodeNameData(msg, offset)
	case TypeMX:
		return decodeMXData(msg, offset, rdlen)
	case TypeSOA:
		return decodeSOAData(msg, offset, rdlen)
	case TypeSRV:
		return decodeSRVData(msg, offset, rdlen)
	case TypeTXT:
		return decodeTXTData(rdata)
	case TypeCAA:
		return decodeCAAData(rdata)
	default:
		raw := make([]byte, len(rdata))
		copy(raw, rdata)
		return UnknownData{Raw: raw}, nil
	}
}
