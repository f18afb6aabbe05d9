// Package wire encodes and decodes RFC 1035 DNS messages with EDNS(0)
// extensions, independent of which transport carries the bytes.
package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// Codec encodes outgoing queries and decodes incoming responses. A single
// implementation covers all four transports; only framing differs
// between them, and framing is transport's concern, not the codec's.
type Codec interface {
	EncodeQuery(q Query, subnet *ClientSubnet) ([]byte, error)
	DecodeQuery(data []byte) (Query, error)
	EncodeResponse(r Response) ([]byte, error)
	DecodeResponse(data []byte, expectedID uint16) (Response, error)
}

type codec struct{}

// NewCodec returns the default RFC 1035 / EDNS(0) codec.
func NewCodec() Codec {
	return codec{}
}

func packFlags(qr bool, opcode uint8, aa, tc, rd, ra bool, z uint8, rcode RCode) uint16 {
	var flags uint16
	if qr {
		flags |= 1 << 15
	}
	flags |= uint16(opcode&0x0F) << 11
	if aa {
		flags |= 1 << 10
	}
	if tc {
		flags |= 1 << 9
	}
	if rd {
		flags |= 1 << 8
	}
	if ra {
		flags |= 1 << 7
	}
	flags |= uint16(z&0x07) << 4
	flags |= uint16(rcode) & 0x0F
	return flags
}

func unpackFlags(flags uint16) (qr bool, opcode uint8, aa, tc, rd, ra bool, z uint8, rcode RCode) {
	qr = flags&(1<<15) != 0
	opcode = uint8(flags>>11) & 0x0F
	aa = flags&(1<<10) != 0
	tc = flags&(1<<9) != 0
	rd = flags&(1<<8) != 0
	ra = flags&(1<<7) != 0
	z = uint8(flags>>4) & 0x07
	rcode = RCode(flags & 0x0F)
	return
}

// EncodeQuery serializes a recursive-desired query, optionally attaching
// an EDNS Client Subnet option in the Additional section per §3/§4.1.
func (codec) EncodeQuery(q Query, subnet *ClientSubnet) ([]byte, error) {
	var buf bytes.Buffer

	arCount := uint16(0)
	if subnet != nil {
		arCount = 1
	}

	writeU16(&buf, q.ID)
	writeU16(&buf, packFlags(false, 0, false, false, true, false, 0, RCodeNoError))
	writeU16(&buf, 1) // QDCOUNT
	writeU16(&buf, 0) // ANCOUNT
	writeU16(&buf, 0) // NSCOUNT
	writeU16(&buf, arCount)

	name, err := encodeName(q.Name)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	writeU16(&buf, uint16(q.Type))
	writeU16(&buf, uint16(q.Class))

	if subnet != nil {
		opt := EdnsOptRecord{
			UDPPayloadSize: 1232,
			Options: []EdnsOption{{
				Code: EdnsOptionClientSubnet,
				Data: subnet.Encode(),
			}},
		}
		if err := writeOptRecord(&buf, opt); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// DecodeQuery parses a DNS query message (used by test doubles / mock
// servers that need to inspect what the codec would send).
func (codec) DecodeQuery(data []byte) (Query, error) {
	if len(data) < 12 {
		return Query{}, xerrors.FormatError()
	}
	id := binary.BigEndian.Uint16(data[0:2])
	qdCount := binary.BigEndian.Uint16(data[4:6])
	if qdCount != 1 {
		return Query{}, xerrors.FormatError()
	}
	name, next, err := decodeName(data, 12)
	if err != nil {
		return Query{}, err
	}
	if next+4 > len(data) {
		return Query{}, xerrors.FormatError()
	}
	qtype := binary.BigEndian.Uint16(data[next : next+2])
	qclass := binary.BigEndian.Uint16(data[next+2 : next+4])
	return Query{ID: id, Name: name, Type: RRType(qtype), Class: RRClass(qclass)}, nil
}

// EncodeResponse serializes r, encoding each record's owner name without
// compression (the codec favors simplicity over minimal wire size for
// responses it authors itself; compression is only required to be
// understood on the decode path per §4.1).
func (codec) EncodeResponse(r Response) ([]byte, error) {
	var buf bytes.Buffer

	if len(r.Questions) > 0xFFFF || len(r.Answers) > 0xFFFF ||
		len(r.Authority) > 0xFFFF || len(r.Additional) > 0xFFFF {
		return nil, xerrors.FormatError()
	}

	writeU16(&buf, r.ID)
	writeU16(&buf, packFlags(true, r.Opcode, r.AA, r.TC, r.RD, r.RA, 0, r.RCode))
	writeU16(&buf, uint16(len(r.Questions)))
	writeU16(&buf, uint16(len(r.Answers)))
	writeU16(&buf, uint16(len(r.Authority)))
	writeU16(&buf, uint16(len(r.Additional)))

	for _, q := range r.Questions {
		name, err := encodeName(q.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		writeU16(&buf, uint16(q.Type))
		writeU16(&buf, uint16(q.Class))
	}

	for _, section := range [][]Record{r.Answers, r.Authority, r.Additional} {
		for _, rr := range section {
			if err := writeRecord(&buf, rr); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, rr Record) error {
	name, err := encodeName(rr.Name)
	if err != nil {
		return err
	}
	buf.Write(name)
	writeU16(buf, uint16(rr.Type))
	writeU16(buf, uint16(rr.Class))
	writeU32(buf, rr.TTL)

	rdata, err := encodeRData(rr.Type, rr.Data)
	if err != nil {
		return err
	}
	if len(rdata) > 0xFFFF {
		return xerrors.FormatError()
	}
	writeU16(buf, uint16(len(rdata)))
	buf.Write(rdata)
	return nil
}

func writeOptRecord(buf *bytes.Buffer, opt EdnsOptRecord) error {
	buf.WriteByte(0) // root owner name
	writeU16(buf, uint16(TypeOPT))
	writeU16(buf, opt.UDPPayloadSize)
	writeU32(buf, opt.flagsAndVersion())
	rdata := opt.encodeRData()
	if len(rdata) > 0xFFFF {
		return xerrors.FormatError()
	}
	writeU16(buf, uint16(len(rdata)))
	buf.Write(rdata)
	return nil
}

// DecodeResponse parses data into a Response, validating that its
// transaction id matches expectedID; a mismatch is returned as a Protocol
// error.
func (codec) DecodeResponse(data []byte, expectedID uint16) (Response, error) {
	if len(data) < 12 {
		return Response{}, xerrors.FormatError()
	}
	id := binary.BigEndian.Uint16(data[0:2])
	if id != expectedID {
		return Response{}, xerrors.Protocol("response id does not match request id")
	}

	flags := binary.BigEndian.Uint16(data[2:4])
	qr, opcode, aa, tc, rd, ra, z, rcode := unpackFlags(flags)

	qdCount := binary.BigEndian.Uint16(data[4:6])
	anCount := binary.BigEndian.Uint16(data[6:8])
	nsCount := binary.BigEndian.Uint16(data[8:10])
	arCount := binary.BigEndian.Uint16(data[10:12])

	offset := 12
	questions := make([]Query, 0, qdCount)
	for i := 0; i < int(qdCount); i++ {
		name, next, err := decodeName(data, offset)
		if err != nil {
			return Response{}, err
		}
		if next+4 > len(data) {
			return Response{}, xerrors.FormatError()
		}
		qtype := binary.BigEndian.Uint16(data[next : next+2])
		qclass := binary.BigEndian.Uint16(data[next+2 : next+4])
		questions = append(questions, Query{ID: id, Name: name, Type: RRType(qtype), Class: RRClass(qclass)})
		offset = next + 4
	}

	answers, offset, err := decodeRecordSection(data, offset, int(anCount))
	if err != nil {
		return Response{}, err
	}
	authority, offset, err := decodeRecordSection(data, offset, int(nsCount))
	if err != nil {
		return Response{}, err
	}
	additional, _, err := decodeRecordSection(data, offset, int(arCount))
	if err != nil {
		return Response{}, err
	}

	return Response{
		ID:         id,
		QR:         qr,
		Opcode:     opcode,
		AA:         aa,
		TC:         tc,
		RD:         rd,
		RA:         ra,
		Z:          z,
		RCode:      rcode,
		Questions:  questions,
		Answers:    answers,
		Authority:  authority,
		Additional: additional,
	}, nil
}

func decodeRecordSection(data []byte, offset, count int) ([]Record, int, error) {
	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		rr, next, err := decodeRecord(data, offset)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rr)
		offset = next
	}
	return records, offset, nil
}

func decodeRecord(data []byte, offset int) (Record, int, error) {
	name, next, err := decodeName(data, offset)
	if err != nil {
		return Record{}, 0, err
	}
	if next+10 > len(data) {
		return Record{}, 0, xerrors.FormatError()
	}
	typ := RRType(binary.BigEndian.Uint16(data[next : next+2]))
	class := RRClass(binary.BigEndian.Uint16(data[next+2 : next+4]))
	ttl := binary.BigEndian.Uint32(data[next+4 : next+8])
	rdlen := int(binary.BigEndian.Uint16(data[next+8 : next+10]))
	rdataOffset := next + 10
	if rdataOffset+rdlen > len(data) {
		return Record{}, 0, xerrors.FormatError()
	}

	if typ == TypeOPT {
		opt, err := decodeEdnsOptRecord(class, ttl, data[rdataOffset:rdataOffset+rdlen])
		if err != nil {
			return Record{}, 0, err
		}
		return Record{Name: name, Type: typ, Class: class, TTL: ttl, Data: optAsUnknown(opt)}, rdataOffset + rdlen, nil
	}

	rdata, err := decodeRData(typ, data, rdataOffset, rdlen)
	if err != nil {
		return Record{}, 0, err
	}
	return Record{Name: name, Type: typ, Class: class, TTL: ttl, Data: rdata}, rdataOffset + rdlen, nil
}

// optAsUnknown stashes the decoded OPT record's raw option bytes so
// callers that care (the resolver facade's EDNS handling) can re-decode
// it structurally via DecodeClientSubnet without the generic Record type
// needing a case for EdnsOptRecord.
func optAsUnknown(opt EdnsOptRecord) RecordData {
	return UnknownData{Raw: opt.encodeRData()}
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}
