package wire

import (
	"encoding/binary"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

func encodeSOAData(data RecordData) ([]byte, error) {
	soa, ok := data.(SOAData)
	if !ok {
		return nil, xerrors.Protocol("SOA record requires SOAData")
	}
	mname, err := encodeName(soa.MName)
	if err != nil {
		return nil, err
	}
	rname, err := encodeName(soa.RName)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(mname)+len(rname)+20)
	out = append(out, mname...)
	out = append(out, rname...)
	u32 := make([]byte, 20)
	binary.BigEndian.PutUint32(u32[0:4], soa.Serial)
	binary.BigEndian.PutUint32(u32[4:8], soa.Refresh)
	binary.BigEndian.PutUint32(u32[8:12], soa.Retry)
	binary.BigEndian.PutUint32(u32[12:16], soa.Expire)
	binary.BigEndian.PutUint32(u32[16:20], soa.Minimum)
	out = append(out, u32...)
	return out, nil
}

func decodeSOAData(msg []byte, offset, rdlen int) (RecordData, error) {
	end := offset + rdlen
	mname, next, err := decodeName(msg, offset)
	if err != nil {
		return nil, err
	}
	rname, next, err := decodeName(msg, next)
	if err != nil {
		return nil, err
	}
	if next+20 > end || next+20 > len(msg) {
		return nil, xerrors.FormatError()
	}
	return SOAData{
		MName:   mname,
		RName:   rname,
		Serial:  binary.BigEndian.Uint32(msg[next : next+4]),
		Refresh: binary.BigEndian.Uint32(msg[next+4 : next+8]),
		Retry:   binary.BigEndian.Uint32(msg[next+8 : next+12]),
		Expire:  binary.BigEndian.Uint32(msg[next+12 : next+16]),
		Minimum: binary.BigEndian.Uint32(msg[next+16 : next+20]),
	}, nil
}
