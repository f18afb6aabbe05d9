package wire

import (
	"encoding/binary"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

func encodeSRVData(data RecordData) ([]byte, error) {
	srv, ok := data.(SRVData)
	if !ok {
		return nil, xerrors.Protocol("SRV record requires SRVData")
	}
	target, err := encodeName(srv.Target)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 6, 6+len(target))
	binary.BigEndian.PutUint16(out[0:2], srv.Priority)
	binary.BigEndian.PutUint16(out[2:4], srv.Weight)
	binary.BigEndian.PutUint16(out[4:6], srv.Port)
	out = append(out, target...)
	return out, nil
}

func decodeSRVData(msg []byte, offset, rdlen int) (RecordData, error) {
	if rdlen < 7 {
		return nil, xerrors.FormatError()
	}
	priority := binary.BigEndian.Uint16(msg[offset : offset+2])
	weight := binary.BigEndian.Uint16(msg[offset+2 : offset+4])
	port := binary.BigEndian.Uint16(msg[offset+4 : offset+6])
	target, _, err := decodeName(msg, offset+6)
	if err != nil {
		return nil, err
	}
	return SRVData{Priority: priority, Weight: weight, Port: port, Target: target}, nil
}
