package wire

import (
	"encoding/binary"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

func encodeMXData(data RecordData) ([]byte, error) {
	mx, ok := data.(MXData)
	if !ok {
		return nil, xerrors.Protocol("MX record requires MXData")
	}
	exchange, err := encodeName(mx.Exchange)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 2, 2+len(exchange))
	binary.BigEndian.PutUint16(out, mx.Preference)
	out = append(out, exchange...)
	return out, nil
}

func decodeMXData(msg []byte, offset, rdlen int) (RecordData, error) {
	if rdlen < 3 {
		return nil, xerrors.FormatError()
	}
	pref := binary.BigEndian.Uint16(msg[offset : offset+2])
	exchange, _, err := decodeName(msg, offset+2)
	if err != nil {
		return nil, err
	}
	return MXData{Preference: pref, Exchange: exchange}, nil
}
