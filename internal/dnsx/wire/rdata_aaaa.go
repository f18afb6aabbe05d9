package wire

import "github.com/haukened/dnsx/internal/dnsx/xerrors"

func encodeAAAAData(data RecordData) ([]byte, error) {
	a, ok := data.(AAAAData)
	if !ok {
		return nil, xerrors.Protocol("AAAA record requires AAAAData")
	}
	out := make([]byte, 16)
	copy(out, a.Addr[:])
	return out, nil
}

func decodeAAAAData(rdata []byte) (RecordData, error) {
	if len(rdata) != 16 {
		return nil, xerrors.FormatError()
	}
	var a AAAAData
	copy(a.Addr[:], rdata)
	return a, nil
}
