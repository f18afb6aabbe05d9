package wire

import "github.com/haukened/dnsx/internal/dnsx/xerrors"

func encodeAData(data RecordData) ([]byte, error) {
	a, ok := data.(AData)
	if !ok {
		return nil, xerrors.Protocol("A record requires AData")
	}
	out := make([]byte, 4)
	copy(out, a.Addr[:])
	return out, nil
}

func decodeAData(rdata []byte) (RecordData, error) {
	if len(rdata) != 4 {
		return nil, xerrors.FormatError()
	}
	var a AData
	copy(a.Addr[:], rdata)
	return a, nil
}
