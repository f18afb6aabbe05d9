package wire

import "github.com/haukened/dnsx/internal/dnsx/xerrors"

func encodeCAAData(data RecordData) ([]byte, error) {
	caa, ok := data.(CAAData)
	if !ok {
		return nil, xerrors.Protocol("CAA record requires CAAData")
	}
	if len(caa.Tag) > 255 || len(caa.Value) > 255 {
		return nil, xerrors.FormatError()
	}
	out := make([]byte, 0, 2+len(caa.Tag)+len(caa.Value))
	out = append(out, caa.Flag, byte(len(caa.Tag)))
	out = append(out, caa.Tag...)
	out = append(out, caa.Value...)
	return out, nil
}

func decodeCAAData(rdata []byte) (RecordData, error) {
	if len(rdata) < 2 {
		return nil, xerrors.FormatError()
	}
	flag := rdata[0]
	tagLen := int(rdata[1])
	if 2+tagLen > len(rdata) {
		return nil, xerrors.FormatError()
	}
	tag := string(rdata[2 : 2+tagLen])
	value := make([]byte, len(rdata)-2-tagLen)
	copy(value, rdata[2+tagLen:])
	return CAAData{Flag: flag, Tag: tag, Value: value}, nil
}
