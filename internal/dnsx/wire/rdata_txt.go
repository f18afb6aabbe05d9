package wire

import "github.com/haukened/dnsx/internal/dnsx/xerrors"

func encodeTXTData(data RecordData) ([]byte, error) {
	txt, ok := data.(TXTData)
	if !ok {
		return nil, xerrors.Protocol("TXT record requires TXTData")
	}
	var out []byte
	for _, seg := range txt.Segments {
		if len(seg) > 255 {
			return nil, xerrors.FormatError()
		}
		out = append(out, byte(len(seg)))
		out = append(out, seg...)
	}
	return out, nil
}

// decodeTXTData splits rdata into its repeated len|bytes character-strings,
// filling the rdlength exactly.
func decodeTXTData(rdata []byte) (RecordData, error) {
	var segments [][]byte
	i := 0
	for i < len(rdata) {
		n := int(rdata[i])
		i++
		if i+n > len(rdata) {
			return nil, xerrors.FormatError()
		}
		seg := make([]byte, n)
		copy(seg, rdata[i:i+n])
		segments = append(segments, seg)
		i += n
	}
	return TXTData{Segments: segments}, nil
}
