package wire

import "github.com/haukened/dnsx/internal/dnsx/xerrors"

// encodeNameData serializes the single-name payload shared by CNAME, NS,
// and PTR records.
func encodeNameData(data RecordData) ([]byte, error) {
	n, ok := data.(NameData)
	if !ok {
		return nil, xerrors.Protocol("record requires NameData")
	}
	return encodeName(n.Name)
}

func decodeNameData(msg []byte, offset int) (RecordData, error) {
	name, _, err := decodeName(msg, offset)
	if err != nil {
		return nil, err
	}
	return NameData{Name: name}, nil
}
