package wire

import (
	"bytes"
	"strings"

	"github.com/haukened/dnsx/internal/dnsx/xerrors"
)

// maxNameJumps bounds the number of compression-pointer indirections
// decodeName will follow for a single name, guarding against pointer loops.
const maxNameJumps = 100

// maxNameBytes is the wire-format limit on an encoded domain name
// (RFC 1035 §3.1: 255 octets including length bytes and the root label).
const maxNameBytes = 255

// encodeName writes name (without compression) as a sequence of
// length-prefixed labels terminated by a zero byte. Case is preserved
// exactly as supplied; only canonicalName (used for cache/comparison
// keys) lowercases.
func encodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")

	var buf bytes.Buffer
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			if len(label) == 0 {
				continue
			}
			if len(label) > 63 {
				return nil, xerrors.FormatError()
			}
			buf.WriteByte(byte(len(label)))
			buf.WriteString(label)
		}
	}
	buf.WriteByte(0)
	if buf.Len() > maxNameBytes {
		return nil, xerrors.FormatError()
	}
	return buf.Bytes(), nil
}

// decodeName decodes a domain name starting at offset within data,
// following compression pointers as needed, and returns the name and the
// offset immediately following the name's own encoding (not including any
// bytes belonging to a followed pointer's target).
func decodeName(data []byte, offset int) (string, int, error) {
	var labels []string
	jumps := 0
	end := -1 // offset right after the first pointer or terminator, fixed once set
	cur := offset
	total := 0

	for {
		if cur < 0 || cur >= len(data) {
			return "", 0, xerrors.FormatError()
		}
		length := int(data[cur])

		switch {
		case length == 0:
			cur++
			if end == -1 {
				end = cur
			}
			if end > len(data) {
				return "", 0, xerrors.FormatError()
			}
			return joinLabels(labels), end, nil

		case length&0xC0 == 0xC0:
			if cur+1 >= len(data) {
				return "", 0, xerrors.FormatError()
			}
			jumps++
			if jumps > maxNameJumps {
				return "", 0, xerrors.FormatError()
			}
			ptr := (length&0x3F)<<8 | int(data[cur+1])
			if end == -1 {
				end = cur + 2
			}
			if ptr >= cur {
				// forward or self pointers cannot shrink the search space
				// and are the classic loop-construction trick; reject them.
				return "", 0, xerrors.FormatError()
			}
			cur = ptr

		case length&0xC0 != 0:
			// reserved label-length high bits (0b01 or 0b10)
			return "", 0, xerrors.FormatError()

		default:
			cur++
			if cur+length > len(data) {
				return "", 0, xerrors.FormatError()
			}
			labels = append(labels, string(data[cur:cur+length]))
			total += length + 1
			if total > maxNameBytes {
				return "", 0, xerrors.FormatError()
			}
			cur += length
		}
	}
}

func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return "."
	}
	return strings.Join(labels, ".") + "."
}

// canonicalName lowercases and trailing-dot-normalizes a domain name for
// storage and comparison, matching the case-insensitive equality rule
// while preserving nothing beyond that (emission keeps original case
// where the caller supplies it directly to encodeName).
func canonicalName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	if name == "" || name == "." {
		return "."
	}
	if !strings.HasSuffix(name, ".") {
		name += "."
	}
	return name
}
