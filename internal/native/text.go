package native

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// sanitizeText replaces malformed UTF-8 in decoded payloads with U+FFFD.
// Symbols may carry arbitrary byte-mode data.
func sanitizeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// utf16Path encodes path as a NUL-terminated UTF-16 sequence for the wide
// path entry point.
func utf16Path(path string) ([]uint16, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(path))
	if err != nil {
		return nil, fmt.Errorf("encode path as utf-16: %w", err)
	}
	out := make([]uint16, len(b)/2+1)
	for i := 0; i+1 < len(b); i += 2 {
		out[i/2] = binary.LittleEndian.Uint16(b[i:])
	}
	return out, nil
}
