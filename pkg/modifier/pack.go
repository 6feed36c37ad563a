package modifier

import (
	"fmt"

	"github.com/takehaya/flowgen/pkg/field"
)

// Pack concatenates the in-config fields behind the identifier byte, most
// significant bit first and without padding between fields. The result is
// cut to the bytes holding the last emitted bit.
func Pack(id byte, fields []field.Field) []byte {
	out := []byte{id}
	bitPos := 8
	for _, f := range fields {
		if !f.InConfig() {
			continue
		}
		b := f.Bytes()
		out = append(out, make([]byte, len(b))...)
		// the most significant byte may have up to 7 unused bits
		empty := len(b)*8 - f.BitSize()
		for i := len(b) - 1; i >= 0; i-- {
			v := b[i] & (0xFF >> uint(empty))
			pos := bitPos / 8
			shift := bitPos%8 - empty
			switch {
			case shift == 0:
				out[pos] |= v
			case shift > 0:
				out[pos] |= v >> uint(shift)
				out[pos+1] |= v << uint(8-shift)
			default:
				out[pos] |= v << uint(-shift)
			}
			bitPos += 8 - empty
			empty = 0
		}
	}
	return out[:(bitPos+7)/8]
}

// HexLines zero-pads b to a multiple of 8 bytes and renders each 8-byte
// group as two lines of 4 bytes, second half first.
func HexLines(b []byte) []string {
	padded := b
	if rem := len(b) % 8; rem > 0 {
		padded = append(append([]byte(nil), b...), make([]byte, 8-rem)...)
	}
	lines := make([]string, 0, len(padded)/4)
	for i := 0; i < len(padded); i += 8 {
		lines = append(lines,
			fmt.Sprintf("%02X%02X%02X%02X", padded[i+4], padded[i+5], padded[i+6], padded[i+7]),
			fmt.Sprintf("%02X%02X%02X%02X", padded[i], padded[i+1], padded[i+2], padded[i+3]),
		)
	}
	return lines
}
