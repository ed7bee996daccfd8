package scanner

// Byte classification for the whitespace/structural masks (spec §4.1,
// "Whitespace and structurals"). The original C kernel reaches this via a
// pair of nibble-indexed SIMD table lookups ANDed together; without real
// SIMD this module uses the equivalent 256-entry byte table, which is the
// same algebraic lookup with the nibble split folded in at table-build time.

const (
	classWhitespace uint8 = 1 << 0
	classStructural uint8 = 1 << 1
)

// byteClass[b] tells us, for every possible input byte, whether it belongs
// to the whitespace set {0x20, 0x09, 0x0A, 0x0D} or the structural set
// {{ } [ ] , :}. Both bits are mutually exclusive by construction.
var byteClass = buildByteClass()

func buildByteClass() [256]uint8 {
	var t [256]uint8
	for _, b := range []byte{' ', '\t', '\n', '\r'} {
		t[b] = classWhitespace
	}
	for _, b := range []byte{'{', '}', '[', ']', ',', ':'} {
		t[b] = classStructural
	}
	return t
}

// classifyWhitespaceAndStructural builds the two 64-bit lane masks for a
// padded 64-byte chunk in one pass.
func classifyWhitespaceAndStructural(chunk *[64]byte) (whitespace, structural uint64) {
	for i := 0; i < 64; i++ {
		switch byteClass[chunk[i]] {
		case classWhitespace:
			whitespace |= 1 << uint(i)
		case classStructural:
			structural |= 1 << uint(i)
		}
	}
	return whitespace, structural
}
