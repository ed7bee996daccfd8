package scanner

import "math/bits"

// flatten appends base+bitPosition for every set bit in mask to out,
// starting at out[*count], advancing *count. This is the "flattening" pass
// of spec §4.1: positions are extracted via repeated trailing-zero-count
// plus clear-lowest-bit, which is exactly what math/bits.TrailingZeros64
// gives us without hand-rolling a scan.
func flatten(mask uint64, base uint32, out []uint32, count *uint32) {
	for mask != 0 {
		tz := bits.TrailingZeros64(mask)
		out[*count] = base + uint32(tz)
		*count++
		mask &= mask - 1
	}
}
