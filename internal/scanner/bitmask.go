package scanner

// Bit-parallel primitives for one 64-byte lane. Ported from the bitmask
// algebra in simdjson's src/generic/stage1_find_marks.h (odd-backslash
// detection, quote-mask prefix-XOR, structural finalization), expressed in
// pure Go uint64 arithmetic instead of SIMD intrinsics.

const evenBits uint64 = 0x5555555555555555
const oddBits uint64 = ^evenBits

// findOddBackslashSequences returns the bitmask of positions that terminate
// an odd-length run of backslashes, given the incoming carry from the
// previous lane. It updates prevEndsOddBackslash for the next call.
//
// Derivation (spec §4.1 "Odd-backslash ends"):
//  1. start_edges = bs & ~(bs << 1)
//  2. split starts at even/odd bit positions, flipping parity by the carry
//  3. add starts into bs with checked overflow to propagate through runs
//  4. carry-out of the odd-start addition becomes the new carry
//  5. odd_ends = (even-start runs ending odd) | (odd-start runs ending even)
func findOddBackslashSequences(bsBits uint64, prevEndsOddBackslash *bool) uint64 {
	var carryIn uint64
	if *prevEndsOddBackslash {
		carryIn = 1
	}

	startEdges := bsBits &^ (bsBits << 1)
	evenStartMask := evenBits ^ carryIn
	evenStarts := startEdges & evenStartMask
	oddStarts := startEdges &^ evenStartMask

	evenCarries := bsBits + evenStarts

	oddCarries, carryOut := addUint64WithCarry(bsBits, oddStarts)
	oddCarries |= carryIn

	*prevEndsOddBackslash = carryOut != 0

	evenCarryEnds := evenCarries &^ bsBits
	oddCarryEnds := oddCarries &^ bsBits
	evenStartOddEnd := evenCarryEnds & oddBits
	oddStartEvenEnd := oddCarryEnds & evenBits
	return evenStartOddEnd | oddStartEvenEnd
}

// addUint64WithCarry adds a and b, reporting the carry out of bit 63.
func addUint64WithCarry(a, b uint64) (sum uint64, carryOut uint64) {
	sum = a + b
	if sum < a {
		carryOut = 1
	}
	return sum, carryOut
}

// prefixXor computes, for every bit i, the XOR of all bits 0..i of bitmask.
// This is the portable fallback for the carry-less multiply by all-ones
// mentioned in spec §4.1/§9 ("8-bit nibble table" or "64-iteration scan");
// the doubling form below is the standard closed-form identity for that
// same prefix-XOR and runs in O(log 64) steps without a scan.
func prefixXor(bitmask uint64) uint64 {
	bitmask ^= bitmask << 1
	bitmask ^= bitmask << 2
	bitmask ^= bitmask << 4
	bitmask ^= bitmask << 8
	bitmask ^= bitmask << 16
	bitmask ^= bitmask << 32
	return bitmask
}

// findQuoteMaskAndBits computes the quote mask (half-open span covering each
// unescaped quoted string) and updates quoteBits to the real, unescaped
// quote positions. unescaped marks control bytes (<=0x1F); any control byte
// found inside a string is latched into errorMask. prevInsideQuote carries
// the in-string parity across lanes (spec §4.1 "Quote mask").
func findQuoteMaskAndBits(unescaped, oddEnds uint64, prevInsideQuote, quoteBits, errorMask *uint64) uint64 {
	*quoteBits &^= oddEnds
	quoteMask := prefixXor(*quoteBits)
	quoteMask ^= *prevInsideQuote
	*errorMask |= quoteMask & unescaped

	// Arithmetic right shift of bit 63, broadcast to all 64 bits.
	if int64(quoteMask) < 0 {
		*prevInsideQuote = ^uint64(0)
	} else {
		*prevInsideQuote = 0
	}
	return quoteMask
}

// finalizeStructurals folds the quote mask and pseudo-structural detection
// into the raw structural/whitespace masks for one lane (spec §4.1
// "Finalization"). prevEndsPseudoPred carries across lanes.
func finalizeStructurals(structurals, whitespace, quoteMask, quoteBits uint64, prevEndsPseudoPred *bool) uint64 {
	structurals &^= quoteMask
	structurals |= quoteBits

	pseudoPred := structurals | whitespace

	var carryIn uint64
	if *prevEndsPseudoPred {
		carryIn = 1
	}
	shiftedPseudoPred := (pseudoPred << 1) | carryIn
	*prevEndsPseudoPred = (pseudoPred >> 63) != 0

	pseudoStructurals := shiftedPseudoPred &^ whitespace &^ quoteMask
	structurals |= pseudoStructurals

	// Switch off closing quotes: on in quoteBits, off in quoteMask.
	structurals &^= quoteBits &^ quoteMask
	return structurals
}
