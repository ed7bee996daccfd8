// Package scanner is the Structural Indexer (spec §4.1): a branch-light,
// bit-parallel scan that classifies every byte of a buffer and appends the
// offsets of every structurally significant byte into a caller-provided
// index array. It performs no allocation and carries state between 64-byte
// lanes only through the small Carry record. Each Index call covers one
// whole buffer: its offsets are relative to that buffer's start and it ends
// with its own end-of-input checks and virtual terminator, so indexing
// adjacent chunks in separate calls does not reproduce the result of one
// call over their concatenation.
package scanner

import (
	"github.com/kestrelstream/simdjson-go/internal/status"
)

// LaneWidth is the bit-parallel lane width the kernel's algebra is defined
// over. The spec treats the SIMD width as an implementation parameter but
// fixes the bitmask algebra at 64-bit lanes; this module has exactly one
// portable lane width, so the two coincide.
const LaneWidth = 64

// Carry is the scalar state threaded between 64-byte lanes within one Index
// call (spec §3, "Carry state"). Index flushes the last lane's pending
// structurals before it returns, so no lane is left pending for a later call.
type Carry struct {
	PrevEndsOddBackslash bool
	PrevInsideQuote      uint64
	PrevEndsPseudoPred   bool
	PrevStructurals      uint64
	prevBase             uint32 // absolute offset of the lane whose bits are pending flush
	ErrorMask            uint64
	utf8 utf8State
}

// NewCarry returns a Carry in its initial state: the very first byte of a
// buffer is treated as following whitespace, so PrevEndsPseudoPred starts
// true (spec §3).
func NewCarry() *Carry {
	return &Carry{PrevEndsPseudoPred: true, utf8: newUTF8State()}
}

// Reset returns the carry to its initial state, for reuse across unrelated
// buffers (e.g. pooled carries, or a stream driver batch that never shares
// state across batches per spec §4.2).
func (c *Carry) Reset() {
	*c = Carry{PrevEndsPseudoPred: true, utf8: newUTF8State()}
}

// processLane runs the full bitmask algebra for one already-padded 64-byte
// lane starting at absolute offset base, then flushes the *previous* lane's
// finalized structural bits into out (spec §4.1 "Flattening": the previous
// iteration's mask is deliberately flushed late to overlap the prefix-XOR
// latency of the current iteration).
func processLane(chunk *[64]byte, base uint32, carry *Carry, out []uint32, count *uint32) {
	carry.utf8.checkChunk(chunk[:])

	var bs, quote, ctrl uint64
	for i := 0; i < LaneWidth; i++ {
		b := chunk[i]
		switch {
		case b == '\\':
			bs |= 1 << uint(i)
		case b == '"':
			quote |= 1 << uint(i)
		case b <= 0x1F:
			ctrl |= 1 << uint(i)
		}
	}
	whitespace, structural := classifyWhitespaceAndStructural(chunk)

	oddEnds := findOddBackslashSequences(bs, &carry.PrevEndsOddBackslash)
	quoteBits := quote
	quoteMask := findQuoteMaskAndBits(ctrl, oddEnds, &carry.PrevInsideQuote, &quoteBits, &carry.ErrorMask)

	flatten(carry.PrevStructurals, carry.prevBase, out, count)

	carry.PrevStructurals = finalizeStructurals(structural, whitespace, quoteMask, quoteBits, &carry.PrevEndsPseudoPred)
	carry.prevBase = base
}

// Index runs the Structural Indexer over a full buffer, writing offsets
// into out starting at out[0] and returning the count written plus a
// status (spec §4.1 "Operation"). out must have capacity for at least
// len(buf)+2 entries (room for the virtual terminator and the one-past-end
// zero sentinel required by spec §3).
//
// buf need not be pre-padded: Index copies any final partial lane into a
// 64-byte scratch filled with 0x20, matching the padding contract of §3.
func Index(buf []byte, out []uint32, carry *Carry) (uint32, status.Status) {
	if len(out) < len(buf)+2 {
		return 0, status.Capacity
	}

	var count uint32
	n := len(buf)
	full := n &^ (LaneWidth - 1)

	var lane [LaneWidth]byte
	for base := 0; base < full; base += LaneWidth {
		copy(lane[:], buf[base:base+LaneWidth])
		processLane(&lane, uint32(base), carry, out, &count)
	}

	if full < n {
		for i := range lane {
			lane[i] = 0x20
		}
		copy(lane[:], buf[full:n])
		processLane(&lane, uint32(full), carry, out, &count)
	}

	// Flush the final lane's pending structurals before consulting any
	// end-of-input status: even when the buffer ends inside a string, the
	// indices found so far (including that string's opening quote) are
	// returned together with UnclosedString.
	flatten(carry.PrevStructurals, carry.prevBase, out, &count)
	carry.PrevStructurals = 0

	if carry.PrevInsideQuote != 0 {
		if count == 0 {
			return 0, status.UnclosedString
		}
		out[count] = 0
		return count, status.UnclosedString
	}

	if count == 0 {
		return 0, status.Empty
	}
	if out[count-1] > uint32(n) {
		return count, status.UnexpectedError
	}
	if uint32(n) != out[count-1] {
		out[count] = uint32(n)
		count++
	}
	out[count] = 0

	if carry.ErrorMask != 0 {
		return count, status.UnescapedChars
	}
	if carry.utf8.finalError() {
		return count, status.UTF8Error
	}
	return count, status.Success
}
