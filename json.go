package simdjson

import (
	"github.com/kestrelstream/simdjson-go/internal/parser"
	"github.com/kestrelstream/simdjson-go/internal/scanner"
)

// Valid reports whether data is exactly one well-formed RFC 8259 JSON value
// (spec §1 Non-goals exclude "producing a parsed DOM" as this module's own
// surface, but validation still needs full grammar checking, so Valid runs
// the Structural Indexer and hands its output to the reference Stage 2, the
// way simdjson's own Valid runs both stages and discards the result).
func Valid(data []byte) bool {
	carry := scanner.GetCarry()
	defer scanner.PutCarry(carry)

	out := scanner.GetIndexSlice(len(data) + 2)
	defer scanner.PutIndexSlice(out)

	count, st := scanner.Index(data, out, carry)
	if st != StatusSuccess {
		return false
	}
	indices := out[:count]
	docEnds := scanTopLevelDocuments(data, indices)
	// exactly one top-level document must span the input, with nothing left
	// but the appended virtual terminator.
	if len(docEnds) != 1 || docEnds[0] != len(indices)-2 {
		return false
	}

	docIndices := indices[:docEnds[0]+1]
	_, err := parser.New().Parse(data, docIndices)
	return err == nil
}
