package simdjson

import "github.com/kestrelstream/simdjson-go/internal/parser"

// ReferenceSink is a minimal Stage 2 (spec §4.3's external collaborator),
// shipped so the Structural Indexer and the Stream Driver can be exercised
// end to end without pulling in a separate DOM library. It builds ordinary
// Go values: objects become map[string]interface{}, arrays become
// []interface{}, and scalars become string/int64/float64/bool/nil.
//
// It is not part of the specified surface and does not aim for exhaustive
// RFC 8259 fidelity; production callers are expected to supply their own
// DocumentSink.
type ReferenceSink struct{}

// NewReferenceSink returns a ReferenceSink. Each call to BuildDocument uses
// its own parser.Parser, so a ReferenceSink is safe to reuse across
// concurrent Streams.
func NewReferenceSink() ReferenceSink { return ReferenceSink{} }

func (ReferenceSink) BuildDocument(data []byte, indices []uint32) (Document, error) {
	p := parser.New()
	v, err := p.Parse(data, indices)
	if err != nil {
		return nil, &sinkError{err: err}
	}
	return v, nil
}

// sinkError adapts a *parser.Error to the Status Next() reports, satisfying
// the SimdjsonStatus() extension point statusFromSinkError looks for.
type sinkError struct{ err error }

func (e *sinkError) Error() string { return e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

func (e *sinkError) SimdjsonStatus() Status {
	if pe, ok := e.err.(*parser.Error); ok {
		return pe.Status
	}
	return StatusTapeError
}
