package simdjson

// Document is the value a Stage 2 implementation produces from a batch of
// structural indices. Spec §4.3 treats Stage 2 as an external collaborator
// with a defined input contract only; Document is deliberately opaque here
// so this module never commits to a DOM shape.
type Document = interface{}

// DocumentSink is the external Stage 2 contract (spec §4.3): it consumes
// the original bytes together with the structural indices covering exactly
// one top-level document and produces a Document, or fails.
//
// The Stream Driver never inspects the returned Document; it only
// propagates BuildDocument's error, wrapped in a Status where possible.
type DocumentSink interface {
	BuildDocument(data []byte, indices []uint32) (Document, error)
}
