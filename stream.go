package simdjson

import (
	"github.com/kestrelstream/simdjson-go/internal/scanner"
	"github.com/kestrelstream/simdjson-go/internal/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultBatchSize is the default prefix size the Stream Driver slices off
// the remaining buffer on each batch (spec §4.2, "Batch size").
const DefaultBatchSize = 1_000_000

// Stream is the Stream Driver (spec §4.2): it wraps a long input buffer and
// a configurable batch size, slicing the buffer at top-level document
// boundaries and yielding one document per Next call. A Stream is not safe
// for concurrent use (spec §5); distinct Streams over the same read-only
// buffer are fine.
type Stream struct {
	buf          []byte
	batchSize    int
	maxBatchSize int

	currentBufferLoc int // byte offset just past the last delivered document; the next batch starts here
	batchBase        int // byte offset the currently loaded indices are relative to
	indices          []uint32
	docEnds          []int // positions in indices marking the last index of each complete top-level document in the current batch
	docCursor        int   // next unconsumed slot in docEnds
	docStart         int   // position in indices where the pending document begins

	nParsedDocs        uint64
	nBytesParsed       uint64
	errorOnLastAttempt bool
	latchedStatus      Status
	latchedErr         error

	logger  zerolog.Logger
	metrics *streamMetrics
}

// StreamOption configures a Stream at construction (the pack's constructor-
// function convention, expressed as functional options).
type StreamOption func(*Stream)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithMaxBatchSize sets the ceiling the driver will grow a batch to before
// failing with StatusCapacity when a single document doesn't fit (spec §4.2
// "Batch size", resolving the Open Question of §9 by choosing bounded
// growth over unbounded growth).
func WithMaxBatchSize(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithLogger installs a zerolog.Logger for batch/rewind/error tracing.
// The default is zerolog's disabled logger, so library use stays silent.
func WithLogger(l zerolog.Logger) StreamOption {
	return func(s *Stream) { s.logger = l }
}

// WithMetricsRegisterer registers the stream's counters against reg. The
// default is nil, which leaves the counters unregistered (created but never
// exposed), so importing this package has no effect on any global registry.
func WithMetricsRegisterer(reg prometheus.Registerer) StreamOption {
	return func(s *Stream) { s.metrics = newStreamMetrics(reg) }
}

// NewStream constructs a Stream over buf (spec §6, "make_stream").
func NewStream(buf []byte, opts ...StreamOption) *Stream {
	s := &Stream{
		buf:          buf,
		batchSize:    DefaultBatchSize,
		maxBatchSize: DefaultBatchSize * 16,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newStreamMetrics(nil)
	}
	if s.maxBatchSize < s.batchSize {
		s.maxBatchSize = s.batchSize
	}

	features := scanner.DetectFeatures()
	s.logger.Debug().
		Str("arch", features.Arch).
		Bool("avx2", features.AVX2).
		Bool("sse42", features.SSE42).
		Bool("neon", features.NEON).
		Msg("stream driver started, portable kernel in use regardless of detected features")

	return s
}

// Reset rebinds the Stream to a new buffer, clearing all cursors and the
// error latch (spec §4.2, "A successful set_new_buffer resets the latch
// and cursors").
func (s *Stream) Reset(buf []byte) {
	s.buf = buf
	s.currentBufferLoc = 0
	s.batchBase = 0
	s.indices = nil
	s.docEnds = nil
	s.docCursor = 0
	s.docStart = 0
	s.nParsedDocs = 0
	s.nBytesParsed = 0
	s.errorOnLastAttempt = false
	s.latchedStatus = StatusSuccess
	s.latchedErr = nil
}

// BufferOffset reports the byte offset of the next unparsed document's
// start (spec §6, "stream.buffer_offset()"), skipping any whitespace that
// follows the last delivered document.
func (s *Stream) BufferOffset() int {
	i := s.currentBufferLoc
	for i < len(s.buf) && (s.buf[i] == ' ' || s.buf[i] == '\t' || s.buf[i] == '\n' || s.buf[i] == '\r') {
		i++
	}
	return i
}

// DocsEmitted reports the count of fully delivered documents (spec §6).
func (s *Stream) DocsEmitted() uint64 { return s.nParsedDocs }

// BytesConsumed reports the total bytes consumed by completed batches
// (spec §6).
func (s *Stream) BytesConsumed() uint64 { return s.nBytesParsed }

// Next delivers the next document to sink (spec §4.2, §6 "stream.next").
// It returns StatusEmpty once the buffer is exhausted. Once any error
// latches, every subsequent call re-reports it without doing further work
// (spec §7, "the driver re-returns the latched error on every subsequent
// call until reset is invoked").
func (s *Stream) Next(sink DocumentSink) (Status, error) {
	if s.errorOnLastAttempt {
		return s.latchedStatus, s.latchedErr
	}

	if s.docCursor >= len(s.docEnds) {
		if err := s.loadNextBatch(); err != nil {
			return s.latch(statusOf(err), err)
		}
		if len(s.docEnds) == 0 {
			return StatusEmpty, nil
		}
	}

	endPos := s.docEnds[s.docCursor]
	docIndices := s.indices[s.docStart : endPos+1]
	docStartOffset := s.batchLoc(docIndices[0])
	docEndOffset := s.docByteEnd(docIndices)
	prevLoc := s.currentBufferLoc

	doc, err := sink.BuildDocument(s.buf[s.batchBase:], docIndices)
	if err != nil {
		return s.latch(statusFromSinkError(err), err)
	}
	_ = doc // the driver never inspects the built document, only propagates errors.

	s.docCursor++
	s.docStart = endPos + 1
	s.nParsedDocs++
	// consumed spans from wherever the cursor was left (including any
	// inter-document whitespace) through the end of this document, so
	// bytes_consumed() accounts for the whole prefix, not just document
	// bodies (spec §8 scenario 5: bytes_consumed()==len at exhaustion).
	consumed := uint64(docEndOffset - prevLoc)
	s.nBytesParsed += consumed
	s.currentBufferLoc = docEndOffset
	s.metrics.docsEmitted.Inc()
	s.metrics.bytesConsumed.Add(float64(consumed))

	s.logger.Debug().
		Int("doc_start", docStartOffset).
		Int("doc_end", docEndOffset).
		Uint64("docs_emitted", s.nParsedDocs).
		Msg("document delivered")

	return StatusSuccess, nil
}

// latch marks the error as sticky and stores it for re-reporting.
func (s *Stream) latch(st Status, err error) (Status, error) {
	s.errorOnLastAttempt = true
	s.latchedStatus = st
	s.latchedErr = err
	s.logger.Warn().Err(err).Str("status", st.String()).Msg("stream error latched")
	return st, err
}

// batchLoc converts an index-array offset (relative to the loaded batch) to
// an absolute buffer offset.
func (s *Stream) batchLoc(relOffset uint32) int {
	return s.batchBase + int(relOffset)
}

// docByteEnd computes the absolute offset one past the document's last
// content byte from its structural indices and the raw bytes.
func (s *Stream) docByteEnd(docIndices []uint32) int {
	last := docIndices[len(docIndices)-1]
	base := s.batchBase
	b := s.buf[base+int(last)]
	switch b {
	case '{', '}', '[', ']', ',', ':':
		return base + int(last) + 1
	case '"':
		// opening quote of a top-level string value: scan for its closer.
		i := base + int(last) + 1
		for i < len(s.buf) {
			if s.buf[i] == '"' {
				bsCount := 0
				for k := i - 1; k > base+int(last) && s.buf[k] == '\\'; k-- {
					bsCount++
				}
				if bsCount%2 == 0 {
					return i + 1
				}
			}
			i++
		}
		return len(s.buf)
	default:
		// atom or number: ends at the next whitespace/structural byte.
		i := base + int(last)
		for i < len(s.buf) {
			switch s.buf[i] {
			case ' ', '\t', '\n', '\r', '{', '}', '[', ']', ',', ':':
				return i
			}
			i++
		}
		return len(s.buf)
	}
}

// loadNextBatch slices the next batch off the remaining buffer, runs the
// Structural Indexer over it, and locates the last complete top-level
// document (spec §4.2 steps 3-4). It returns an error only for conditions
// the driver cannot recover from by growing the batch.
func (s *Stream) loadNextBatch() error {
	if s.currentBufferLoc >= len(s.buf) {
		s.docEnds = nil
		return nil
	}

	size := s.batchSize
	for {
		end := s.currentBufferLoc + size
		if end > len(s.buf) {
			end = len(s.buf)
		}
		slice := s.buf[s.currentBufferLoc:end]

		carry := scanner.GetCarry()
		out := scanner.GetIndexSlice(len(slice) + 2)
		count, st := scanner.Index(slice, out, carry)
		scanner.PutCarry(carry)

		atBufferEnd := end == len(s.buf)

		// UnescapedChars and UTF8Error are byte-level defects: the offending
		// byte sits at a fixed offset in the buffer, so scanner.Index will
		// keep reporting the exact same status there no matter how much the
		// batch grows. Report them immediately, regardless of atBufferEnd,
		// rather than burning through growth attempts (and possibly
		// mis-reporting StatusCapacity once size reaches maxBatchSize) on an
		// error growing can never resolve (spec §7, "Lexical" errors
		// terminal for the current batch).
		if st == status.UnescapedChars || st == status.UTF8Error {
			scanner.PutIndexSlice(out)
			return newError(st, "lexical error in batch")
		}

		// A batch boundary landing mid-string is expected whenever the
		// batch is smaller than a document: it just means this batch needs
		// to grow, exactly like the "no complete document yet" case below.
		// Only report it as a real lexical error once there is no more
		// input left to extend the batch with.
		growable := st == status.UnclosedString
		if growable && atBufferEnd {
			scanner.PutIndexSlice(out)
			return newError(st, "lexical error in final batch")
		}
		if !growable && st != StatusSuccess && st != StatusEmpty {
			scanner.PutIndexSlice(out)
			return newError(st, "stage 1 failed on batch")
		}

		indices := out[:count]
		docEnds := scanTopLevelDocuments(slice, indices)

		if len(docEnds) == 0 || growable {
			if atBufferEnd {
				// nothing structurally complete and no more input: either
				// the remainder is genuinely empty/whitespace, or malformed.
				empty := len(indices) == 0
				scanner.PutIndexSlice(out)
				if empty {
					s.nBytesParsed += uint64(end - s.currentBufferLoc)
					s.currentBufferLoc = end
					s.indices = nil
					s.docEnds = nil
					return nil
				}
				return newError(StatusTapeError, "trailing input never reaches a top-level document boundary")
			}
			if size >= s.maxBatchSize {
				scanner.PutIndexSlice(out)
				return newError(StatusCapacity, "single document exceeds maximum batch size")
			}
			s.metrics.batchRewinds.Inc()
			s.logger.Debug().Int("batch_size", size).Msg("no complete document in batch, growing")
			size *= 2
			if size > s.maxBatchSize {
				size = s.maxBatchSize
			}
			continue
		}

		lastComplete := docEnds[len(docEnds)-1]
		trailing := 0
		for j := lastComplete + 1; j < len(indices); j++ {
			if indices[j] < uint32(len(slice)) {
				trailing++
			}
		}
		if trailing > 0 {
			// the batch holds a deferred, partially-scanned tail: rewind so
			// the next call rescans it from a clean carry (spec §4.2
			// "Boundary handling" — carry state is never reused).
			s.metrics.batchRewinds.Inc()
			s.logger.Debug().
				Int("kept_docs", len(docEnds)).
				Int("rewound_indices", trailing).
				Msg("rewinding batch to last complete top-level document")
		}

		s.batchBase = s.currentBufferLoc
		s.indices = append(s.indices[:0], indices[:lastComplete+1]...)
		scanner.PutIndexSlice(out)
		s.docEnds = docEnds
		s.docCursor = 0
		s.docStart = 0
		return nil
	}
}

// scanTopLevelDocuments walks the structural indices of one batch and
// returns the positions in indices marking the last index of each complete
// top-level document, in order (spec §4.2 step 4: "a bracket-counting pass
// on the indices alone, not the bytes"). The trailing virtual terminator
// index (offset == len(data)) is not itself a content byte and is skipped.
func scanTopLevelDocuments(data []byte, indices []uint32) []int {
	var ends []int
	depth := 0
	for i, off := range indices {
		if off >= uint32(len(data)) {
			break // virtual terminator / one-past-end sentinel
		}
		switch data[off] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				ends = append(ends, i)
			}
		default:
			if depth == 0 {
				ends = append(ends, i)
			}
		}
	}
	return ends
}

// statusOf recovers the Status carried by an error produced within this
// package (always an *Error); anything else is reported as internal.
func statusOf(err error) Status {
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	return StatusUnexpectedError
}

// statusFromSinkError maps a Stage 2 failure to a Status (spec §7,
// "Structural — raised by Stage 2; propagated unchanged"). Sinks that care
// about a precise code can implement SimdjsonStatus() Status; anything else
// is reported as a generic TAPE_ERROR.
func statusFromSinkError(err error) Status {
	if se, ok := err.(interface{ SimdjsonStatus() Status }); ok {
		return se.SimdjsonStatus()
	}
	return StatusTapeError
}
