package benchmarks

import (
	"bytes"
	"encoding/json"
	"testing"

	simdjson "github.com/kestrelstream/simdjson-go"
	"github.com/kestrelstream/simdjson-go/internal/scanner"
)

var (
	smallJSON = []byte(`{"name":"John","age":30,"city":"New York"}`)

	mediumJSON = []byte(`{
		"users": [
			{"id": 1, "name": "Alice", "email": "alice@example.com", "active": true},
			{"id": 2, "name": "Bob", "email": "bob@example.com", "active": false},
			{"id": 3, "name": "Charlie", "email": "charlie@example.com", "active": true},
			{"id": 4, "name": "David", "email": "david@example.com", "active": true},
			{"id": 5, "name": "Eve", "email": "eve@example.com", "active": false}
		],
		"metadata": {
			"version": "1.0.0",
			"timestamp": 1234567890,
			"count": 5
		}
	}`)

	largeJSON []byte
	ndjson    []byte
)

func init() {
	// Generate large JSON (array of 1000 objects).
	largeJSON = []byte(`[`)
	for i := 0; i < 1000; i++ {
		if i > 0 {
			largeJSON = append(largeJSON, ',')
		}
		largeJSON = append(largeJSON, []byte(`{
			"id": 12345,
			"name": "User Name Here",
			"email": "user@example.com",
			"age": 25,
			"active": true,
			"tags": ["tag1", "tag2", "tag3"],
			"profile": {
				"bio": "This is a bio text",
				"location": "San Francisco, CA",
				"website": "https://example.com"
			}
		}`)...)
	}
	largeJSON = append(largeJSON, ']')

	// Generate 1000 newline-delimited small documents, the shape the Stream
	// Driver is built for.
	for i := 0; i < 1000; i++ {
		ndjson = append(ndjson, smallJSON...)
		ndjson = append(ndjson, '\n')
	}
}

// Structural Indexer benchmarks.

func BenchmarkIndexSmall(b *testing.B) {
	out := make([]uint32, len(smallJSON)+2)
	carry := scanner.NewCarry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		carry.Reset()
		_, _ = scanner.Index(smallJSON, out, carry)
	}
}

func BenchmarkIndexMedium(b *testing.B) {
	out := make([]uint32, len(mediumJSON)+2)
	carry := scanner.NewCarry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		carry.Reset()
		_, _ = scanner.Index(mediumJSON, out, carry)
	}
}

func BenchmarkIndexLarge(b *testing.B) {
	out := make([]uint32, len(largeJSON)+2)
	carry := scanner.NewCarry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		carry.Reset()
		_, _ = scanner.Index(largeJSON, out, carry)
	}
}

// Validation benchmarks, mirroring the standard library's own Valid so the
// two can be compared directly.

func BenchmarkValidateSmall_StdLib(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = json.Valid(smallJSON)
	}
}

func BenchmarkValidateSmall_SimdJSON(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = simdjson.Valid(smallJSON)
	}
}

func BenchmarkValidateLarge_StdLib(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = json.Valid(largeJSON)
	}
}

func BenchmarkValidateLarge_SimdJSON(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = simdjson.Valid(largeJSON)
	}
}

// Stream Driver benchmarks: draining 1000 newline-delimited documents
// through the reference sink.

func BenchmarkStreamNDJSON(b *testing.B) {
	sink := simdjson.NewReferenceSink()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := simdjson.NewStream(ndjson)
		for {
			st, err := s.Next(sink)
			if st == simdjson.StatusEmpty {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkStreamNDJSON_StdLib(b *testing.B) {
	for i := 0; i < b.N; i++ {
		dec := json.NewDecoder(bytes.NewReader(ndjson))
		for {
			var v interface{}
			if err := dec.Decode(&v); err != nil {
				break
			}
		}
	}
}
