// Package parser is a reference Stage 2 (spec §4.3, "Stage 2 (external)"):
// it consumes the bytes and the structural index array produced by the
// Structural Indexer and builds a Go value tree. It exists so the Indexer
// and Stream Driver can be exercised end-to-end in tests and benchmarks; it
// is not itself part of the specified Stage 1 / Driver surface, and it does
// not aim for exhaustive RFC 8259 number fidelity beyond strconv.
package parser

import (
	"strconv"
	"unicode/utf8"
	"unsafe"

	"github.com/kestrelstream/simdjson-go/internal/status"
)

// Error reports a Stage 2 failure with the same stable Status codes used by
// Stage 1 (spec §7, "Structural" errors: TAPE_ERROR, DEPTH_ERROR, atom and
// number errors).
type Error struct {
	Status status.Status
	Msg    string
}

func (e *Error) Error() string { return e.Status.String() + ": " + e.Msg }

func fail(st status.Status, msg string) error {
	return &Error{Status: st, Msg: msg}
}

const maxDepth = 1024

// Parser walks a structural index array against the underlying bytes and
// builds a document tree. A Parser is not safe for concurrent use; callers
// wanting concurrency should use one Parser per goroutine (mirrors the
// Indexer's own "distinct call each own state" contract, spec §5).
type Parser struct {
	data    []byte
	indices []uint32
	pos     int
	depth   int
}

func New() *Parser {
	return &Parser{}
}

// Parse builds a document from data using exactly the structural indices
// covering one top-level value (spec §4.3's "(bytes, indices, count)"
// contract — count is len(indices) here since the Driver already slices
// the array to one document).
func (p *Parser) Parse(data []byte, indices []uint32) (interface{}, error) {
	p.data = data
	p.indices = indices
	p.pos = 0
	p.depth = 0

	if len(indices) == 0 {
		return nil, fail(status.Empty, "no structural indices")
	}

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.indices) {
		return nil, fail(status.TapeError, "trailing structural indices after top-level value")
	}
	return v, nil
}

func (p *Parser) peekByte() (byte, bool) {
	if p.pos >= len(p.indices) {
		return 0, false
	}
	return p.data[p.indices[p.pos]], true
}

func (p *Parser) parseValue() (interface{}, error) {
	b, ok := p.peekByte()
	if !ok {
		return nil, fail(status.TapeError, "unexpected end of structural indices")
	}

	switch b {
	case '{':
		return p.parseObject()
	case '[':
		return p.parseArray()
	case '"':
		return p.parseString()
	case 't':
		return p.parseAtom("true", true, status.TAtomError)
	case 'f':
		return p.parseAtom("false", false, status.FAtomError)
	case 'n':
		return p.parseAtom("null", nil, status.NAtomError)
	default:
		if b == '-' || (b >= '0' && b <= '9') {
			return p.parseNumber()
		}
		return nil, fail(status.TapeError, "unexpected byte at value position")
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return fail(status.DepthError, "maximum nesting depth exceeded")
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

func (p *Parser) parseObject() (map[string]interface{}, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.pos++ // consume '{'
	obj := make(map[string]interface{})

	b, ok := p.peekByte()
	if !ok {
		return nil, fail(status.DepthError, "unterminated object")
	}
	if b == '}' {
		p.pos++
		return obj, nil
	}

	for {
		key, ok := p.peekByte()
		if !ok || key != '"' {
			return nil, fail(status.TapeError, "expected string key in object")
		}
		k, err := p.parseString()
		if err != nil {
			return nil, err
		}

		colon, ok := p.peekByte()
		if !ok || colon != ':' {
			return nil, fail(status.TapeError, "expected ':' after object key")
		}
		p.pos++ // consume ':'

		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[k] = v

		next, ok := p.peekByte()
		if !ok {
			return nil, fail(status.DepthError, "unterminated object")
		}
		switch next {
		case ',':
			p.pos++
			continue
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, fail(status.TapeError, "expected ',' or '}' in object")
		}
	}
}

func (p *Parser) parseArray() ([]interface{}, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.pos++ // consume '['
	arr := make([]interface{}, 0, 8)

	b, ok := p.peekByte()
	if !ok {
		return nil, fail(status.DepthError, "unterminated array")
	}
	if b == ']' {
		p.pos++
		return arr, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		next, ok := p.peekByte()
		if !ok {
			return nil, fail(status.DepthError, "unterminated array")
		}
		switch next {
		case ',':
			p.pos++
			continue
		case ']':
			p.pos++
			return arr, nil
		default:
			return nil, fail(status.TapeError, "expected ',' or ']' in array")
		}
	}
}

// parseString locates the closing quote by scanning raw bytes: the
// Indexer deliberately does not emit the closing quote as a structural
// index (spec §4.1 "remove the closing quote of each pair"), so Stage 2
// is responsible for walking the string body itself.
func (p *Parser) parseString() (string, error) {
	start := p.indices[p.pos]
	p.pos++

	i := int(start) + 1
	for i < len(p.data) {
		if p.data[i] == '"' {
			backslashes := 0
			for k := i - 1; k >= int(start)+1 && p.data[k] == '\\'; k-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				body := p.data[start+1 : i]
				if containsBackslash(body) {
					return unescapeString(body)
				}
				return unsafeString(body), nil
			}
		}
		i++
	}
	return "", fail(status.StringError, "unterminated string body")
}

func containsBackslash(b []byte) bool {
	for _, c := range b {
		if c == '\\' {
			return true
		}
	}
	return false
}

func unescapeString(b []byte) (string, error) {
	buf := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' {
			buf = append(buf, b[i])
			continue
		}
		i++
		if i >= len(b) {
			return "", fail(status.StringError, "dangling escape at end of string")
		}
		switch b[i] {
		case '"', '\\', '/':
			buf = append(buf, b[i])
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'u':
			if i+4 >= len(b) {
				return "", fail(status.StringError, "truncated unicode escape")
			}
			r, err := strconv.ParseUint(string(b[i+1:i+5]), 16, 32)
			if err != nil {
				return "", fail(status.StringError, "invalid unicode escape")
			}
			var rbuf [utf8.UTFMax]byte
			n := utf8.EncodeRune(rbuf[:], rune(r))
			buf = append(buf, rbuf[:n]...)
			i += 4
		default:
			return "", fail(status.StringError, "invalid escape character")
		}
	}
	return string(buf), nil
}

func (p *Parser) parseAtom(literal string, value interface{}, errStatus status.Status) (interface{}, error) {
	start := int(p.indices[p.pos])
	end := findAtomEnd(p.data, start)
	p.pos++

	if end-start != len(literal) || string(p.data[start:end]) != literal {
		return nil, fail(errStatus, "malformed "+literal+" literal")
	}
	return value, nil
}

func (p *Parser) parseNumber() (interface{}, error) {
	start := int(p.indices[p.pos])
	end := findAtomEnd(p.data, start)
	p.pos++

	numBytes := p.data[start:end]
	if len(numBytes) == 0 {
		return nil, fail(status.NumberError, "empty number literal")
	}

	if !containsFloatChars(numBytes) {
		if v, err := strconv.ParseInt(unsafeString(numBytes), 10, 64); err == nil {
			return v, nil
		}
	}
	v, err := strconv.ParseFloat(unsafeString(numBytes), 64)
	if err != nil {
		return nil, fail(status.NumberError, "invalid number literal")
	}
	return v, nil
}

func containsFloatChars(b []byte) bool {
	for _, c := range b {
		if c == '.' || c == 'e' || c == 'E' {
			return true
		}
	}
	return false
}

// findAtomEnd finds the end of a number or atom literal starting at start:
// the first byte that is whitespace or a top-level structural character.
func findAtomEnd(data []byte, start int) int {
	i := start
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r', '{', '}', '[', ']', ',', ':':
			return i
		}
		i++
	}
	return i
}

func unsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}
