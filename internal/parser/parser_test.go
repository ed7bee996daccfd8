package parser

import (
	"testing"

	"github.com/kestrelstream/simdjson-go/internal/scanner"
	"github.com/kestrelstream/simdjson-go/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// index mirrors what the Stream Driver hands a DocumentSink: the structural
// indices covering exactly one top-level document, with the Indexer's
// trailing virtual terminator (spec §3) stripped off.
func index(t *testing.T, input string) []uint32 {
	t.Helper()
	out := make([]uint32, len(input)+2)
	carry := scanner.NewCarry()
	n, st := scanner.Index([]byte(input), out, carry)
	require.Equal(t, status.Success, st, input)
	indices := out[:n]
	for len(indices) > 0 && indices[len(indices)-1] >= uint32(len(input)) {
		indices = indices[:len(indices)-1]
	}
	return indices
}

func parse(t *testing.T, input string) (interface{}, error) {
	t.Helper()
	return New().Parse([]byte(input), index(t, input))
}

func TestParse_SimpleObject(t *testing.T) {
	v, err := parse(t, `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": int64(1)}, v)
}

func TestParse_NestedStructures(t *testing.T) {
	v, err := parse(t, `{"a":[1,2,{"b":"c"},true,null,3.14]}`)
	require.NoError(t, err)
	obj := v.(map[string]interface{})
	arr := obj["a"].([]interface{})
	require.Len(t, arr, 6)
	assert.Equal(t, int64(1), arr[0])
	assert.Equal(t, int64(2), arr[1])
	assert.Equal(t, map[string]interface{}{"b": "c"}, arr[2])
	assert.Equal(t, true, arr[3])
	assert.Nil(t, arr[4])
	assert.Equal(t, 3.14, arr[5])
}

func TestParse_EmptyObjectAndArray(t *testing.T) {
	v, err := parse(t, `{}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, v)

	v, err = parse(t, `[]`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, v)
}

func TestParse_EscapedString(t *testing.T) {
	v, err := parse(t, `"a\"b\\c\n"`)
	require.NoError(t, err)
	assert.Equal(t, "a\"b\\c\n", v)
}

func TestParse_UnicodeEscape(t *testing.T) {
	v, err := parse(t, `"caf\u00e9"`)
	require.NoError(t, err)
	assert.Equal(t, "café", v)
}

func TestParse_LiteralMultibyteUTF8(t *testing.T) {
	v, err := parse(t, `"café"`)
	require.NoError(t, err)
	assert.Equal(t, "café", v)
}

func TestParse_Numbers(t *testing.T) {
	v, err := parse(t, `-42`)
	require.NoError(t, err)
	assert.Equal(t, int64(-42), v)

	v, err = parse(t, `3.14`)
	require.NoError(t, err)
	assert.Equal(t, 3.14, v)

	v, err = parse(t, `1e3`)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)
}

func TestParse_Atoms(t *testing.T) {
	v, err := parse(t, `true`)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = parse(t, `false`)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = parse(t, `null`)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParse_MalformedAtomReportsAtomError(t *testing.T) {
	_, err := parse(t, `tru`)
	require.Error(t, err)
	assert.Equal(t, status.TAtomError, err.(*Error).Status)
}

func TestParse_TrailingCommaInObjectIsTapeError(t *testing.T) {
	_, err := parse(t, `{"a":1,}`)
	require.Error(t, err)
	assert.Equal(t, status.TapeError, err.(*Error).Status)
}

func TestParse_DeeplyNestedArrayHitsDepthError(t *testing.T) {
	input := ""
	for i := 0; i < maxDepth+2; i++ {
		input += "["
	}
	for i := 0; i < maxDepth+2; i++ {
		input += "]"
	}
	_, err := parse(t, input)
	require.Error(t, err)
	assert.Equal(t, status.DepthError, err.(*Error).Status)
}
