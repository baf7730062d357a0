package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAPIInfoResult() []any {
	return []any{
		int64(3),
		map[string]any{
			"types": map[string]any{
				"Buffer":  map[string]any{"id": int64(0), "prefix": "nvim_buf_"},
				"Window":  map[string]any{"id": int64(1), "prefix": "nvim_win_"},
				"Tabpage": map[string]any{"id": int64(2), "prefix": "nvim_tabpage_"},
			},
			"error_types": map[string]any{
				"Exception":  map[string]any{"id": int64(0)},
				"Validation": map[string]any{"id": int64(1)},
			},
		},
	}
}

func TestParseAPIInfo(t *testing.T) {

	info, err := parseAPIInfo(validAPIInfoResult())
	require.NoError(t, err)

	assert.Equal(t, 3, info.Channel)
	assert.Equal(t, map[string]int{
		"Buffer":  0,
		"Window":  1,
		"Tabpage": 2,
	}, info.Types)
}

func TestParseAPIInfoMalformed(t *testing.T) {

	missingTypes := []any{
		int64(3),
		map[string]any{
			"error_types": map[string]any{},
		},
	}

	missingErrorTypes := []any{
		int64(3),
		map[string]any{
			"types": map[string]any{
				"Buffer":  map[string]any{"id": int64(0)},
				"Window":  map[string]any{"id": int64(1)},
				"Tabpage": map[string]any{"id": int64(2)},
			},
		},
	}

	missingKind := []any{
		int64(3),
		map[string]any{
			"types": map[string]any{
				"Buffer": map[string]any{"id": int64(0)},
			},
			"error_types": map[string]any{},
		},
	}

	typeWithoutID := []any{
		int64(3),
		map[string]any{
			"types": map[string]any{
				"Buffer":  map[string]any{"prefix": "nvim_buf_"},
				"Window":  map[string]any{"id": int64(1)},
				"Tabpage": map[string]any{"id": int64(2)},
			},
			"error_types": map[string]any{},
		},
	}

	cases := []struct {
		name   string
		result any
	}{
		{"not an array", "nope"},
		{"wrong arity", []any{int64(3)}},
		{"channel not an int", []any{"three", map[string]any{}}},
		{"metadata not a map", []any{int64(3), "meta"}},
		{"missing types", missingTypes},
		{"missing error_types", missingErrorTypes},
		{"missing required kind", missingKind},
		{"type without id", typeWithoutID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseAPIInfo(tc.result)
			require.Error(t, err)

			var protoErr *ProtocolError
			assert.ErrorAs(t, err, &protoErr)
		})
	}
}

func TestRegisterExtTypes(t *testing.T) {

	info, err := parseAPIInfo(validAPIInfoResult())
	require.NoError(t, err)

	codec := NewCodec()
	require.NoError(t, registerExtTypes(codec, info))

	value, err := codec.Resolve(0, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, Buffer{newExt(0, []byte{0x01})}, value)

	value, err = codec.Resolve(1, []byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, Window{newExt(1, []byte{0x02})}, value)

	value, err = codec.Resolve(2, []byte{0x03})
	require.NoError(t, err)
	assert.Equal(t, Tabpage{newExt(2, []byte{0x03})}, value)

	_, err = codec.Resolve(99, []byte{0x04})
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}
