package msgpack

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Ext is a raw msgpack extension value: a type code plus an opaque payload.
type Ext struct {
	Code int8
	Data []byte
}

func (e Ext) ExtCode() int8 {
	return e.Code
}

func (e Ext) ExtData() []byte {
	return e.Data
}

func (e Ext) Equal(other Ext) bool {
	return e.Code == other.Code && bytes.Equal(e.Data, other.Data)
}

// Extension is implemented by values that encode as msgpack ext types.
type Extension interface {
	ExtCode() int8
	ExtData() []byte
}

// ExtResolver maps a decoded ext type code and payload to a typed value.
type ExtResolver interface {
	Resolve(code int8, data []byte) (any, error)
}

// UnsupportedTypeError reports an attempt to pack a value of a type the
// wire format has no representation for.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("msgpack: unsupported type: %v", e.Type)
}

// PackValue encodes an arbitrary value. Supported types: nil, bool, all int
// and uint widths, float32/float64, string, []byte, Extension
// implementations, and slices and maps (string keys) thereof.
func PackValue(w *Writer, data any) error {
	switch v := data.(type) {
	case nil:
		PackNil(w)
	case bool:
		PackBool(w, v)
	case int:
		PackInt(w, int64(v))
	case int8:
		PackInt(w, int64(v))
	case int16:
		PackInt(w, int64(v))
	case int32:
		PackInt(w, int64(v))
	case int64:
		PackInt(w, v)
	case uint:
		PackUint(w, uint64(v))
	case uint8:
		PackUint(w, uint64(v))
	case uint16:
		PackUint(w, uint64(v))
	case uint32:
		PackUint(w, uint64(v))
	case uint64:
		PackUint(w, v)
	case float32:
		PackFloat64(w, float64(v))
	case float64:
		PackFloat64(w, v)
	case string:
		PackString(w, v)
	case []byte:
		PackBinary(w, v)
	case Extension:
		PackExt(w, v.ExtCode(), v.ExtData())
	case []any:
		PackArrayHeader(w, len(v))
		for _, item := range v {
			if err := PackValue(w, item); err != nil {
				return err
			}
		}
	case map[string]any:
		PackMapHeader(w, len(v))
		// deterministic ordering keeps encodings reproducible in tests
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			PackString(w, k)
			if err := PackValue(w, v[k]); err != nil {
				return err
			}
		}
	default:
		return packReflect(w, data)
	}
	return nil
}

func packReflect(w *Writer, data any) error {
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		PackArrayHeader(w, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := PackValue(w, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return &UnsupportedTypeError{Type: rv.Type()}
		}
		PackMapHeader(w, rv.Len())
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			PackString(w, k)
			if err := PackValue(w, rv.MapIndex(reflect.ValueOf(k)).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Ptr:
		if rv.IsNil() {
			PackNil(w)
			return nil
		}
		return PackValue(w, rv.Elem().Interface())
	}
	return &UnsupportedTypeError{Type: reflect.TypeOf(data)}
}

// UnpackValue decodes an arbitrary value. Integers normalize to int64
// (uint64 only when the value exceeds MaxInt64), str to string, bin to
// []byte, arrays to []any, maps to map[string]any. Ext values go through
// the resolver; a nil resolver yields the raw Ext.
func UnpackValue(r *Reader, exts ExtResolver) (any, error) {
	c, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch {
	case c == codeNil:
		_, _ = r.ReadByte()
		return nil, nil
	case c == codeTrue || c == codeFalse:
		return UnpackBool(r)
	case isFixedInt(c) || c == codeInt8 || c == codeInt16 || c == codeInt32 || c == codeInt64:
		return UnpackInt(r)
	case c == codeUint8 || c == codeUint16 || c == codeUint32 || c == codeUint64:
		u, err := UnpackUint(r)
		if err != nil {
			return nil, err
		}
		if u > math.MaxInt64 {
			return u, nil
		}
		return int64(u), nil
	case c == codeFloat32 || c == codeFloat64:
		return UnpackFloat64(r)
	case (c >= 0xa0 && c <= 0xbf) || c == codeStr8 || c == codeStr16 || c == codeStr32:
		return UnpackString(r)
	case c == codeBin8 || c == codeBin16 || c == codeBin32:
		return UnpackBinary(r)
	case (c >= 0x90 && c <= 0x9f) || c == codeArray16 || c == codeArray32:
		length, err := UnpackArrayHeader(r)
		if err != nil {
			return nil, err
		}
		items := make([]any, length)
		for i := 0; i < length; i++ {
			items[i], err = UnpackValue(r, exts)
			if err != nil {
				return nil, err
			}
		}
		return items, nil
	case (c >= 0x80 && c <= 0x8f) || c == codeMap16 || c == codeMap32:
		length, err := UnpackMapHeader(r)
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, length)
		for i := 0; i < length; i++ {
			key, err := UnpackString(r)
			if err != nil {
				return nil, err
			}
			m[key], err = UnpackValue(r, exts)
			if err != nil {
				return nil, err
			}
		}
		return m, nil
	case c == codeFixExt1 || c == codeFixExt2 || c == codeFixExt4 || c == codeFixExt8 ||
		c == codeFixExt16 || c == codeExt8 || c == codeExt16 || c == codeExt32:
		code, data, err := UnpackExt(r)
		if err != nil {
			return nil, err
		}
		if exts == nil {
			return Ext{Code: code, Data: data}, nil
		}
		return exts.Resolve(code, data)
	}
	return nil, fmt.Errorf("msgpack: unexpected code 0x%02x decoding value", c)
}
