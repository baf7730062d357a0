package msgpack

import (
	"encoding/binary"
	"fmt"
	"math"
)

func isFixedInt(c byte) bool {
	return c <= 0x7f || c >= 0xe0
}

func UnpackBool(r *Reader) (bool, error) {
	c, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch c {
	case codeTrue:
		return true, nil
	case codeFalse:
		return false, nil
	}
	return false, fmt.Errorf("msgpack: unexpected code 0x%02x decoding bool", c)
}

// UnpackInt decodes any int or uint encoding into an int64.
func UnpackInt(r *Reader) (int64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if isFixedInt(c) {
		return int64(int8(c)), nil
	}
	switch c {
	case codeInt8:
		bs, err := r.Read(1)
		if err != nil {
			return 0, err
		}
		return int64(int8(bs[0])), nil
	case codeInt16:
		bs, err := r.Read(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.BigEndian.Uint16(bs))), nil
	case codeInt32:
		bs, err := r.Read(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.BigEndian.Uint32(bs))), nil
	case codeInt64:
		bs, err := r.Read(8)
		if err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(bs)), nil
	case codeUint8, codeUint16, codeUint32, codeUint64:
		r.rpos--
		u, err := UnpackUint(r)
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("msgpack: uint value %d overflows int64", u)
		}
		return int64(u), nil
	}
	return 0, fmt.Errorf("msgpack: unexpected code 0x%02x decoding int", c)
}

// UnpackUint decodes a non-negative int or uint encoding into a uint64.
func UnpackUint(r *Reader) (uint64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if c <= 0x7f {
		return uint64(c), nil
	}
	switch c {
	case codeUint8:
		bs, err := r.Read(1)
		if err != nil {
			return 0, err
		}
		return uint64(bs[0]), nil
	case codeUint16:
		bs, err := r.Read(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(bs)), nil
	case codeUint32:
		bs, err := r.Read(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(bs)), nil
	case codeUint64:
		bs, err := r.Read(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(bs), nil
	case codeInt8, codeInt16, codeInt32, codeInt64:
		r.rpos--
		i, err := UnpackInt(r)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			return 0, fmt.Errorf("msgpack: negative value %d decoding uint", i)
		}
		return uint64(i), nil
	}
	return 0, fmt.Errorf("msgpack: unexpected code 0x%02x decoding uint", c)
}

func UnpackFloat64(r *Reader) (float64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch c {
	case codeFloat32:
		bs, err := r.Read(4)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(bs))), nil
	case codeFloat64:
		bs, err := r.Read(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(bs)), nil
	}
	return 0, fmt.Errorf("msgpack: unexpected code 0x%02x decoding float", c)
}

func unpackLength(r *Reader, n int) (int, error) {
	bs, err := r.Read(n)
	if err != nil {
		return 0, err
	}
	switch n {
	case 1:
		return int(bs[0]), nil
	case 2:
		return int(binary.BigEndian.Uint16(bs)), nil
	default:
		return int(binary.BigEndian.Uint32(bs)), nil
	}
}

func UnpackString(r *Reader) (string, error) {
	c, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	var length int
	switch {
	case c >= 0xa0 && c <= 0xbf:
		length = int(c & 0x1f)
	case c == codeStr8:
		length, err = unpackLength(r, 1)
	case c == codeStr16:
		length, err = unpackLength(r, 2)
	case c == codeStr32:
		length, err = unpackLength(r, 4)
	default:
		return "", fmt.Errorf("msgpack: unexpected code 0x%02x decoding string", c)
	}
	if err != nil {
		return "", err
	}
	bs, err := r.Read(length)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func UnpackBinary(r *Reader) ([]byte, error) {
	c, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	var length int
	switch c {
	case codeBin8:
		length, err = unpackLength(r, 1)
	case codeBin16:
		length, err = unpackLength(r, 2)
	case codeBin32:
		length, err = unpackLength(r, 4)
	default:
		return nil, fmt.Errorf("msgpack: unexpected code 0x%02x decoding binary", c)
	}
	if err != nil {
		return nil, err
	}
	bs, err := r.Read(length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, bs)
	return out, nil
}

func UnpackArrayHeader(r *Reader) (int, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case c >= 0x90 && c <= 0x9f:
		return int(c & 0x0f), nil
	case c == codeArray16:
		return unpackLength(r, 2)
	case c == codeArray32:
		return unpackLength(r, 4)
	}
	return 0, fmt.Errorf("msgpack: unexpected code 0x%02x decoding array header", c)
}

func UnpackMapHeader(r *Reader) (int, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case c >= 0x80 && c <= 0x8f:
		return int(c & 0x0f), nil
	case c == codeMap16:
		return unpackLength(r, 2)
	case c == codeMap32:
		return unpackLength(r, 4)
	}
	return 0, fmt.Errorf("msgpack: unexpected code 0x%02x decoding map header", c)
}

// UnpackExt decodes an ext value, returning its type code and payload.
func UnpackExt(r *Reader) (int8, []byte, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	var length int
	switch c {
	case codeFixExt1:
		length = 1
	case codeFixExt2:
		length = 2
	case codeFixExt4:
		length = 4
	case codeFixExt8:
		length = 8
	case codeFixExt16:
		length = 16
	case codeExt8:
		length, err = unpackLength(r, 1)
	case codeExt16:
		length, err = unpackLength(r, 2)
	case codeExt32:
		length, err = unpackLength(r, 4)
	default:
		return 0, nil, fmt.Errorf("msgpack: unexpected code 0x%02x decoding ext", c)
	}
	if err != nil {
		return 0, nil, err
	}
	code, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	bs, err := r.Read(length)
	if err != nil {
		return 0, nil, err
	}
	data := make([]byte, length)
	copy(data, bs)
	return int8(code), data, nil
}
