package msgpack

import (
	"encoding/binary"
	"math"
)

// Format codes from the msgpack specification.
const (
	codeNil      byte = 0xc0
	codeFalse    byte = 0xc2
	codeTrue     byte = 0xc3
	codeBin8     byte = 0xc4
	codeBin16    byte = 0xc5
	codeBin32    byte = 0xc6
	codeExt8     byte = 0xc7
	codeExt16    byte = 0xc8
	codeExt32    byte = 0xc9
	codeFloat32  byte = 0xca
	codeFloat64  byte = 0xcb
	codeUint8    byte = 0xcc
	codeUint16   byte = 0xcd
	codeUint32   byte = 0xce
	codeUint64   byte = 0xcf
	codeInt8     byte = 0xd0
	codeInt16    byte = 0xd1
	codeInt32    byte = 0xd2
	codeInt64    byte = 0xd3
	codeFixExt1  byte = 0xd4
	codeFixExt2  byte = 0xd5
	codeFixExt4  byte = 0xd6
	codeFixExt8  byte = 0xd7
	codeFixExt16 byte = 0xd8
	codeStr8     byte = 0xd9
	codeStr16    byte = 0xda
	codeStr32    byte = 0xdb
	codeArray16  byte = 0xdc
	codeArray32  byte = 0xdd
	codeMap16    byte = 0xde
	codeMap32    byte = 0xdf
)

func PackNil(w *Writer) {
	w.WriteByte(codeNil)
}

func PackBool(w *Writer, data bool) {
	if data {
		w.WriteByte(codeTrue)
	} else {
		w.WriteByte(codeFalse)
	}
}

// PackInt writes data using the smallest encoding that holds it.
func PackInt(w *Writer, data int64) {
	switch {
	case data >= 0:
		PackUint(w, uint64(data))
	case data >= -32:
		w.WriteByte(byte(data))
	case data >= math.MinInt8:
		w.WriteByte(codeInt8)
		w.WriteByte(byte(data))
	case data >= math.MinInt16:
		bs := w.Next(3)
		bs[0] = codeInt16
		binary.BigEndian.PutUint16(bs[1:], uint16(data))
	case data >= math.MinInt32:
		bs := w.Next(5)
		bs[0] = codeInt32
		binary.BigEndian.PutUint32(bs[1:], uint32(data))
	default:
		bs := w.Next(9)
		bs[0] = codeInt64
		binary.BigEndian.PutUint64(bs[1:], uint64(data))
	}
}

func PackUint(w *Writer, data uint64) {
	switch {
	case data <= 0x7f:
		w.WriteByte(byte(data))
	case data <= math.MaxUint8:
		w.WriteByte(codeUint8)
		w.WriteByte(byte(data))
	case data <= math.MaxUint16:
		bs := w.Next(3)
		bs[0] = codeUint16
		binary.BigEndian.PutUint16(bs[1:], uint16(data))
	case data <= math.MaxUint32:
		bs := w.Next(5)
		bs[0] = codeUint32
		binary.BigEndian.PutUint32(bs[1:], uint32(data))
	default:
		bs := w.Next(9)
		bs[0] = codeUint64
		binary.BigEndian.PutUint64(bs[1:], data)
	}
}

func PackFloat64(w *Writer, data float64) {
	bs := w.Next(9)
	bs[0] = codeFloat64
	binary.BigEndian.PutUint64(bs[1:], math.Float64bits(data))
}

func PackString(w *Writer, data string) {
	length := len(data)
	switch {
	case length <= 31:
		w.WriteByte(0xa0 | byte(length))
	case length <= math.MaxUint8:
		w.WriteByte(codeStr8)
		w.WriteByte(byte(length))
	case length <= math.MaxUint16:
		bs := w.Next(3)
		bs[0] = codeStr16
		binary.BigEndian.PutUint16(bs[1:], uint16(length))
	default:
		bs := w.Next(5)
		bs[0] = codeStr32
		binary.BigEndian.PutUint32(bs[1:], uint32(length))
	}
	copy(w.Next(length), data)
}

func PackBinary(w *Writer, data []byte) {
	length := len(data)
	switch {
	case length <= math.MaxUint8:
		w.WriteByte(codeBin8)
		w.WriteByte(byte(length))
	case length <= math.MaxUint16:
		bs := w.Next(3)
		bs[0] = codeBin16
		binary.BigEndian.PutUint16(bs[1:], uint16(length))
	default:
		bs := w.Next(5)
		bs[0] = codeBin32
		binary.BigEndian.PutUint32(bs[1:], uint32(length))
	}
	copy(w.Next(length), data)
}

func PackArrayHeader(w *Writer, length int) {
	switch {
	case length <= 15:
		w.WriteByte(0x90 | byte(length))
	case length <= math.MaxUint16:
		bs := w.Next(3)
		bs[0] = codeArray16
		binary.BigEndian.PutUint16(bs[1:], uint16(length))
	default:
		bs := w.Next(5)
		bs[0] = codeArray32
		binary.BigEndian.PutUint32(bs[1:], uint32(length))
	}
}

func PackMapHeader(w *Writer, length int) {
	switch {
	case length <= 15:
		w.WriteByte(0x80 | byte(length))
	case length <= math.MaxUint16:
		bs := w.Next(3)
		bs[0] = codeMap16
		binary.BigEndian.PutUint16(bs[1:], uint16(length))
	default:
		bs := w.Next(5)
		bs[0] = codeMap32
		binary.BigEndian.PutUint32(bs[1:], uint32(length))
	}
}

func PackExt(w *Writer, code int8, data []byte) {
	length := len(data)
	switch length {
	case 1:
		w.WriteByte(codeFixExt1)
	case 2:
		w.WriteByte(codeFixExt2)
	case 4:
		w.WriteByte(codeFixExt4)
	case 8:
		w.WriteByte(codeFixExt8)
	case 16:
		w.WriteByte(codeFixExt16)
	default:
		switch {
		case length <= math.MaxUint8:
			w.WriteByte(codeExt8)
			w.WriteByte(byte(length))
		case length <= math.MaxUint16:
			bs := w.Next(3)
			bs[0] = codeExt16
			binary.BigEndian.PutUint16(bs[1:], uint16(length))
		default:
			bs := w.Next(5)
			bs[0] = codeExt32
			binary.BigEndian.PutUint32(bs[1:], uint32(length))
		}
	}
	w.WriteByte(byte(code))
	copy(w.Next(length), data)
}
