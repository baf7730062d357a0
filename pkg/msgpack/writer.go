package msgpack

// Writer is a growable byte buffer that pack functions append to.
type Writer struct {
	bytes []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{
		bytes: make([]byte, 0, capacity),
	}
}

// Next extends the buffer by n bytes and returns the slice to fill.
func (w *Writer) Next(n int) []byte {
	pos := len(w.bytes)
	if pos+n <= cap(w.bytes) {
		w.bytes = w.bytes[:pos+n]
	} else {
		grown := make([]byte, pos+n, (pos+n)*2)
		copy(grown, w.bytes)
		w.bytes = grown
	}
	return w.bytes[pos : pos+n]
}

func (w *Writer) WriteByte(b byte) {
	w.Next(1)[0] = b
}

func (w *Writer) Bytes() []byte {
	return w.bytes
}

func (w *Writer) Len() int {
	return len(w.bytes)
}

func (w *Writer) Capacity() int {
	return cap(w.bytes)
}

func (w *Writer) Reset() {
	w.bytes = w.bytes[:0]
}
