package rpc

import (
	"sync"

	"github.com/nvim-tools/nvrpc/pkg/msgpack"
)

var (
	writerPool = &sync.Pool{
		New: func() interface{} {
			return msgpack.NewWriter(256)
		},
	}
)

func getWriter() *msgpack.Writer {
	return writerPool.Get().(*msgpack.Writer)
}

// putWriter returns a writer to the pool after resetting it. Writers that
// grew past 256KB are discarded to keep one oversized message from
// pinning memory.
func putWriter(w *msgpack.Writer) {
	w.Reset()
	if w.Capacity() < 262144 {
		writerPool.Put(w)
	}
}
