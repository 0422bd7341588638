package goldbach

import "sync"

// maxPooledBuf caps the buffers returned to the pool so one large snapshot is
// not held in memory forever.
const maxPooledBuf = 64 << 20

var encodePool = sync.Pool{New: func() any {
	b := make([]byte, 0, 64<<10)
	return &b
}}

// getEncodeBuf takes a buffer from the pool with at least size bytes of capacity.
func getEncodeBuf(size int) *[]byte {
	buf := encodePool.Get().(*[]byte)
	if cap(*buf) < size {
		*buf = make([]byte, 0, size)
	}
	return buf
}

// returnEncodeBuf puts buf back into the pool.
func returnEncodeBuf(buf *[]byte) {
	if cap(*buf) > maxPooledBuf {
		return
	}
	*buf = (*buf)[:0]
	encodePool.Put(buf)
}
