package pool

import "sync"

// byteSlicePool recycles the per-worker scratch buffers used during
// parallel compression and decompression. Worker buffers are sized to the
// codec's worst-case bound per partition, so reuse saves one large
// allocation per worker per call.
var byteSlicePool = sync.Pool{
	New: func() any { return new([]byte) },
}

// GetByteSlice retrieves and resizes a byte slice from the pool.
//
// The returned slice has the exact length specified by the size parameter.
// If the pooled slice has insufficient capacity, a new slice is allocated.
// The caller must call the returned cleanup function to return the slice to
// the pool; after cleanup the slice must not be used.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []byte: A slice with length equal to size
//   - func(): Cleanup function that must be called to return the slice to the pool
func GetByteSlice(size int) ([]byte, func()) {
	ptr, _ := byteSlicePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { byteSlicePool.Put(ptr) }
}
