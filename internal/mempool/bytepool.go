package mempool

import (
	"sync"
)

// A sized pool for scratch byte buffers used by pixel conversion.

var (
	bytePools   sync.Map // key: size class (int), value: *sync.Pool
	uint32Pools sync.Map // key: size class (int), value: *sync.Pool
)

// sizeClass rounds n up to the next multiple of 4 KiB to reduce churn.
func sizeClass(n int) int {
	const step = 4096
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func poolFor[T any](pools *sync.Map, cls int) *sync.Pool {
	pAny, _ := pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]T, cls) }})
	return pAny.(*sync.Pool)
}

func get[T any](pools *sync.Map, n int) []T {
	cls := sizeClass(n)
	buf, ok := poolFor[T](pools, cls).Get().([]T)
	if !ok || cap(buf) < cls {
		buf = make([]T, cls)
	}
	return buf[:n]
}

func put[T any](pools *sync.Map, buf []T) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	if cls != cap(buf) {
		// Not one of ours.
		return
	}
	poolFor[T](pools, cls).Put(buf[:cap(buf)]) //nolint:staticcheck
}

// GetBytes retrieves a []byte buffer of length n. Contents are not zeroed.
// The caller must return it via PutBytes when done.
func GetBytes(n int) []byte { return get[byte](&bytePools, n) }

// PutBytes returns a buffer to the pool. It is safe to pass a nil slice.
func PutBytes(buf []byte) { put(&bytePools, buf) }

// GetUint32 retrieves a []uint32 buffer of length n. Contents are not zeroed.
func GetUint32(n int) []uint32 { return get[uint32](&uint32Pools, n) }

// PutUint32 returns a buffer to the pool. It is safe to pass a nil slice.
func PutUint32(buf []uint32) { put(&uint32Pools, buf) }
