package native

import (
	"math/bits"
	"sync"
	"sync/atomic"
	"time"
)

const keyMix = 0x9e3779b97f4a7c15

// handleTable maps opaque non-zero keys to engine objects. Keys are a
// rotated and xored counter so stale or guessed values rarely hit a live
// entry.
type handleTable[T any] struct {
	mu      sync.RWMutex
	next    atomic.Uint64
	entries map[uintptr]T
}

func newHandleTable[T any]() *handleTable[T] {
	t := &handleTable[T]{entries: make(map[uintptr]T)}
	t.next.Store(uint64(time.Now().UnixMicro()))
	return t
}

func scramble(raw uint64) uintptr {
	return uintptr(bits.RotateLeft64(raw, 23) ^ keyMix)
}

func (t *handleTable[T]) insert(v T) uintptr {
	for {
		key := scramble(t.next.Add(1))
		if key == 0 {
			continue
		}
		t.mu.Lock()
		if _, taken := t.entries[key]; !taken {
			t.entries[key] = v
			t.mu.Unlock()
			return key
		}
		t.mu.Unlock()
	}
}

func (t *handleTable[T]) get(key uintptr) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

func (t *handleTable[T]) remove(key uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	return true
}

func (t *handleTable[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
