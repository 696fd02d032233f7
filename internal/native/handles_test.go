package native

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTableKeysAreUniqueAndNonZero(t *testing.T) {
	table := newHandleTable[int]()
	seen := make(map[uintptr]bool)

	for i := 0; i < 1000; i++ {
		k := table.insert(i)
		require.NotZero(t, k)
		require.False(t, seen[k], "duplicate key %x", k)
		seen[k] = true
	}
	assert.Equal(t, 1000, table.len())
}

func TestHandleTableKeysAreNotSequential(t *testing.T) {
	table := newHandleTable[string]()
	a := table.insert("a")
	b := table.insert("b")
	assert.NotEqual(t, uintptr(1), b-a)
}

func TestHandleTableRemove(t *testing.T) {
	table := newHandleTable[string]()
	k := table.insert("value")

	v, ok := table.get(k)
	require.True(t, ok)
	assert.Equal(t, "value", v)

	assert.True(t, table.remove(k))
	assert.False(t, table.remove(k))
	_, ok = table.get(k)
	assert.False(t, ok)
}

func TestHandleTableConcurrent(t *testing.T) {
	table := newHandleTable[int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := table.insert(i)
				if _, ok := table.get(k); !ok {
					t.Errorf("missing key %x", k)
				}
				table.remove(k)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, table.len())
}
