package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorkers(t *testing.T) {
	want := runtime.NumCPU() - 1
	if want < 1 {
		want = 1
	}
	assert.Equal(t, want, DefaultWorkers())
	assert.Equal(t, DefaultWorkers(), DefaultConfig().Workers)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{Workers: 2, QueueSize: 4, Policy: PolicyReject}.Validate())
	assert.Error(t, Config{Workers: -1}.Validate())
	assert.Error(t, Config{QueueSize: -1}.Validate())
	assert.Error(t, Config{Policy: "drop"}.Validate())
}

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(Config{Workers: 4})
	defer p.Close()

	const n = 200
	var done atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		require.NoError(t, p.Submit(func() {
			done.Add(1)
			wg.Done()
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(n), done.Load())
}

func TestPoolSingleWorkerIsFIFO(t *testing.T) {
	p := New(Config{Workers: 1})

	var mu sync.Mutex
	var order []int
	for i := range 20 {
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	p.Close()

	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestPoolRejectPolicy(t *testing.T) {
	p := New(Config{Workers: 1, QueueSize: 1, Policy: PolicyReject})
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	require.NoError(t, p.Submit(func() {}))
	assert.ErrorIs(t, p.Submit(func() {}), ErrQueueFull)
	assert.Equal(t, Stats{Workers: 1, Queued: 1, Busy: 1}, p.Stats())

	close(release)
}

func TestPoolBlockPolicyWaitsForSpace(t *testing.T) {
	p := New(Config{Workers: 1, QueueSize: 1, Policy: PolicyBlock})
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, p.Submit(func() {}))

	submitted := make(chan error, 1)
	go func() { submitted <- p.Submit(func() {}) }()

	select {
	case <-submitted:
		t.Fatal("submit should block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-submitted:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not unblock")
	}
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := New(Config{Workers: 1})
	defer p.Close()

	require.NoError(t, p.Submit(func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestPoolCloseDrainsAndRejects(t *testing.T) {
	p := New(Config{Workers: 2})

	var ran atomic.Int32
	for range 10 {
		require.NoError(t, p.Submit(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}
	p.Close()
	p.Close()

	assert.Equal(t, int32(10), ran.Load())
	assert.ErrorIs(t, p.Submit(func() {}), ErrClosed)
	assert.Error(t, p.Submit(nil))
}

func TestSharedPool(t *testing.T) {
	a := Shared()
	b := Shared()
	assert.Same(t, a, b)
	assert.ErrorIs(t, ConfigureShared(DefaultConfig()), ErrAlreadyStarted)
	assert.Error(t, ConfigureShared(Config{Policy: "nope"}))

	done := make(chan struct{})
	require.NoError(t, a.Submit(func() { close(done) }))
	<-done
}
